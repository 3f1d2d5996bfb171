package tags

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const tagColumns = `id, nome, categoria, ordem, ativa`

// Repository persiste as tags de função.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List devolve as tags na ordem de exibição.
func (r *Repository) List(ctx context.Context, somenteAtivas bool) ([]Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags_funcoes`
	if somenteAtivas {
		query += ` WHERE ativa`
	}
	query += ` ORDER BY categoria, ordem, nome`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+tagColumns+` FROM tags_funcoes WHERE id = $1`, id)
	return scanTag(row)
}

// GetByIDs devolve as tags encontradas entre os ids pedidos; ids sem
// registro simplesmente não aparecem no resultado.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+tagColumns+` FROM tags_funcoes WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("buscar tags: %w", err)
	}
	defer rows.Close()

	return collectTags(rows)
}

func (r *Repository) Create(ctx context.Context, nome, categoria string, ordem int) (*Tag, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tags_funcoes (nome, categoria, ordem)
		VALUES ($1, $2, $3)
		RETURNING `+tagColumns,
		nome, categoria, ordem)
	return scanTag(row)
}

func (r *Repository) Update(ctx context.Context, tag Tag) (*Tag, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tags_funcoes
		SET nome = $2, categoria = $3, ordem = $4, ativa = $5
		WHERE id = $1
		RETURNING `+tagColumns,
		tag.ID, tag.Nome, tag.Categoria, tag.Ordem, tag.Ativa)
	return scanTag(row)
}

// Delete remove a tag. Vínculos em pessoa_tags caem em cascata; escalas
// que ainda a referenciam passam a exibir o placeholder.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tags_funcoes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remover tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectTags(rows pgx.Rows) ([]Tag, error) {
	var out []Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func scanTag(row pgx.Row) (*Tag, error) {
	var t Tag
	err := row.Scan(&t.ID, &t.Nome, &t.Categoria, &t.Ordem, &t.Ativa)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}
