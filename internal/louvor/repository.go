package louvor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const louvorColumns = `id, titulo, artista, tom, letra, cifra_url, ativo, criado_em, atualizado_em`

// Repository persiste o repertório.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List devolve o repertório em ordem alfabética, com filtro opcional de
// busca por título ou artista.
func (r *Repository) List(ctx context.Context, busca string) ([]Louvor, error) {
	query := `SELECT ` + louvorColumns + ` FROM louvores WHERE ativo`
	args := []any{}
	if busca != "" {
		query += ` AND (titulo ILIKE '%' || $1 || '%' OR artista ILIKE '%' || $1 || '%')`
		args = append(args, busca)
	}
	query += ` ORDER BY titulo`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listar louvores: %w", err)
	}
	defer rows.Close()

	var out []Louvor
	for rows.Next() {
		l, err := scanLouvor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Louvor, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+louvorColumns+` FROM louvores WHERE id = $1`, id)
	return scanLouvor(row)
}

func (r *Repository) Create(ctx context.Context, input Input) (*Louvor, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO louvores (titulo, artista, tom, letra)
		VALUES ($1, $2, $3, $4)
		RETURNING `+louvorColumns,
		input.Titulo, input.Artista, input.Tom, input.Letra)
	return scanLouvor(row)
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, input Input) (*Louvor, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE louvores
		SET titulo = $2, artista = $3, tom = $4, letra = $5, atualizado_em = now()
		WHERE id = $1
		RETURNING `+louvorColumns,
		id, input.Titulo, input.Artista, input.Tom, input.Letra)
	return scanLouvor(row)
}

// SetCifraURL grava o endereço da cifra após o upload.
func (r *Repository) SetCifraURL(ctx context.Context, id uuid.UUID, url string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE louvores SET cifra_url = $2, atualizado_em = now() WHERE id = $1`, id, url)
	if err != nil {
		return fmt.Errorf("gravar cifra: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete desativa o louvor sem apagar o histórico.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE louvores SET ativo = FALSE, atualizado_em = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("desativar louvor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLouvor(row pgx.Row) (*Louvor, error) {
	var l Louvor
	err := row.Scan(&l.ID, &l.Titulo, &l.Artista, &l.Tom, &l.Letra, &l.CifraURL,
		&l.Ativo, &l.CriadoEm, &l.AtualizadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}
