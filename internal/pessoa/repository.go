package pessoa

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pessoaColumns = `id, nome, cargo, email, telefone, conta_id, tem_acesso, ativo, criado_em, atualizado_em`

// Repository fornece acesso à tabela pessoas e ao vínculo pessoa_tags.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List devolve todas as pessoas, opcionalmente apenas ativas.
func (r *Repository) List(ctx context.Context, somenteAtivas bool) ([]Pessoa, error) {
	query := `SELECT ` + pessoaColumns + ` FROM pessoas`
	if somenteAtivas {
		query += ` WHERE ativo`
	}
	query += ` ORDER BY nome ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pessoas []Pessoa
	for rows.Next() {
		p, err := scanPessoa(rows)
		if err != nil {
			return nil, err
		}
		pessoas = append(pessoas, *p)
	}
	return pessoas, rows.Err()
}

// GetByID recupera pessoa pelo id.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Pessoa, error) {
	const query = `SELECT ` + pessoaColumns + ` FROM pessoas WHERE id = $1`
	return scanPessoa(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail recupera pessoa pelo e-mail.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*Pessoa, error) {
	const query = `SELECT ` + pessoaColumns + ` FROM pessoas WHERE lower(email) = $1`
	return scanPessoa(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// Create insere nova pessoa.
func (r *Repository) Create(ctx context.Context, input CreateInput) (*Pessoa, error) {
	const query = `
        INSERT INTO pessoas (id, nome, cargo, email, telefone)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + pessoaColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		strings.TrimSpace(input.Nome),
		input.Cargo,
		normalizeEmailPtr(input.Email),
		input.Telefone,
	)
	p, err := scanPessoa(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return p, nil
}

// Update altera dados principais da pessoa.
func (r *Repository) Update(ctx context.Context, input UpdateInput) (*Pessoa, error) {
	const query = `
        UPDATE pessoas
        SET nome = $2,
            cargo = $3,
            email = $4,
            telefone = $5,
            ativo = $6,
            atualizado_em = now()
        WHERE id = $1
        RETURNING ` + pessoaColumns

	row := r.pool.QueryRow(ctx, query,
		input.ID,
		strings.TrimSpace(input.Nome),
		input.Cargo,
		normalizeEmailPtr(input.Email),
		input.Telefone,
		input.Ativo,
	)
	p, err := scanPessoa(row)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return p, nil
}

// Delete desativa a pessoa (o histórico de escalas permanece referenciável).
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE pessoas SET ativo = FALSE, atualizado_em = now() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTag vincula (ou atualiza o nível de) uma função à pessoa.
func (r *Repository) SetTag(ctx context.Context, pessoaID, tagID uuid.UUID, nivel string) error {
	const query = `
        INSERT INTO pessoa_tags (pessoa_id, tag_id, nivel)
        VALUES ($1, $2, $3)
        ON CONFLICT (pessoa_id, tag_id) DO UPDATE SET nivel = EXCLUDED.nivel
    `
	_, err := r.pool.Exec(ctx, query, pessoaID, tagID, nivel)
	return err
}

// RemoveTag desvincula a função da pessoa.
func (r *Repository) RemoveTag(ctx context.Context, pessoaID, tagID uuid.UUID) error {
	const query = `DELETE FROM pessoa_tags WHERE pessoa_id = $1 AND tag_id = $2`
	tag, err := r.pool.Exec(ctx, query, pessoaID, tagID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTags devolve as funções vinculadas à pessoa.
func (r *Repository) ListTags(ctx context.Context, pessoaID uuid.UUID) ([]TagVinculada, error) {
	const query = `
        SELECT pt.tag_id, tf.nome, tf.categoria, pt.nivel
        FROM pessoa_tags pt
        JOIN tags_funcoes tf ON tf.id = pt.tag_id
        WHERE pt.pessoa_id = $1
        ORDER BY tf.ordem ASC
    `
	rows, err := r.pool.Query(ctx, query, pessoaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []TagVinculada
	for rows.Next() {
		var t TagVinculada
		if err := rows.Scan(&t.TagID, &t.Nome, &t.Categoria, &t.Nivel); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// GetByIDs devolve um lote de pessoas em uma única consulta.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Pessoa, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT ` + pessoaColumns + ` FROM pessoas WHERE id = ANY($1)`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pessoas []Pessoa
	for rows.Next() {
		p, err := scanPessoa(rows)
		if err != nil {
			return nil, err
		}
		pessoas = append(pessoas, *p)
	}
	return pessoas, rows.Err()
}

func normalizeEmailPtr(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailEmUso
	}
	return err
}

func scanPessoa(row pgx.Row) (*Pessoa, error) {
	var p Pessoa
	if err := row.Scan(&p.ID, &p.Nome, &p.Cargo, &p.Email, &p.Telefone, &p.ContaID, &p.TemAcesso, &p.Ativo, &p.CriadoEm, &p.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
