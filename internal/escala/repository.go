package escala

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const escalaColumns = `id, data, titulo, status, criado_em`

// Repository persiste escalas e suas funções.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByData(ctx context.Context, data time.Time) (*Escala, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+escalaColumns+` FROM escalas WHERE data = $1`, data)
	return scanEscala(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Escala, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+escalaColumns+` FROM escalas WHERE id = $1`, id)
	return scanEscala(row)
}

// List devolve as escalas a partir da data informada, mais próximas primeiro.
func (r *Repository) List(ctx context.Context, aPartirDe time.Time) ([]Escala, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+escalaColumns+` FROM escalas WHERE data >= $1 ORDER BY data`, aPartirDe)
	if err != nil {
		return nil, fmt.Errorf("listar escalas: %w", err)
	}
	defer rows.Close()

	var out []Escala
	for rows.Next() {
		e, err := scanEscala(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *Repository) Create(ctx context.Context, data time.Time, titulo string) (*Escala, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO escalas (data, titulo)
		VALUES ($1, $2)
		RETURNING `+escalaColumns,
		data, titulo)

	e, err := scanEscala(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDataOcupada
		}
		return nil, fmt.Errorf("criar escala: %w", err)
	}
	return e, nil
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE escalas SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("atualizar status da escala: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM escalas WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("remover escala: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFuncoes devolve as funções atribuídas na ordem de exibição.
func (r *Repository) ListFuncoes(ctx context.Context, escalaID uuid.UUID) ([]Funcao, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, escala_id, tag_id, pessoa_id, ordem, confirmado
		FROM escala_funcoes
		WHERE escala_id = $1
		ORDER BY ordem, id`, escalaID)
	if err != nil {
		return nil, fmt.Errorf("listar funções: %w", err)
	}
	defer rows.Close()

	var out []Funcao
	for rows.Next() {
		var f Funcao
		if err := rows.Scan(&f.ID, &f.EscalaID, &f.TagID, &f.PessoaID, &f.Ordem, &f.Confirmado); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repository) AddFuncao(ctx context.Context, escalaID, tagID, pessoaID uuid.UUID, ordem int) (*Funcao, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO escala_funcoes (escala_id, tag_id, pessoa_id, ordem)
		VALUES ($1, $2, $3, $4)
		RETURNING id, escala_id, tag_id, pessoa_id, ordem, confirmado`,
		escalaID, tagID, pessoaID, ordem)

	var f Funcao
	err := row.Scan(&f.ID, &f.EscalaID, &f.TagID, &f.PessoaID, &f.Ordem, &f.Confirmado)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("atribuir função: %w", err)
	}
	return &f, nil
}

func (r *Repository) SetConfirmado(ctx context.Context, funcaoID uuid.UUID, confirmado bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE escala_funcoes SET confirmado = $2 WHERE id = $1`, funcaoID, confirmado)
	if err != nil {
		return fmt.Errorf("confirmar função: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFuncaoNotFound
	}
	return nil
}

func (r *Repository) RemoveFuncao(ctx context.Context, funcaoID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM escala_funcoes WHERE id = $1`, funcaoID)
	if err != nil {
		return fmt.Errorf("remover função: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFuncaoNotFound
	}
	return nil
}

func scanEscala(row pgx.Row) (*Escala, error) {
	var e Escala
	err := row.Scan(&e.ID, &e.Data, &e.Titulo, &e.Status, &e.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}
