package acesso

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository fornece acesso às tabelas contas e usuarios_acesso.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateConta insere uma nova conta de login.
func (r *Repository) CreateConta(ctx context.Context, email, senhaHash string) (*Conta, error) {
	const query = `
        INSERT INTO contas (id, email, senha_hash)
        VALUES ($1, $2, $3)
        RETURNING id, email, senha_hash, criado_em
    `

	row := r.pool.QueryRow(ctx, query, uuid.New(), normalizeEmail(email), senhaHash)
	conta, err := scanConta(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailEmUso
		}
		return nil, err
	}
	return conta, nil
}

// GetContaByEmail recupera conta pelo e-mail.
func (r *Repository) GetContaByEmail(ctx context.Context, email string) (*Conta, error) {
	const query = `SELECT id, email, senha_hash, criado_em FROM contas WHERE email = $1`
	return scanConta(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
}

// GetContaByID recupera conta pelo id.
func (r *Repository) GetContaByID(ctx context.Context, id uuid.UUID) (*Conta, error) {
	const query = `SELECT id, email, senha_hash, criado_em FROM contas WHERE id = $1`
	return scanConta(r.pool.QueryRow(ctx, query, id))
}

// GetByEmail recupera o registro de acesso pelo e-mail.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*UsuarioAcesso, error) {
	const query = `
        SELECT id, pessoa_id, email, nome, cargo, telefone, ativo, criado_em, atualizado_em
        FROM usuarios_acesso
        WHERE email = $1
    `
	return scanUsuarioAcesso(r.pool.QueryRow(ctx, query, normalizeEmail(email)))
}

// GetByID recupera o registro de acesso pelo id da conta.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*UsuarioAcesso, error) {
	const query = `
        SELECT id, pessoa_id, email, nome, cargo, telefone, ativo, criado_em, atualizado_em
        FROM usuarios_acesso
        WHERE id = $1
    `
	return scanUsuarioAcesso(r.pool.QueryRow(ctx, query, id))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanConta(row pgx.Row) (*Conta, error) {
	var c Conta
	if err := row.Scan(&c.ID, &c.Email, &c.SenhaHash, &c.CriadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func scanUsuarioAcesso(row pgx.Row) (*UsuarioAcesso, error) {
	var u UsuarioAcesso
	if err := row.Scan(&u.ID, &u.PessoaID, &u.Email, &u.Nome, &u.Cargo, &u.Telefone, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}
