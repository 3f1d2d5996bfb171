package convite

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/igrejacanaa/louvores/internal/auth"
	"github.com/igrejacanaa/louvores/internal/db"
)

const conviteColumns = `id, token, email, nome, cargo, telefone, pessoa_id,
	status, expira_em, aceito_em, aceito_por, tentativas_envio, ultimo_envio_em, criado_por, criado_em`

// Repository persiste convites e executa a mutação de aceite.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create insere um convite pendente com token recém-gerado. O índice
// parcial de pendentes transforma inserções concorrentes em
// ErrPendenteExiste, que o chamador resolve relendo o pendente vigente.
func (r *Repository) Create(ctx context.Context, p CreateParams) (*Convite, error) {
	token, err := auth.NewToken()
	if err != nil {
		return nil, fmt.Errorf("gerar token: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO convites (token, email, nome, cargo, telefone, pessoa_id, expira_em, criado_por)
		VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8)
		RETURNING `+conviteColumns,
		token, p.Email, p.Nome, p.Cargo, p.Telefone, p.PessoaID, p.ExpiraEm, p.CriadoPor)

	c, err := scanConvite(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == "23505":
				return nil, ErrPendenteExiste
			case pgErr.Code == "23503" && pgErr.ConstraintName == "convites_pessoa_id_fkey":
				return nil, ErrPessoaNaoEncontrada
			}
		}
		return nil, fmt.Errorf("inserir convite: %w", err)
	}
	return c, nil
}

func (r *Repository) GetByToken(ctx context.Context, token string) (*Convite, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+conviteColumns+` FROM convites WHERE token = $1`, token)
	return scanConvite(row)
}

// GetPendenteByPessoa devolve o convite pendente da pessoa, se houver.
func (r *Repository) GetPendenteByPessoa(ctx context.Context, pessoaID uuid.UUID) (*Convite, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+conviteColumns+` FROM convites WHERE pessoa_id = $1 AND status = 'pendente'`,
		pessoaID)
	return scanConvite(row)
}

// GetPendenteByEmail devolve o convite pendente sem pessoa vinculada
// para o e-mail informado.
func (r *Repository) GetPendenteByEmail(ctx context.Context, email string) (*Convite, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+conviteColumns+` FROM convites
		WHERE lower(email) = lower($1) AND pessoa_id IS NULL AND status = 'pendente'`,
		email)
	return scanConvite(row)
}

// MarcarExpirado aplica a transição preguiçosa pendente -> expirado.
func (r *Repository) MarcarExpirado(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE convites SET status = 'expirado' WHERE id = $1 AND status = 'pendente'`, id)
	if err != nil {
		return fmt.Errorf("expirar convite: %w", err)
	}
	return nil
}

// RegistrarEnvio incrementa o contador de envios do convite.
func (r *Repository) RegistrarEnvio(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE convites
		SET tentativas_envio = tentativas_envio + 1, ultimo_envio_em = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("registrar envio: %w", err)
	}
	return nil
}

// List devolve convites ordenados do mais recente para o mais antigo.
func (r *Repository) List(ctx context.Context, somentePendentes bool) ([]Convite, error) {
	query := `SELECT ` + conviteColumns + ` FROM convites`
	if somentePendentes {
		query += ` WHERE status = 'pendente'`
	}
	query += ` ORDER BY criado_em DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listar convites: %w", err)
	}
	defer rows.Close()

	var out []Convite
	for rows.Next() {
		c, err := scanConvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// ExpirarVencidos marca em lote os convites pendentes com prazo vencido.
// Usado pela varredura periódica; a leitura individual já expira sob
// demanda, então isto cobre apenas tokens que ninguém voltou a consultar.
func (r *Repository) ExpirarVencidos(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE convites SET status = 'expirado' WHERE status = 'pendente' AND expira_em < now()`)
	if err != nil {
		return 0, fmt.Errorf("expirar vencidos: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Aceitar executa o aceite em transação única: vincula ou cria a pessoa,
// grava o registro de acesso e consome o convite. PessoaID nulo cria a
// pessoa com id igual ao da conta, mantendo os dois registros pareados.
func (r *Repository) Aceitar(ctx context.Context, p AceitarParams) error {
	return db.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		pessoaID := p.ContaID
		if p.PessoaID != nil {
			pessoaID = *p.PessoaID
			_, err := tx.Exec(ctx, `
				UPDATE pessoas
				SET conta_id = $2, email = lower($3), tem_acesso = TRUE, ativo = TRUE,
				    atualizado_em = now()
				WHERE id = $1`,
				pessoaID, p.ContaID, p.Email)
			if err != nil {
				return fmt.Errorf("vincular pessoa: %w", err)
			}
		} else {
			_, err := tx.Exec(ctx, `
				INSERT INTO pessoas (id, nome, cargo, email, telefone, conta_id, tem_acesso)
				VALUES ($1, $2, $3, lower($4), $5, $1, TRUE)
				ON CONFLICT (id) DO UPDATE
				SET conta_id = EXCLUDED.conta_id, tem_acesso = TRUE, ativo = TRUE,
				    atualizado_em = now()`,
				p.ContaID, p.Nome, p.Cargo, p.Email, p.Telefone)
			if err != nil {
				return fmt.Errorf("criar pessoa: %w", err)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO usuarios_acesso (id, pessoa_id, email, nome, cargo, telefone)
			VALUES ($1, $2, lower($3), $4, $5, $6)
			ON CONFLICT (id) DO UPDATE
			SET pessoa_id = EXCLUDED.pessoa_id, email = EXCLUDED.email,
			    nome = EXCLUDED.nome, cargo = EXCLUDED.cargo,
			    telefone = EXCLUDED.telefone, ativo = TRUE, atualizado_em = now()`,
			p.ContaID, pessoaID, p.Email, p.Nome, p.Cargo, p.Telefone)
		if err != nil {
			return fmt.Errorf("gravar acesso: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE convites SET status = 'aceito', aceito_em = now(), aceito_por = $2
			WHERE id = $1 AND status = 'pendente'`,
			p.ConviteID, p.ContaID)
		if err != nil {
			return fmt.Errorf("consumir convite: %w", err)
		}
		return nil
	})
}

// BackfillEmailPessoa preenche o e-mail da pessoa quando o convite traz
// um endereço que ela ainda não tinha.
func (r *Repository) BackfillEmailPessoa(ctx context.Context, pessoaID uuid.UUID, email string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pessoas SET email = lower($2), atualizado_em = now()
		WHERE id = $1 AND (email IS NULL OR email = '')`,
		pessoaID, email)
	if err != nil {
		return fmt.Errorf("preencher email: %w", err)
	}
	return nil
}

func scanConvite(row pgx.Row) (*Convite, error) {
	var c Convite
	err := row.Scan(&c.ID, &c.Token, &c.Email, &c.Nome, &c.Cargo, &c.Telefone,
		&c.PessoaID, &c.Status, &c.ExpiraEm, &c.AceitoEm, &c.AceitoPor,
		&c.TentativasEnvio, &c.UltimoEnvioEm, &c.CriadoPor, &c.CriadoEm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
