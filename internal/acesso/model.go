package acesso

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando nenhum registro é encontrado.
	ErrNotFound = errors.New("registro não encontrado")
	// ErrEmailEmUso indica conta já cadastrada para o e-mail.
	ErrEmailEmUso = errors.New("e-mail já cadastrado")
)

// Conta representa a credencial de login emitida pelo sistema.
type Conta struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	SenhaHash string    `json:"-"`
	CriadoEm  time.Time `json:"criado_em"`
}

// UsuarioAcesso é a projeção desnormalizada de uma pessoa com acesso,
// chaveada pelo id da conta para consulta rápida de permissões.
type UsuarioAcesso struct {
	ID           uuid.UUID `json:"id"`
	PessoaID     uuid.UUID `json:"pessoa_id"`
	Email        string    `json:"email"`
	Nome         string    `json:"nome"`
	Cargo        string    `json:"cargo"`
	Telefone     *string   `json:"telefone,omitempty"`
	Ativo        bool      `json:"ativo"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}
