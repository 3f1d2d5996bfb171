package pessoa

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound é retornado quando a pessoa não existe.
	ErrNotFound = errors.New("pessoa não encontrada")
	// ErrEmailEmUso indica e-mail já associado a outra pessoa.
	ErrEmailEmUso = errors.New("e-mail já associado a outra pessoa")
)

// Pessoa representa um registro do rol de membros, independente de login.
type Pessoa struct {
	ID           uuid.UUID  `json:"id"`
	Nome         string     `json:"nome"`
	Cargo        string     `json:"cargo"`
	Email        *string    `json:"email,omitempty"`
	Telefone     *string    `json:"telefone,omitempty"`
	ContaID      *uuid.UUID `json:"conta_id,omitempty"`
	TemAcesso    bool       `json:"tem_acesso"`
	Ativo        bool       `json:"ativo"`
	CriadoEm     time.Time  `json:"criado_em"`
	AtualizadoEm time.Time  `json:"atualizado_em"`
}

// TagVinculada apresenta uma função atribuída à pessoa com nível de habilidade.
type TagVinculada struct {
	TagID     uuid.UUID `json:"tag_id"`
	Nome      string    `json:"nome"`
	Categoria string    `json:"categoria"`
	Nivel     string    `json:"nivel"`
}

// PessoaComTags agrega a pessoa e suas funções.
type PessoaComTags struct {
	Pessoa
	Tags []TagVinculada `json:"tags"`
}

// CreateInput descreve os campos aceitos na criação.
type CreateInput struct {
	Nome     string
	Cargo    string
	Email    *string
	Telefone *string
}

// UpdateInput descreve os campos aceitos na atualização.
type UpdateInput struct {
	ID       uuid.UUID
	Nome     string
	Cargo    string
	Email    *string
	Telefone *string
	Ativo    bool
}
