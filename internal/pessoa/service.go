package pessoa

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/permissao"
	"github.com/igrejacanaa/louvores/internal/util"
)

var (
	// ErrNomeObrigatorio indica nome ausente.
	ErrNomeObrigatorio = errors.New("nome obrigatório")
	// ErrEmailInvalido indica e-mail malformado.
	ErrEmailInvalido = errors.New("email inválido")
	// ErrCargoInvalido indica cargo não reconhecido.
	ErrCargoInvalido = errors.New("cargo inválido")
	// ErrTelefoneInvalido indica telefone fora do formato brasileiro.
	ErrTelefoneInvalido = errors.New("telefone inválido")
	// ErrNivelInvalido indica nível de habilidade não reconhecido.
	ErrNivelInvalido = errors.New("nível inválido")
)

var niveisValidos = map[string]struct{}{
	"iniciante":     {},
	"intermediario": {},
	"avancado":      {},
}

type repository interface {
	List(ctx context.Context, somenteAtivas bool) ([]Pessoa, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Pessoa, error)
	Create(ctx context.Context, input CreateInput) (*Pessoa, error)
	Update(ctx context.Context, input UpdateInput) (*Pessoa, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetTag(ctx context.Context, pessoaID, tagID uuid.UUID, nivel string) error
	RemoveTag(ctx context.Context, pessoaID, tagID uuid.UUID) error
	ListTags(ctx context.Context, pessoaID uuid.UUID) ([]TagVinculada, error)
}

// Service concentra as regras do rol de membros.
type Service struct {
	repo repository
}

func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

// List devolve as pessoas cadastradas.
func (s *Service) List(ctx context.Context, somenteAtivas bool) ([]Pessoa, error) {
	return s.repo.List(ctx, somenteAtivas)
}

// Get devolve a pessoa com suas funções.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PessoaComTags, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	tags, err := s.repo.ListTags(ctx, id)
	if err != nil {
		return nil, err
	}
	return &PessoaComTags{Pessoa: *p, Tags: tags}, nil
}

// Create cadastra uma nova pessoa sem acesso ao sistema.
func (s *Service) Create(ctx context.Context, input CreateInput) (*Pessoa, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, ErrNomeObrigatorio
	}
	input.Cargo = permissao.NormalizeCargo(input.Cargo)
	if input.Cargo == "" {
		input.Cargo = permissao.CargoMembro
	}
	if !permissao.IsValidCargo(input.Cargo) {
		return nil, ErrCargoInvalido
	}
	if input.Email != nil && *input.Email != "" {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, ErrEmailInvalido
		}
	}
	if telefone, err := normalizeTelefone(input.Telefone); err != nil {
		return nil, err
	} else {
		input.Telefone = telefone
	}

	return s.repo.Create(ctx, input)
}

// Update altera dados da pessoa.
func (s *Service) Update(ctx context.Context, input UpdateInput) (*Pessoa, error) {
	if err := util.RequireString(input.Nome, "nome"); err != nil {
		return nil, ErrNomeObrigatorio
	}
	input.Cargo = permissao.NormalizeCargo(input.Cargo)
	if !permissao.IsValidCargo(input.Cargo) {
		return nil, ErrCargoInvalido
	}
	if input.Email != nil && *input.Email != "" {
		if err := util.ValidateEmail(*input.Email); err != nil {
			return nil, ErrEmailInvalido
		}
	}
	if telefone, err := normalizeTelefone(input.Telefone); err != nil {
		return nil, err
	} else {
		input.Telefone = telefone
	}

	return s.repo.Update(ctx, input)
}

// Delete desativa a pessoa.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ToggleTag vincula ou desvincula uma função. Vincular com a mesma tag
// atualiza o nível.
func (s *Service) ToggleTag(ctx context.Context, pessoaID, tagID uuid.UUID, nivel string, remover bool) error {
	if _, err := s.repo.GetByID(ctx, pessoaID); err != nil {
		return err
	}
	if remover {
		return s.repo.RemoveTag(ctx, pessoaID, tagID)
	}
	if nivel == "" {
		nivel = "intermediario"
	}
	if _, ok := niveisValidos[nivel]; !ok {
		return ErrNivelInvalido
	}
	return s.repo.SetTag(ctx, pessoaID, tagID, nivel)
}

func normalizeTelefone(telefone *string) (*string, error) {
	if telefone == nil || *telefone == "" {
		return nil, nil
	}
	if !util.IsValidPhone(*telefone) {
		return nil, ErrTelefoneInvalido
	}
	digits := util.UnformatPhone(*telefone)
	return &digits, nil
}
