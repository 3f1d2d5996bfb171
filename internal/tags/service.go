package tags

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type repository interface {
	List(ctx context.Context, somenteAtivas bool) ([]Tag, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	Create(ctx context.Context, nome, categoria string, ordem int) (*Tag, error)
	Update(ctx context.Context, tag Tag) (*Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service valida e coordena o catálogo de tags.
type Service struct {
	repo repository
}

func NewService(repo repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, somenteAtivas bool) ([]Tag, error) {
	return s.repo.List(ctx, somenteAtivas)
}

func (s *Service) Create(ctx context.Context, nome, categoria string, ordem int) (*Tag, error) {
	nome = strings.TrimSpace(nome)
	if nome == "" {
		return nil, ErrNomeObrigatorio
	}
	categoria = strings.ToLower(strings.TrimSpace(categoria))
	if !IsValidCategoria(categoria) {
		return nil, ErrCategoriaInvalida
	}
	return s.repo.Create(ctx, nome, categoria, ordem)
}

func (s *Service) Update(ctx context.Context, tag Tag) (*Tag, error) {
	tag.Nome = strings.TrimSpace(tag.Nome)
	if tag.Nome == "" {
		return nil, ErrNomeObrigatorio
	}
	tag.Categoria = strings.ToLower(strings.TrimSpace(tag.Categoria))
	if !IsValidCategoria(tag.Categoria) {
		return nil, ErrCategoriaInvalida
	}
	if _, err := s.repo.GetByID(ctx, tag.ID); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, tag)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
