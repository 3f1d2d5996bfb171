package tags

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type stubRepo struct {
	tags map[uuid.UUID]*Tag
}

func newStubRepo() *stubRepo {
	return &stubRepo{tags: make(map[uuid.UUID]*Tag)}
}

func (s *stubRepo) List(ctx context.Context, somenteAtivas bool) ([]Tag, error) {
	var out []Tag
	for _, t := range s.tags {
		if somenteAtivas && !t.Ativa {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Tag, error) {
	t, ok := s.tags[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *stubRepo) Create(ctx context.Context, nome, categoria string, ordem int) (*Tag, error) {
	t := &Tag{ID: uuid.New(), Nome: nome, Categoria: categoria, Ordem: ordem, Ativa: true}
	s.tags[t.ID] = t
	return t, nil
}

func (s *stubRepo) Update(ctx context.Context, tag Tag) (*Tag, error) {
	if _, ok := s.tags[tag.ID]; !ok {
		return nil, ErrNotFound
	}
	s.tags[tag.ID] = &tag
	return &tag, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.tags[id]; !ok {
		return ErrNotFound
	}
	delete(s.tags, id)
	return nil
}

func TestCreateNormalizaCategoria(t *testing.T) {
	svc := NewService(newStubRepo())

	tag, err := svc.Create(context.Background(), "  Violão ", " Instrumento ", 2)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tag.Nome != "Violão" || tag.Categoria != CategoriaInstrumento {
		t.Fatalf("tag inesperada: %+v", tag)
	}

	if _, err := svc.Create(context.Background(), " ", CategoriaVocal, 0); !errors.Is(err, ErrNomeObrigatorio) {
		t.Fatalf("esperava ErrNomeObrigatorio, veio %v", err)
	}
	if _, err := svc.Create(context.Background(), "Som", "cozinha", 0); !errors.Is(err, ErrCategoriaInvalida) {
		t.Fatalf("esperava ErrCategoriaInvalida, veio %v", err)
	}
}

func TestUpdateExigeTagExistente(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	tag, err := svc.Create(ctx, "Bateria", CategoriaInstrumento, 1)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tag.Nome = "Bateria acústica"
	atualizada, err := svc.Update(ctx, *tag)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if atualizada.Nome != "Bateria acústica" {
		t.Fatalf("nome não atualizado: %q", atualizada.Nome)
	}

	fantasma := Tag{ID: uuid.New(), Nome: "Inexistente", Categoria: CategoriaApoio}
	if _, err := svc.Update(ctx, fantasma); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperava ErrNotFound, veio %v", err)
	}
}
