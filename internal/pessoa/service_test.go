package pessoa

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/permissao"
)

type stubRepo struct {
	pessoas map[uuid.UUID]*Pessoa
	tags    map[uuid.UUID][]TagVinculada
	setTags []string
	removed []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		pessoas: make(map[uuid.UUID]*Pessoa),
		tags:    make(map[uuid.UUID][]TagVinculada),
	}
}

func (s *stubRepo) List(ctx context.Context, somenteAtivas bool) ([]Pessoa, error) {
	var out []Pessoa
	for _, p := range s.pessoas {
		if somenteAtivas && !p.Ativo {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Pessoa, error) {
	p, ok := s.pessoas[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(ctx context.Context, input CreateInput) (*Pessoa, error) {
	p := &Pessoa{
		ID:       uuid.New(),
		Nome:     input.Nome,
		Cargo:    input.Cargo,
		Email:    input.Email,
		Telefone: input.Telefone,
		Ativo:    true,
	}
	s.pessoas[p.ID] = p
	return p, nil
}

func (s *stubRepo) Update(ctx context.Context, input UpdateInput) (*Pessoa, error) {
	p, ok := s.pessoas[input.ID]
	if !ok {
		return nil, ErrNotFound
	}
	p.Nome = input.Nome
	p.Cargo = input.Cargo
	p.Email = input.Email
	p.Telefone = input.Telefone
	p.Ativo = input.Ativo
	return p, nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	p, ok := s.pessoas[id]
	if !ok {
		return ErrNotFound
	}
	p.Ativo = false
	return nil
}

func (s *stubRepo) SetTag(ctx context.Context, pessoaID, tagID uuid.UUID, nivel string) error {
	s.setTags = append(s.setTags, pessoaID.String()+"/"+tagID.String()+"/"+nivel)
	return nil
}

func (s *stubRepo) RemoveTag(ctx context.Context, pessoaID, tagID uuid.UUID) error {
	s.removed = append(s.removed, tagID)
	return nil
}

func (s *stubRepo) ListTags(ctx context.Context, pessoaID uuid.UUID) ([]TagVinculada, error) {
	return s.tags[pessoaID], nil
}

func strPtr(v string) *string { return &v }

func TestCreateNormalizaCampos(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateInput{
		Nome:     "Maria Souza",
		Telefone: strPtr("(75) 99999-8888"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Cargo != permissao.CargoMembro {
		t.Fatalf("cargo default deveria ser membro, veio %q", p.Cargo)
	}
	if p.Telefone == nil || *p.Telefone != "75999998888" {
		t.Fatalf("telefone não normalizado: %v", p.Telefone)
	}
}

func TestCreateValidacao(t *testing.T) {
	svc := NewService(newStubRepo())
	ctx := context.Background()

	cases := []struct {
		nome  string
		input CreateInput
		want  error
	}{
		{"sem nome", CreateInput{Nome: "  "}, ErrNomeObrigatorio},
		{"cargo desconhecido", CreateInput{Nome: "Ana", Cargo: "bispo"}, ErrCargoInvalido},
		{"email invalido", CreateInput{Nome: "Ana", Email: strPtr("nao-é-email")}, ErrEmailInvalido},
		{"telefone invalido", CreateInput{Nome: "Ana", Telefone: strPtr("123")}, ErrTelefoneInvalido},
	}
	for _, tc := range cases {
		if _, err := svc.Create(ctx, tc.input); !errors.Is(err, tc.want) {
			t.Errorf("%s: esperava %v, veio %v", tc.nome, tc.want, err)
		}
	}
}

func TestGetAgregaTags(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), CreateInput{Nome: "João", Cargo: permissao.CargoMusico})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.tags[p.ID] = []TagVinculada{{TagID: uuid.New(), Nome: "Violão", Categoria: "instrumento", Nivel: "avancado"}}

	com, err := svc.Get(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(com.Tags) != 1 || com.Tags[0].Nome != "Violão" {
		t.Fatalf("tags não agregadas: %+v", com.Tags)
	}

	if _, err := svc.Get(context.Background(), uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperava ErrNotFound, veio %v", err)
	}
}

func TestToggleTag(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Nome: "João"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tagID := uuid.New()

	// Nível vazio assume intermediário.
	if err := svc.ToggleTag(ctx, p.ID, tagID, "", false); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if len(repo.setTags) != 1 || repo.setTags[0] != p.ID.String()+"/"+tagID.String()+"/intermediario" {
		t.Fatalf("vínculo inesperado: %v", repo.setTags)
	}

	if err := svc.ToggleTag(ctx, p.ID, tagID, "mestre", false); !errors.Is(err, ErrNivelInvalido) {
		t.Fatalf("esperava ErrNivelInvalido, veio %v", err)
	}

	if err := svc.ToggleTag(ctx, p.ID, tagID, "", true); err != nil {
		t.Fatalf("remover: %v", err)
	}
	if len(repo.removed) != 1 || repo.removed[0] != tagID {
		t.Fatalf("remoção não registrada: %v", repo.removed)
	}

	if err := svc.ToggleTag(ctx, uuid.New(), tagID, "", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperava ErrNotFound para pessoa inexistente, veio %v", err)
	}
}

func TestDeleteDesativa(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateInput{Nome: "João"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	ativas, err := svc.List(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ativas) != 0 {
		t.Fatalf("pessoa desativada ainda listada: %+v", ativas)
	}
}
