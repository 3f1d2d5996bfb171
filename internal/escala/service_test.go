package escala

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/pessoa"
	"github.com/igrejacanaa/louvores/internal/tags"
)

type stubRepo struct {
	porData map[string]*Escala
	funcoes map[uuid.UUID][]Funcao
	criadas []Escala
}

func newStubRepo() *stubRepo {
	return &stubRepo{porData: map[string]*Escala{}, funcoes: map[uuid.UUID][]Funcao{}}
}

func dataKey(t time.Time) string { return t.Format("2006-01-02") }

func (s *stubRepo) GetByData(_ context.Context, data time.Time) (*Escala, error) {
	if e, ok := s.porData[dataKey(data)]; ok {
		return e, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetByID(_ context.Context, id uuid.UUID) (*Escala, error) {
	for _, e := range s.porData {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

func (s *stubRepo) List(_ context.Context, _ time.Time) ([]Escala, error) {
	return nil, nil
}

func (s *stubRepo) Create(_ context.Context, data time.Time, titulo string) (*Escala, error) {
	if _, ok := s.porData[dataKey(data)]; ok {
		return nil, ErrDataOcupada
	}
	e := &Escala{ID: uuid.New(), Data: data, Titulo: titulo, Status: StatusRascunho}
	s.porData[dataKey(data)] = e
	s.criadas = append(s.criadas, *e)
	return e, nil
}

func (s *stubRepo) SetStatus(_ context.Context, _ uuid.UUID, _ string) error { return nil }
func (s *stubRepo) Delete(_ context.Context, _ uuid.UUID) error              { return nil }

func (s *stubRepo) ListFuncoes(_ context.Context, escalaID uuid.UUID) ([]Funcao, error) {
	return s.funcoes[escalaID], nil
}

func (s *stubRepo) AddFuncao(_ context.Context, escalaID, tagID, pessoaID uuid.UUID, ordem int) (*Funcao, error) {
	f := Funcao{ID: uuid.New(), EscalaID: escalaID, TagID: tagID, PessoaID: pessoaID, Ordem: ordem}
	s.funcoes[escalaID] = append(s.funcoes[escalaID], f)
	return &f, nil
}

func (s *stubRepo) SetConfirmado(_ context.Context, _ uuid.UUID, _ bool) error { return nil }
func (s *stubRepo) RemoveFuncao(_ context.Context, _ uuid.UUID) error          { return nil }

type stubTags struct {
	porID map[uuid.UUID]tags.Tag
}

func (s *stubTags) GetByIDs(_ context.Context, ids []uuid.UUID) ([]tags.Tag, error) {
	var out []tags.Tag
	for _, id := range ids {
		if t, ok := s.porID[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubPessoas struct {
	porID map[uuid.UUID]pessoa.Pessoa
}

func (s *stubPessoas) GetByIDs(_ context.Context, ids []uuid.UUID) ([]pessoa.Pessoa, error) {
	var out []pessoa.Pessoa
	for _, id := range ids {
		if p, ok := s.porID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestGetPorDataSemEscala(t *testing.T) {
	svc := NewService(newStubRepo(), &stubTags{}, &stubPessoas{})

	view, err := svc.GetPorData(context.Background(), time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("ausência de escala não é erro: %v", err)
	}
	if view.Existe {
		t.Fatal("Existe deveria ser falso")
	}
}

func TestGetPorDataAgrupaPorCategoria(t *testing.T) {
	repo := newStubRepo()
	data := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	e := &Escala{ID: uuid.New(), Data: data, Titulo: "Culto da manhã", Status: StatusPublicada}
	repo.porData[dataKey(data)] = e

	tagMinistro := tags.Tag{ID: uuid.New(), Nome: "Ministro", Categoria: tags.CategoriaLideranca}
	tagVoz := tags.Tag{ID: uuid.New(), Nome: "Soprano", Categoria: tags.CategoriaVocal}
	tagGuitarra := tags.Tag{ID: uuid.New(), Nome: "Guitarra", Categoria: tags.CategoriaInstrumento}

	pMinistro := pessoa.Pessoa{ID: uuid.New(), Nome: "João"}
	pVoz := pessoa.Pessoa{ID: uuid.New(), Nome: "Maria"}
	pGuitarra := pessoa.Pessoa{ID: uuid.New(), Nome: "Pedro"}

	// Inserção proposital fora da ordem de exibição.
	repo.funcoes[e.ID] = []Funcao{
		{ID: uuid.New(), TagID: tagGuitarra.ID, PessoaID: pGuitarra.ID, Ordem: 0},
		{ID: uuid.New(), TagID: tagMinistro.ID, PessoaID: pMinistro.ID, Ordem: 1},
		{ID: uuid.New(), TagID: tagVoz.ID, PessoaID: pVoz.ID, Ordem: 2, Confirmado: true},
	}

	svc := NewService(repo,
		&stubTags{porID: map[uuid.UUID]tags.Tag{tagMinistro.ID: tagMinistro, tagVoz.ID: tagVoz, tagGuitarra.ID: tagGuitarra}},
		&stubPessoas{porID: map[uuid.UUID]pessoa.Pessoa{pMinistro.ID: pMinistro, pVoz.ID: pVoz, pGuitarra.ID: pGuitarra}})

	view, err := svc.GetPorData(context.Background(), data)
	if err != nil {
		t.Fatalf("GetPorData: %v", err)
	}
	if !view.Existe {
		t.Fatal("Existe deveria ser verdadeiro")
	}

	want := []string{tags.CategoriaLideranca, tags.CategoriaVocal, tags.CategoriaInstrumento}
	if len(view.Grupos) != len(want) {
		t.Fatalf("grupos = %d, esperado %d", len(view.Grupos), len(want))
	}
	for i, categoria := range want {
		if view.Grupos[i].Categoria != categoria {
			t.Fatalf("grupo %d = %q, esperado %q", i, view.Grupos[i].Categoria, categoria)
		}
	}

	lideranca := view.Grupos[0]
	if lideranca.Label != "Liderança" {
		t.Fatalf("label = %q", lideranca.Label)
	}
	if len(lideranca.Funcoes) != 1 || lideranca.Funcoes[0].PessoaNome != "João" {
		t.Fatalf("funções de liderança inesperadas: %+v", lideranca.Funcoes)
	}

	vocal := view.Grupos[1].Funcoes[0]
	if !vocal.Confirmado || vocal.TagNome != "Soprano" {
		t.Fatalf("função vocal inesperada: %+v", vocal)
	}
}

func TestGetPorDataComReferenciasRemovidas(t *testing.T) {
	repo := newStubRepo()
	data := time.Date(2026, 9, 13, 0, 0, 0, 0, time.UTC)
	e := &Escala{ID: uuid.New(), Data: data, Titulo: "Culto da noite", Status: StatusPublicada}
	repo.porData[dataKey(data)] = e

	tagViva := tags.Tag{ID: uuid.New(), Nome: "Baixo", Categoria: tags.CategoriaInstrumento}
	pViva := pessoa.Pessoa{ID: uuid.New(), Nome: "Ana"}

	tagApagada := uuid.New()
	pessoaApagada := uuid.New()

	repo.funcoes[e.ID] = []Funcao{
		{ID: uuid.New(), TagID: tagViva.ID, PessoaID: pessoaApagada, Ordem: 0},
		{ID: uuid.New(), TagID: tagApagada, PessoaID: pViva.ID, Ordem: 1},
	}

	svc := NewService(repo,
		&stubTags{porID: map[uuid.UUID]tags.Tag{tagViva.ID: tagViva}},
		&stubPessoas{porID: map[uuid.UUID]pessoa.Pessoa{pViva.ID: pViva}})

	view, err := svc.GetPorData(context.Background(), data)
	if err != nil {
		t.Fatalf("referências removidas não podem derrubar a agregação: %v", err)
	}

	if len(view.Grupos) != 2 {
		t.Fatalf("grupos = %d, esperado 2", len(view.Grupos))
	}

	instrumento := view.Grupos[0]
	if instrumento.Categoria != tags.CategoriaInstrumento {
		t.Fatalf("primeiro grupo = %q", instrumento.Categoria)
	}
	if instrumento.Funcoes[0].PessoaNome != PessoaRemovida {
		t.Fatalf("pessoa removida deveria virar placeholder, veio %q", instrumento.Funcoes[0].PessoaNome)
	}

	outros := view.Grupos[1]
	if outros.Categoria != CategoriaRemovida || outros.Label != LabelRemovida {
		t.Fatalf("grupo placeholder inesperado: %+v", outros)
	}
	if outros.Funcoes[0].TagNome != TagRemovida {
		t.Fatalf("tag removida deveria virar placeholder, veio %q", outros.Funcoes[0].TagNome)
	}
	if outros.Funcoes[0].PessoaNome != "Ana" {
		t.Fatalf("pessoa viva deveria resolver, veio %q", outros.Funcoes[0].PessoaNome)
	}
}

func TestCriarValidacao(t *testing.T) {
	svc := NewService(newStubRepo(), &stubTags{}, &stubPessoas{})
	ctx := context.Background()
	data := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Criar(ctx, data, "  "); !errors.Is(err, ErrTituloObrigatorio) {
		t.Fatalf("título vazio: %v", err)
	}
	if _, err := svc.Criar(ctx, time.Time{}, "Culto"); !errors.Is(err, ErrDataInvalida) {
		t.Fatalf("data zero: %v", err)
	}

	if _, err := svc.Criar(ctx, data, "Culto"); err != nil {
		t.Fatalf("Criar: %v", err)
	}
	if _, err := svc.Criar(ctx, data, "Outro culto"); !errors.Is(err, ErrDataOcupada) {
		t.Fatalf("data duplicada: %v", err)
	}
}

func TestAlterarStatusInvalido(t *testing.T) {
	svc := NewService(newStubRepo(), &stubTags{}, &stubPessoas{})

	if err := svc.AlterarStatus(context.Background(), uuid.New(), "cancelada"); !errors.Is(err, ErrStatusInvalido) {
		t.Fatalf("status fora do ciclo: %v", err)
	}
}
