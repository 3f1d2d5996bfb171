package louvor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/storage"
)

type stubRepo struct {
	louvores map[uuid.UUID]*Louvor
	urls     map[uuid.UUID]string
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		louvores: make(map[uuid.UUID]*Louvor),
		urls:     make(map[uuid.UUID]string),
	}
}

func (s *stubRepo) List(ctx context.Context, busca string) ([]Louvor, error) {
	var out []Louvor
	for _, l := range s.louvores {
		if busca != "" && !strings.Contains(strings.ToLower(l.Titulo), strings.ToLower(busca)) {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*Louvor, error) {
	l, ok := s.louvores[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *stubRepo) Create(ctx context.Context, input Input) (*Louvor, error) {
	l := &Louvor{ID: uuid.New(), Titulo: input.Titulo, Artista: input.Artista, Tom: input.Tom, Letra: input.Letra, Ativo: true}
	s.louvores[l.ID] = l
	return l, nil
}

func (s *stubRepo) Update(ctx context.Context, id uuid.UUID, input Input) (*Louvor, error) {
	l, ok := s.louvores[id]
	if !ok {
		return nil, ErrNotFound
	}
	l.Titulo = input.Titulo
	l.Artista = input.Artista
	l.Tom = input.Tom
	l.Letra = input.Letra
	return l, nil
}

func (s *stubRepo) SetCifraURL(ctx context.Context, id uuid.UUID, url string) error {
	if _, ok := s.louvores[id]; !ok {
		return ErrNotFound
	}
	s.urls[id] = url
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	l, ok := s.louvores[id]
	if !ok {
		return ErrNotFound
	}
	l.Ativo = false
	return nil
}

type stubUploader struct {
	chaves []string
	err    error
}

func (s *stubUploader) Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.chaves = append(s.chaves, input.Key)
	return &storage.UploadResult{URL: "https://cdn.test/" + input.Key}, nil
}

func TestCreateExigeTitulo(t *testing.T) {
	svc := NewService(newStubRepo(), storage.NoopUploader{})

	if _, err := svc.Create(context.Background(), Input{Titulo: "   "}); !errors.Is(err, ErrTituloObrigatorio) {
		t.Fatalf("esperava ErrTituloObrigatorio, veio %v", err)
	}

	tom := "G"
	l, err := svc.Create(context.Background(), Input{Titulo: "  Grande É o Senhor  ", Tom: &tom})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if l.Titulo != "Grande É o Senhor" {
		t.Fatalf("título não aparado: %q", l.Titulo)
	}
}

func TestUploadCifra(t *testing.T) {
	repo := newStubRepo()
	up := &stubUploader{}
	svc := NewService(repo, up)
	ctx := context.Background()

	l, err := svc.Create(ctx, Input{Titulo: "Oceanos"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.UploadCifra(ctx, l.ID, "application/pdf", []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	wantKey := "cifras/" + l.ID.String() + ".pdf"
	if len(up.chaves) != 1 || up.chaves[0] != wantKey {
		t.Fatalf("chave inesperada: %v", up.chaves)
	}
	if res.CifraURL == nil || *res.CifraURL != "https://cdn.test/"+wantKey {
		t.Fatalf("url não gravada: %v", res.CifraURL)
	}
	if repo.urls[l.ID] != "https://cdn.test/"+wantKey {
		t.Fatalf("url não persistida: %q", repo.urls[l.ID])
	}
}

func TestUploadCifraValidacao(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, &stubUploader{})
	ctx := context.Background()

	l, err := svc.Create(ctx, Input{Titulo: "Oceanos"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.UploadCifra(ctx, l.ID, "text/html", []byte("x")); !errors.Is(err, ErrArquivoInvalido) {
		t.Fatalf("esperava ErrArquivoInvalido para content-type, veio %v", err)
	}
	if _, err := svc.UploadCifra(ctx, l.ID, "application/pdf", nil); !errors.Is(err, ErrArquivoInvalido) {
		t.Fatalf("esperava ErrArquivoInvalido para corpo vazio, veio %v", err)
	}
	if _, err := svc.UploadCifra(ctx, uuid.New(), "application/pdf", []byte("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("esperava ErrNotFound, veio %v", err)
	}
}

func TestUploadCifraSemStorage(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, storage.NoopUploader{})
	ctx := context.Background()

	l, err := svc.Create(ctx, Input{Titulo: "Oceanos"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.UploadCifra(ctx, l.ID, "application/pdf", []byte("x")); !errors.Is(err, storage.ErrNaoConfigurado) {
		t.Fatalf("esperava ErrNaoConfigurado, veio %v", err)
	}
}

func TestDeleteDesativa(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, storage.NoopUploader{})
	ctx := context.Background()

	l, err := svc.Create(ctx, Input{Titulo: "Oceanos"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, l.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.louvores[l.ID].Ativo {
		t.Fatal("louvor deveria estar inativo")
	}
}
