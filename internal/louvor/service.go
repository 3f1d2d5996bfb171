package louvor

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/storage"
)

// Tipos de arquivo aceitos para cifras.
var cifraContentTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
}

const cifraMaxBytes = 10 << 20

type repository interface {
	List(ctx context.Context, busca string) ([]Louvor, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Louvor, error)
	Create(ctx context.Context, input Input) (*Louvor, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Louvor, error)
	SetCifraURL(ctx context.Context, id uuid.UUID, url string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service coordena o repertório e o upload de cifras.
type Service struct {
	repo     repository
	uploader storage.Uploader
}

func NewService(repo repository, uploader storage.Uploader) *Service {
	return &Service{repo: repo, uploader: uploader}
}

func (s *Service) List(ctx context.Context, busca string) ([]Louvor, error) {
	return s.repo.List(ctx, strings.TrimSpace(busca))
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Louvor, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, input Input) (*Louvor, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input Input) (*Louvor, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, input)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// UploadCifra envia o arquivo de cifra ao storage e grava a URL no
// louvor. A chave do objeto é derivada do id, então reenvios substituem
// a cifra anterior.
func (s *Service) UploadCifra(ctx context.Context, id uuid.UUID, contentType string, body []byte) (*Louvor, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ext, ok := cifraContentTypes[contentType]
	if !ok || len(body) == 0 || len(body) > cifraMaxBytes {
		return nil, ErrArquivoInvalido
	}

	res, err := s.uploader.Upload(ctx, storage.UploadInput{
		Key:         fmt.Sprintf("cifras/%s%s", id, ext),
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCifraURL(ctx, id, res.URL); err != nil {
		return nil, err
	}
	l.CifraURL = &res.URL
	return l, nil
}

func validate(input *Input) error {
	input.Titulo = strings.TrimSpace(input.Titulo)
	if input.Titulo == "" {
		return ErrTituloObrigatorio
	}
	return nil
}
