package storage

import (
	"context"
	"errors"
)

// UploadInput descreve um arquivo a persistir (cifras em PDF/imagem).
type UploadInput struct {
	Key         string
	Body        []byte
	ContentType string
}

// UploadResult aponta para o artefato persistido.
type UploadResult struct {
	URL  string
	ETag string
}

// Uploader abstrai o backend de blobs. Em desenvolvimento usa-se o noop.
type Uploader interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

// ErrNaoConfigurado indica ausência de backend de storage.
var ErrNaoConfigurado = errors.New("storage não configurado")

// NoopUploader rejeita qualquer upload. Mantém o restante do sistema
// funcional quando o bucket não está configurado.
type NoopUploader struct{}

func (NoopUploader) Upload(context.Context, UploadInput) (*UploadResult, error) {
	return nil, ErrNaoConfigurado
}
