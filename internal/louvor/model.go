package louvor

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound indica louvor inexistente.
	ErrNotFound = errors.New("louvor não encontrado")
	// ErrTituloObrigatorio indica título ausente.
	ErrTituloObrigatorio = errors.New("título obrigatório")
	// ErrArquivoInvalido indica cifra com tipo ou tamanho não aceito.
	ErrArquivoInvalido = errors.New("arquivo de cifra inválido")
)

// Louvor é uma música do repertório com letra e cifra opcional.
type Louvor struct {
	ID           uuid.UUID `json:"id"`
	Titulo       string    `json:"titulo"`
	Artista      *string   `json:"artista,omitempty"`
	Tom          *string   `json:"tom,omitempty"`
	Letra        string    `json:"letra"`
	CifraURL     *string   `json:"cifra_url,omitempty"`
	Ativo        bool      `json:"ativo"`
	CriadoEm     time.Time `json:"criado_em"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// Input descreve os campos editáveis de um louvor.
type Input struct {
	Titulo  string
	Artista *string
	Tom     *string
	Letra   string
}
