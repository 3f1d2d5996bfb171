package tags

import (
	"errors"

	"github.com/google/uuid"
)

// Categorias reconhecidas de funções do louvor.
const (
	CategoriaLideranca   = "lideranca"
	CategoriaVocal       = "vocal"
	CategoriaInstrumento = "instrumento"
	CategoriaTecnica     = "tecnica"
	CategoriaApoio       = "apoio"
)

// CategoriasOrdenadas define a ordem fixa de exibição das categorias.
var CategoriasOrdenadas = []string{
	CategoriaLideranca,
	CategoriaVocal,
	CategoriaInstrumento,
	CategoriaTecnica,
	CategoriaApoio,
}

// LabelsCategoria mapeia categoria para o rótulo exibido.
var LabelsCategoria = map[string]string{
	CategoriaLideranca:   "Liderança",
	CategoriaVocal:       "Vocal",
	CategoriaInstrumento: "Instrumentos",
	CategoriaTecnica:     "Técnica",
	CategoriaApoio:       "Apoio",
}

var (
	// ErrNotFound indica tag inexistente.
	ErrNotFound = errors.New("tag não encontrada")
	// ErrNomeObrigatorio indica nome ausente.
	ErrNomeObrigatorio = errors.New("nome obrigatório")
	// ErrCategoriaInvalida indica categoria não reconhecida.
	ErrCategoriaInvalida = errors.New("categoria inválida")
)

// Tag representa uma função/habilidade atribuível a pessoas e escalas.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Nome      string    `json:"nome"`
	Categoria string    `json:"categoria"`
	Ordem     int       `json:"ordem"`
	Ativa     bool      `json:"ativa"`
}

// IsValidCategoria informa se a categoria é reconhecida.
func IsValidCategoria(categoria string) bool {
	_, ok := LabelsCategoria[categoria]
	return ok
}
