package escala

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Estados de publicação da escala.
const (
	StatusRascunho  = "rascunho"
	StatusPublicada = "publicada"
)

// Placeholders exibidos quando uma função referencia registros removidos.
const (
	TagRemovida       = "Função removida"
	PessoaRemovida    = "Pessoa removida"
	CategoriaRemovida = "outros"
	LabelRemovida     = "Outros"
)

var (
	// ErrNotFound indica escala inexistente.
	ErrNotFound = errors.New("escala não encontrada")
	// ErrFuncaoNotFound indica função de escala inexistente.
	ErrFuncaoNotFound = errors.New("função da escala não encontrada")
	// ErrDataOcupada indica que já existe escala na data.
	ErrDataOcupada = errors.New("já existe escala para esta data")
	// ErrTituloObrigatorio indica título ausente.
	ErrTituloObrigatorio = errors.New("título obrigatório")
	// ErrDataInvalida indica data malformada.
	ErrDataInvalida = errors.New("data inválida")
	// ErrStatusInvalido indica status fora do ciclo rascunho/publicada.
	ErrStatusInvalido = errors.New("status inválido")
)

// Escala é o culto de uma data com suas funções atribuídas.
type Escala struct {
	ID       uuid.UUID `json:"id"`
	Data     time.Time `json:"data"`
	Titulo   string    `json:"titulo"`
	Status   string    `json:"status"`
	CriadoEm time.Time `json:"criado_em"`
}

// Funcao é uma atribuição tag+pessoa dentro de uma escala. Os ids de tag
// e pessoa não carregam integridade referencial: registros removidos
// degradam para placeholder na agregação.
type Funcao struct {
	ID         uuid.UUID `json:"id"`
	EscalaID   uuid.UUID `json:"escala_id"`
	TagID      uuid.UUID `json:"tag_id"`
	PessoaID   uuid.UUID `json:"pessoa_id"`
	Ordem      int       `json:"ordem"`
	Confirmado bool      `json:"confirmado"`
}

// FuncaoView é a função já resolvida para exibição.
type FuncaoView struct {
	ID         uuid.UUID `json:"id"`
	TagID      uuid.UUID `json:"tag_id"`
	TagNome    string    `json:"tag_nome"`
	PessoaID   uuid.UUID `json:"pessoa_id"`
	PessoaNome string    `json:"pessoa_nome"`
	Ordem      int       `json:"ordem"`
	Confirmado bool      `json:"confirmado"`
}

// Grupo agrega as funções de uma categoria na ordem de exibição.
type Grupo struct {
	Categoria string       `json:"categoria"`
	Label     string       `json:"label"`
	Funcoes   []FuncaoView `json:"funcoes"`
}

// View é o resultado da agregação por data. Existe falso significa
// "sem escala para a data", que não é um erro.
type View struct {
	Existe bool    `json:"existe"`
	Escala *Escala `json:"escala,omitempty"`
	Grupos []Grupo `json:"grupos,omitempty"`
}
