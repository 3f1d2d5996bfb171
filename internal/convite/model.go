package convite

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Estados do ciclo de vida de um convite. O estado inicial é pendente;
// aceito e expirado são terminais.
const (
	StatusPendente = "pendente"
	StatusAceito   = "aceito"
	StatusExpirado = "expirado"
)

var (
	// ErrNotFound indica token sem convite correspondente.
	ErrNotFound = errors.New("convite não encontrado")
	// ErrExpirado indica convite vencido.
	ErrExpirado = errors.New("convite expirado")
	// ErrJaUtilizado indica convite já aceito.
	ErrJaUtilizado = errors.New("convite já utilizado")
	// ErrCamposObrigatorios indica entrada incompleta.
	ErrCamposObrigatorios = errors.New("email, nome e cargo são obrigatórios")
	// ErrTokenObrigatorio indica token ausente.
	ErrTokenObrigatorio = errors.New("token obrigatório")
	// ErrEmailObrigatorio indica pessoa sem e-mail resolvível.
	ErrEmailObrigatorio = errors.New("pessoa não possui e-mail cadastrado")
	// ErrEmailInvalido indica e-mail malformado.
	ErrEmailInvalido = errors.New("email inválido")
	// ErrTelefoneInvalido indica telefone fora do formato brasileiro.
	ErrTelefoneInvalido = errors.New("telefone inválido")
	// ErrCargoInvalido indica cargo não reconhecido.
	ErrCargoInvalido = errors.New("cargo inválido")
	// ErrPessoaNaoEncontrada indica pessoa inexistente.
	ErrPessoaNaoEncontrada = errors.New("pessoa não encontrada")
	// ErrPessoaJaTemAcesso indica pessoa que já possui login ativo.
	ErrPessoaJaTemAcesso = errors.New("pessoa já possui acesso ao sistema")
	// ErrContaNaoEncontrada indica conta inexistente no aceite.
	ErrContaNaoEncontrada = errors.New("conta não encontrada")
	// ErrPendenteExiste é devolvido pelo repositório quando o índice único
	// de convites pendentes barra uma inserção concorrente.
	ErrPendenteExiste = errors.New("já existe convite pendente para este destino")
)

// PessoaSemAcessoError sinaliza que já existe pessoa cadastrada com o
// e-mail informado, porém sem acesso. Carrega o id para que o chamador
// repita a operação pelo caminho de pessoa existente em vez de duplicar.
type PessoaSemAcessoError struct {
	PessoaID uuid.UUID
}

func (e *PessoaSemAcessoError) Error() string {
	return fmt.Sprintf("pessoa %s já cadastrada sem acesso; reenvie pelo id", e.PessoaID)
}

// Convite representa o registro com token de acesso temporário.
type Convite struct {
	ID              uuid.UUID  `json:"id"`
	Token           string     `json:"token"`
	Email           string     `json:"email"`
	Nome            string     `json:"nome"`
	Cargo           string     `json:"cargo"`
	Telefone        *string    `json:"telefone,omitempty"`
	PessoaID        *uuid.UUID `json:"pessoa_id,omitempty"`
	Status          string     `json:"status"`
	ExpiraEm        time.Time  `json:"expira_em"`
	AceitoEm        *time.Time `json:"aceito_em,omitempty"`
	AceitoPor       *uuid.UUID `json:"aceito_por,omitempty"`
	TentativasEnvio int        `json:"tentativas_envio"`
	UltimoEnvioEm   *time.Time `json:"ultimo_envio_em,omitempty"`
	CriadoPor       *uuid.UUID `json:"criado_por,omitempty"`
	CriadoEm        time.Time  `json:"criado_em"`
}

// Vencido informa se o prazo do convite já passou.
func (c *Convite) Vencido(now time.Time) bool {
	return now.After(c.ExpiraEm)
}

// CreateParams descreve a inserção de um novo convite. O token é gerado
// pelo repositório no momento da inserção.
type CreateParams struct {
	Email     string
	Nome      string
	Cargo     string
	Telefone  *string
	PessoaID  *uuid.UUID
	ExpiraEm  time.Time
	CriadoPor *uuid.UUID
}

// AceitarParams descreve a sequência atômica de aceite. PessoaID nulo
// cria uma nova pessoa com id igual ao da conta.
type AceitarParams struct {
	ConviteID uuid.UUID
	ContaID   uuid.UUID
	PessoaID  *uuid.UUID
	Email     string
	Nome      string
	Cargo     string
	Telefone  *string
}
