package convite

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/igrejacanaa/louvores/internal/acesso"
	"github.com/igrejacanaa/louvores/internal/pessoa"
	"github.com/igrejacanaa/louvores/internal/permissao"
	"github.com/igrejacanaa/louvores/internal/util"
)

// Mailer entrega o e-mail com o link de aceite. O envio é best-effort:
// falha de entrega não desfaz o convite.
type Mailer interface {
	EnviarConvite(ctx context.Context, msg ConviteEmail) error
}

// ConviteEmail carrega os dados do e-mail de convite.
type ConviteEmail struct {
	Para     string
	Nome     string
	Link     string
	ExpiraEm time.Time
}

type repository interface {
	Create(ctx context.Context, p CreateParams) (*Convite, error)
	GetByToken(ctx context.Context, token string) (*Convite, error)
	GetPendenteByPessoa(ctx context.Context, pessoaID uuid.UUID) (*Convite, error)
	GetPendenteByEmail(ctx context.Context, email string) (*Convite, error)
	MarcarExpirado(ctx context.Context, id uuid.UUID) error
	RegistrarEnvio(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, somentePendentes bool) ([]Convite, error)
	Aceitar(ctx context.Context, p AceitarParams) error
	BackfillEmailPessoa(ctx context.Context, pessoaID uuid.UUID, email string) error
}

type pessoaStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*pessoa.Pessoa, error)
	GetByEmail(ctx context.Context, email string) (*pessoa.Pessoa, error)
}

type contaStore interface {
	GetContaByID(ctx context.Context, id uuid.UUID) (*acesso.Conta, error)
	GetByID(ctx context.Context, id uuid.UUID) (*acesso.UsuarioAcesso, error)
}

// Service coordena o ciclo de vida dos convites.
type Service struct {
	repo    repository
	pessoas pessoaStore
	contas  contaStore
	mailer  Mailer
	appURL  string
	ttl     time.Duration
	log     zerolog.Logger
}

func NewService(repo repository, pessoas pessoaStore, contas contaStore, mailer Mailer, appURL string, ttl time.Duration, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		pessoas: pessoas,
		contas:  contas,
		mailer:  mailer,
		appURL:  strings.TrimRight(appURL, "/"),
		ttl:     ttl,
		log:     log,
	}
}

// EnviarInput descreve um pedido de convite. Com PessoaID o convite
// reaproveita nome e cargo da pessoa; sem PessoaID o cadastro completo
// vem no próprio pedido.
type EnviarInput struct {
	PessoaID  *uuid.UUID
	Email     string
	Nome      string
	Cargo     string
	Telefone  *string
	CriadoPor *uuid.UUID
}

// EnviarResult devolve o convite vigente e o link de aceite. JaPendente
// indica que um convite pendente anterior foi reaproveitado.
type EnviarResult struct {
	Convite    *Convite
	Link       string
	JaPendente bool
}

// AceitarResult devolve o vínculo criado no aceite.
type AceitarResult struct {
	PessoaID uuid.UUID
	Email    string
	Redirect string
}

// Enviar cria (ou reaproveita) um convite pendente e dispara o e-mail.
func (s *Service) Enviar(ctx context.Context, input EnviarInput) (*EnviarResult, error) {
	if input.PessoaID != nil {
		return s.enviarParaPessoa(ctx, input)
	}
	return s.enviarParaEmail(ctx, input)
}

func (s *Service) enviarParaPessoa(ctx context.Context, input EnviarInput) (*EnviarResult, error) {
	p, err := s.pessoas.GetByID(ctx, *input.PessoaID)
	if err != nil {
		if errors.Is(err, pessoa.ErrNotFound) {
			return nil, ErrPessoaNaoEncontrada
		}
		return nil, err
	}
	if p.TemAcesso {
		return nil, ErrPessoaJaTemAcesso
	}

	email := strings.TrimSpace(input.Email)
	if email == "" && p.Email != nil {
		email = *p.Email
	}
	if email == "" {
		return nil, ErrEmailObrigatorio
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, ErrEmailInvalido
	}
	if input.Email != "" && (p.Email == nil || *p.Email == "") {
		if err := s.repo.BackfillEmailPessoa(ctx, p.ID, email); err != nil {
			return nil, err
		}
	}

	busca := func(ctx context.Context) (*Convite, error) {
		return s.repo.GetPendenteByPessoa(ctx, p.ID)
	}
	if res, ok, err := s.reaproveitarPendente(ctx, busca); err != nil || ok {
		return res, err
	}

	return s.criarEEnviar(ctx, CreateParams{
		Email:     email,
		Nome:      p.Nome,
		Cargo:     p.Cargo,
		Telefone:  p.Telefone,
		PessoaID:  &p.ID,
		CriadoPor: input.CriadoPor,
	})
}

func (s *Service) enviarParaEmail(ctx context.Context, input EnviarInput) (*EnviarResult, error) {
	email := strings.TrimSpace(input.Email)
	nome := strings.TrimSpace(input.Nome)
	if email == "" || nome == "" || input.Cargo == "" {
		return nil, ErrCamposObrigatorios
	}
	if err := util.ValidateEmail(email); err != nil {
		return nil, ErrEmailInvalido
	}
	cargo := permissao.NormalizeCargo(input.Cargo)
	if !permissao.IsValidCargo(cargo) {
		return nil, ErrCargoInvalido
	}
	telefone, err := normalizeTelefone(input.Telefone)
	if err != nil {
		return nil, err
	}

	if p, err := s.pessoas.GetByEmail(ctx, email); err == nil {
		if p.TemAcesso {
			return nil, ErrPessoaJaTemAcesso
		}
		return nil, &PessoaSemAcessoError{PessoaID: p.ID}
	} else if !errors.Is(err, pessoa.ErrNotFound) {
		return nil, err
	}

	busca := func(ctx context.Context) (*Convite, error) {
		return s.repo.GetPendenteByEmail(ctx, email)
	}
	if res, ok, err := s.reaproveitarPendente(ctx, busca); err != nil || ok {
		return res, err
	}

	return s.criarEEnviar(ctx, CreateParams{
		Email:     email,
		Nome:      nome,
		Cargo:     cargo,
		Telefone:  telefone,
		CriadoPor: input.CriadoPor,
	})
}

// normalizeTelefone reduz o telefone à forma armazenada, só dígitos.
func normalizeTelefone(telefone *string) (*string, error) {
	if telefone == nil || strings.TrimSpace(*telefone) == "" {
		return nil, nil
	}
	if !util.IsValidPhone(*telefone) {
		return nil, ErrTelefoneInvalido
	}
	digits := util.UnformatPhone(*telefone)
	return &digits, nil
}

// reaproveitarPendente devolve o convite pendente vigente, se houver.
// Pendentes vencidos são expirados na hora, liberando um novo envio.
func (s *Service) reaproveitarPendente(ctx context.Context, busca func(context.Context) (*Convite, error)) (*EnviarResult, bool, error) {
	existente, err := busca(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if existente.Vencido(time.Now()) {
		if err := s.repo.MarcarExpirado(ctx, existente.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}
	return &EnviarResult{Convite: existente, Link: s.link(existente.Token), JaPendente: true}, true, nil
}

func (s *Service) criarEEnviar(ctx context.Context, params CreateParams) (*EnviarResult, error) {
	params.ExpiraEm = time.Now().Add(s.ttl)
	criado, err := s.repo.Create(ctx, params)
	if err != nil {
		if errors.Is(err, ErrPendenteExiste) {
			// Outro envio venceu a corrida; devolve o pendente dele.
			return s.relerPendente(ctx, params)
		}
		return nil, err
	}

	link := s.link(criado.Token)
	if err := s.repo.RegistrarEnvio(ctx, criado.ID); err != nil {
		return nil, err
	}
	criado.TentativasEnvio++

	if err := s.mailer.EnviarConvite(ctx, ConviteEmail{
		Para:     criado.Email,
		Nome:     criado.Nome,
		Link:     link,
		ExpiraEm: criado.ExpiraEm,
	}); err != nil {
		s.log.Warn().Err(err).Str("email", criado.Email).Msg("falha ao enviar e-mail de convite")
	}

	return &EnviarResult{Convite: criado, Link: link}, nil
}

func (s *Service) relerPendente(ctx context.Context, params CreateParams) (*EnviarResult, error) {
	var existente *Convite
	var err error
	if params.PessoaID != nil {
		existente, err = s.repo.GetPendenteByPessoa(ctx, *params.PessoaID)
	} else {
		existente, err = s.repo.GetPendenteByEmail(ctx, params.Email)
	}
	if err != nil {
		return nil, err
	}
	return &EnviarResult{Convite: existente, Link: s.link(existente.Token), JaPendente: true}, nil
}

// Verificar valida um token antes de exibir a tela de aceite. Convites
// pendentes com prazo vencido são expirados nesta leitura.
func (s *Service) Verificar(ctx context.Context, token string) (*Convite, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrTokenObrigatorio
	}
	c, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch c.Status {
	case StatusAceito:
		return nil, fmt.Errorf("%w: aceito em %s", ErrJaUtilizado, formatAceitoEm(c.AceitoEm))
	case StatusExpirado:
		return nil, ErrExpirado
	}
	if c.Vencido(time.Now()) {
		if err := s.repo.MarcarExpirado(ctx, c.ID); err != nil {
			return nil, err
		}
		return nil, ErrExpirado
	}
	return c, nil
}

// Aceitar consome o convite vinculando a conta autenticada a uma pessoa.
// A operação é idempotente: repetir o aceite com a mesma conta devolve o
// vínculo já existente.
func (s *Service) Aceitar(ctx context.Context, token string, contaID uuid.UUID) (*AceitarResult, error) {
	if strings.TrimSpace(token) == "" || contaID == uuid.Nil {
		return nil, ErrCamposObrigatorios
	}

	c, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	switch c.Status {
	case StatusAceito:
		// Só a conta que consumiu o token pode repetir o aceite.
		if c.AceitoPor == nil || *c.AceitoPor != contaID {
			return nil, fmt.Errorf("%w: aceito em %s", ErrJaUtilizado, formatAceitoEm(c.AceitoEm))
		}
		registro, err := s.contas.GetByID(ctx, contaID)
		if err != nil {
			if errors.Is(err, acesso.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, err
		}
		return &AceitarResult{PessoaID: registro.PessoaID, Email: registro.Email, Redirect: redirectPosAceite}, nil
	case StatusExpirado:
		return nil, ErrNotFound
	}
	if c.Vencido(time.Now()) {
		if err := s.repo.MarcarExpirado(ctx, c.ID); err != nil {
			return nil, err
		}
		return nil, ErrExpirado
	}

	conta, err := s.contas.GetContaByID(ctx, contaID)
	if err != nil {
		if errors.Is(err, acesso.ErrNotFound) {
			return nil, ErrContaNaoEncontrada
		}
		return nil, err
	}
	email := conta.Email
	if email == "" {
		email = c.Email
	}

	params := AceitarParams{
		ConviteID: c.ID,
		ContaID:   contaID,
		Email:     email,
		Nome:      c.Nome,
		Cargo:     c.Cargo,
		Telefone:  c.Telefone,
	}

	if c.PessoaID != nil {
		p, err := s.pessoas.GetByID(ctx, *c.PessoaID)
		if err != nil {
			if errors.Is(err, pessoa.ErrNotFound) {
				return nil, ErrPessoaNaoEncontrada
			}
			return nil, err
		}
		params.PessoaID = &p.ID
		params.Nome = p.Nome
		params.Cargo = p.Cargo
		params.Telefone = p.Telefone
	} else if p, err := s.pessoas.GetByEmail(ctx, email); err == nil {
		// Pessoa pré-existente com o mesmo e-mail: vincula em vez de
		// duplicar, mesmo que o vínculo anterior esteja sendo refeito.
		params.PessoaID = &p.ID
	} else if !errors.Is(err, pessoa.ErrNotFound) {
		return nil, err
	}

	if err := s.repo.Aceitar(ctx, params); err != nil {
		return nil, err
	}

	pessoaID := contaID
	if params.PessoaID != nil {
		pessoaID = *params.PessoaID
	}
	s.log.Info().
		Str("convite_id", c.ID.String()).
		Str("pessoa_id", pessoaID.String()).
		Str("email", email).
		Msg("convite aceito")

	return &AceitarResult{PessoaID: pessoaID, Email: email, Redirect: redirectPosAceite}, nil
}

// Listar devolve os convites registrados, opcionalmente só os pendentes.
func (s *Service) Listar(ctx context.Context, somentePendentes bool) ([]Convite, error) {
	return s.repo.List(ctx, somentePendentes)
}

const redirectPosAceite = "/dashboard"

func (s *Service) link(token string) string {
	return s.appURL + "/aceitar-convite/" + token
}

func formatAceitoEm(t *time.Time) string {
	if t == nil {
		return "data desconhecida"
	}
	return t.Format("02/01/2006 15:04")
}
