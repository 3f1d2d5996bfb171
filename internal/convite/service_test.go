package convite

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/igrejacanaa/louvores/internal/acesso"
	"github.com/igrejacanaa/louvores/internal/pessoa"
	"github.com/igrejacanaa/louvores/internal/permissao"
)

type stubRepo struct {
	porToken        map[string]*Convite
	pendentePessoa  map[uuid.UUID]*Convite
	pendenteEmail   map[string]*Convite
	criados         []CreateParams
	aceites         []AceitarParams
	expirados       []uuid.UUID
	envios          []uuid.UUID
	backfills       map[uuid.UUID]string
	createErr       error
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		porToken:       map[string]*Convite{},
		pendentePessoa: map[uuid.UUID]*Convite{},
		pendenteEmail:  map[string]*Convite{},
		backfills:      map[uuid.UUID]string{},
	}
}

func (s *stubRepo) Create(_ context.Context, p CreateParams) (*Convite, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.criados = append(s.criados, p)
	c := &Convite{
		ID:       uuid.New(),
		Token:    fmt.Sprintf("tok-%d", len(s.criados)),
		Email:    p.Email,
		Nome:     p.Nome,
		Cargo:    p.Cargo,
		Telefone: p.Telefone,
		PessoaID: p.PessoaID,
		Status:   StatusPendente,
		ExpiraEm: p.ExpiraEm,
		CriadoEm: time.Now(),
	}
	s.porToken[c.Token] = c
	return c, nil
}

func (s *stubRepo) GetByToken(_ context.Context, token string) (*Convite, error) {
	if c, ok := s.porToken[token]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetPendenteByPessoa(_ context.Context, pessoaID uuid.UUID) (*Convite, error) {
	if c, ok := s.pendentePessoa[pessoaID]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) GetPendenteByEmail(_ context.Context, email string) (*Convite, error) {
	if c, ok := s.pendenteEmail[email]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (s *stubRepo) MarcarExpirado(_ context.Context, id uuid.UUID) error {
	s.expirados = append(s.expirados, id)
	return nil
}

func (s *stubRepo) RegistrarEnvio(_ context.Context, id uuid.UUID) error {
	s.envios = append(s.envios, id)
	return nil
}

func (s *stubRepo) List(_ context.Context, _ bool) ([]Convite, error) {
	return nil, nil
}

func (s *stubRepo) Aceitar(_ context.Context, p AceitarParams) error {
	s.aceites = append(s.aceites, p)
	return nil
}

func (s *stubRepo) BackfillEmailPessoa(_ context.Context, pessoaID uuid.UUID, email string) error {
	s.backfills[pessoaID] = email
	return nil
}

type stubPessoas struct {
	porID    map[uuid.UUID]*pessoa.Pessoa
	porEmail map[string]*pessoa.Pessoa
}

func newStubPessoas() *stubPessoas {
	return &stubPessoas{porID: map[uuid.UUID]*pessoa.Pessoa{}, porEmail: map[string]*pessoa.Pessoa{}}
}

func (s *stubPessoas) add(p *pessoa.Pessoa) {
	s.porID[p.ID] = p
	if p.Email != nil {
		s.porEmail[*p.Email] = p
	}
}

func (s *stubPessoas) GetByID(_ context.Context, id uuid.UUID) (*pessoa.Pessoa, error) {
	if p, ok := s.porID[id]; ok {
		return p, nil
	}
	return nil, pessoa.ErrNotFound
}

func (s *stubPessoas) GetByEmail(_ context.Context, email string) (*pessoa.Pessoa, error) {
	if p, ok := s.porEmail[email]; ok {
		return p, nil
	}
	return nil, pessoa.ErrNotFound
}

type stubContas struct {
	contas   map[uuid.UUID]*acesso.Conta
	registos map[uuid.UUID]*acesso.UsuarioAcesso
}

func newStubContas() *stubContas {
	return &stubContas{contas: map[uuid.UUID]*acesso.Conta{}, registos: map[uuid.UUID]*acesso.UsuarioAcesso{}}
}

func (s *stubContas) GetContaByID(_ context.Context, id uuid.UUID) (*acesso.Conta, error) {
	if c, ok := s.contas[id]; ok {
		return c, nil
	}
	return nil, acesso.ErrNotFound
}

func (s *stubContas) GetByID(_ context.Context, id uuid.UUID) (*acesso.UsuarioAcesso, error) {
	if u, ok := s.registos[id]; ok {
		return u, nil
	}
	return nil, acesso.ErrNotFound
}

type stubMailer struct {
	enviados []ConviteEmail
	err      error
}

func (s *stubMailer) EnviarConvite(_ context.Context, msg ConviteEmail) error {
	s.enviados = append(s.enviados, msg)
	return s.err
}

func newTestService(repo *stubRepo, pessoas *stubPessoas, contas *stubContas, mailer *stubMailer) *Service {
	return NewService(repo, pessoas, contas, mailer, "https://louvores.test", 7*24*time.Hour, zerolog.Nop())
}

func strPtr(s string) *string { return &s }

func TestEnviarParaPessoaCriaConvite(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	mailer := &stubMailer{}
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "João", Cargo: permissao.CargoMusico, Email: strPtr("joao@example.com")}
	pessoas.add(p)

	svc := newTestService(repo, pessoas, newStubContas(), mailer)

	res, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if err != nil {
		t.Fatalf("Enviar: %v", err)
	}
	if res.JaPendente {
		t.Fatal("convite novo não deveria vir marcado como pendente reaproveitado")
	}
	if res.Convite.Email != "joao@example.com" {
		t.Fatalf("email = %q", res.Convite.Email)
	}
	if res.Convite.Nome != "João" || res.Convite.Cargo != permissao.CargoMusico {
		t.Fatalf("convite não herdou dados da pessoa: %+v", res.Convite)
	}
	if want := "https://louvores.test/aceitar-convite/" + res.Convite.Token; res.Link != want {
		t.Fatalf("link = %q, esperado %q", res.Link, want)
	}
	if len(mailer.enviados) != 1 {
		t.Fatalf("esperado 1 e-mail, enviados %d", len(mailer.enviados))
	}
	if len(repo.envios) != 1 {
		t.Fatalf("esperado 1 registro de envio, houve %d", len(repo.envios))
	}
	if res.Convite.TentativasEnvio != 1 {
		t.Fatalf("tentativas_envio = %d", res.Convite.TentativasEnvio)
	}
}

func TestEnviarParaPessoaSemEmail(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "Maria", Cargo: permissao.CargoMembro}
	pessoas.add(p)

	svc := newTestService(repo, pessoas, newStubContas(), &stubMailer{})

	_, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if !errors.Is(err, ErrEmailObrigatorio) {
		t.Fatalf("esperado ErrEmailObrigatorio, veio %v", err)
	}
}

func TestEnviarParaPessoaPreencheEmail(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "Maria", Cargo: permissao.CargoMembro}
	pessoas.add(p)

	svc := newTestService(repo, pessoas, newStubContas(), &stubMailer{})

	res, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID, Email: "maria@example.com"})
	if err != nil {
		t.Fatalf("Enviar: %v", err)
	}
	if repo.backfills[p.ID] != "maria@example.com" {
		t.Fatalf("e-mail da pessoa não foi preenchido: %v", repo.backfills)
	}
	if res.Convite.Email != "maria@example.com" {
		t.Fatalf("email do convite = %q", res.Convite.Email)
	}
}

func TestEnviarParaPessoaComAcesso(t *testing.T) {
	pessoas := newStubPessoas()
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "Ana", Cargo: permissao.CargoAdmin, Email: strPtr("ana@example.com"), TemAcesso: true}
	pessoas.add(p)

	svc := newTestService(newStubRepo(), pessoas, newStubContas(), &stubMailer{})

	_, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if !errors.Is(err, ErrPessoaJaTemAcesso) {
		t.Fatalf("esperado ErrPessoaJaTemAcesso, veio %v", err)
	}
}

func TestEnviarReaproveitaPendente(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	mailer := &stubMailer{}
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "João", Cargo: permissao.CargoMusico, Email: strPtr("joao@example.com")}
	pessoas.add(p)

	pendente := &Convite{
		ID:       uuid.New(),
		Token:    "tok-existente",
		Email:    *p.Email,
		Status:   StatusPendente,
		PessoaID: &p.ID,
		ExpiraEm: time.Now().Add(time.Hour),
	}
	repo.pendentePessoa[p.ID] = pendente

	svc := newTestService(repo, pessoas, newStubContas(), mailer)

	res, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if err != nil {
		t.Fatalf("Enviar: %v", err)
	}
	if !res.JaPendente {
		t.Fatal("esperado reaproveitamento do pendente")
	}
	if res.Convite.Token != "tok-existente" {
		t.Fatalf("token = %q, esperado o do pendente", res.Convite.Token)
	}
	if len(repo.criados) != 0 {
		t.Fatalf("não deveria criar convite novo, criados %d", len(repo.criados))
	}
	if len(mailer.enviados) != 0 {
		t.Fatalf("reenvio silencioso não dispara e-mail, enviados %d", len(mailer.enviados))
	}
}

func TestEnviarExpiraPendenteVencido(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "João", Cargo: permissao.CargoMusico, Email: strPtr("joao@example.com")}
	pessoas.add(p)

	vencido := &Convite{
		ID:       uuid.New(),
		Token:    "tok-vencido",
		Status:   StatusPendente,
		PessoaID: &p.ID,
		ExpiraEm: time.Now().Add(-time.Hour),
	}
	repo.pendentePessoa[p.ID] = vencido

	svc := newTestService(repo, pessoas, newStubContas(), &stubMailer{})

	res, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if err != nil {
		t.Fatalf("Enviar: %v", err)
	}
	if res.JaPendente {
		t.Fatal("pendente vencido não deveria ser reaproveitado")
	}
	if len(repo.expirados) != 1 || repo.expirados[0] != vencido.ID {
		t.Fatalf("pendente vencido deveria ser expirado: %v", repo.expirados)
	}
	if len(repo.criados) != 1 {
		t.Fatalf("esperado convite novo, criados %d", len(repo.criados))
	}
}

func TestEnviarParaEmailValidacao(t *testing.T) {
	svc := newTestService(newStubRepo(), newStubPessoas(), newStubContas(), &stubMailer{})
	ctx := context.Background()

	if _, err := svc.Enviar(ctx, EnviarInput{Email: "x@example.com"}); !errors.Is(err, ErrCamposObrigatorios) {
		t.Fatalf("sem nome/cargo: esperado ErrCamposObrigatorios, veio %v", err)
	}
	if _, err := svc.Enviar(ctx, EnviarInput{Email: "invalido", Nome: "X", Cargo: permissao.CargoMembro}); !errors.Is(err, ErrEmailInvalido) {
		t.Fatalf("esperado ErrEmailInvalido, veio %v", err)
	}
	if _, err := svc.Enviar(ctx, EnviarInput{Email: "x@example.com", Nome: "X", Cargo: "bispo"}); !errors.Is(err, ErrCargoInvalido) {
		t.Fatalf("esperado ErrCargoInvalido, veio %v", err)
	}
}

func TestEnviarParaEmailNormalizaTelefone(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubPessoas(), newStubContas(), &stubMailer{})
	ctx := context.Background()

	res, err := svc.Enviar(ctx, EnviarInput{
		Email:    "novo@example.com",
		Nome:     "Novo",
		Cargo:    permissao.CargoMembro,
		Telefone: strPtr("(92) 98139-4605"),
	})
	if err != nil {
		t.Fatalf("Enviar: %v", err)
	}
	if res.Convite.Telefone == nil || *res.Convite.Telefone != "92981394605" {
		t.Fatalf("telefone deveria ser armazenado só com dígitos: %v", res.Convite.Telefone)
	}
	if got := repo.criados[0].Telefone; got == nil || *got != "92981394605" {
		t.Fatalf("telefone persistido = %v", got)
	}

	_, err = svc.Enviar(ctx, EnviarInput{
		Email:    "outro@example.com",
		Nome:     "Outro",
		Cargo:    permissao.CargoMembro,
		Telefone: strPtr("123"),
	})
	if !errors.Is(err, ErrTelefoneInvalido) {
		t.Fatalf("esperado ErrTelefoneInvalido, veio %v", err)
	}
}

func TestEnviarParaEmailComPessoaExistente(t *testing.T) {
	pessoas := newStubPessoas()
	semAcesso := &pessoa.Pessoa{ID: uuid.New(), Nome: "Maria", Cargo: permissao.CargoMembro, Email: strPtr("maria@example.com")}
	comAcesso := &pessoa.Pessoa{ID: uuid.New(), Nome: "Ana", Cargo: permissao.CargoAdmin, Email: strPtr("ana@example.com"), TemAcesso: true}
	pessoas.add(semAcesso)
	pessoas.add(comAcesso)

	svc := newTestService(newStubRepo(), pessoas, newStubContas(), &stubMailer{})
	ctx := context.Background()

	_, err := svc.Enviar(ctx, EnviarInput{Email: "maria@example.com", Nome: "Maria", Cargo: permissao.CargoMembro})
	var semAcessoErr *PessoaSemAcessoError
	if !errors.As(err, &semAcessoErr) {
		t.Fatalf("esperado PessoaSemAcessoError, veio %v", err)
	}
	if semAcessoErr.PessoaID != semAcesso.ID {
		t.Fatalf("PessoaID = %s, esperado %s", semAcessoErr.PessoaID, semAcesso.ID)
	}

	_, err = svc.Enviar(ctx, EnviarInput{Email: "ana@example.com", Nome: "Ana", Cargo: permissao.CargoAdmin})
	if !errors.Is(err, ErrPessoaJaTemAcesso) {
		t.Fatalf("esperado ErrPessoaJaTemAcesso, veio %v", err)
	}
}

func TestEnviarFalhaDeEmailNaoDesfazConvite(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	mailer := &stubMailer{err: errors.New("smtp indisponível")}
	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "João", Cargo: permissao.CargoMusico, Email: strPtr("joao@example.com")}
	pessoas.add(p)

	svc := newTestService(repo, pessoas, newStubContas(), mailer)

	res, err := svc.Enviar(context.Background(), EnviarInput{PessoaID: &p.ID})
	if err != nil {
		t.Fatalf("falha de SMTP não deveria propagar: %v", err)
	}
	if res.Convite == nil || res.Convite.Status != StatusPendente {
		t.Fatalf("convite deveria permanecer pendente: %+v", res.Convite)
	}
}

func TestVerificar(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, newStubPessoas(), newStubContas(), &stubMailer{})
	ctx := context.Background()

	aceitoEm := time.Now().Add(-time.Hour)
	repo.porToken["valido"] = &Convite{ID: uuid.New(), Token: "valido", Nome: "João", Email: "joao@example.com", Cargo: permissao.CargoMusico, Status: StatusPendente, ExpiraEm: time.Now().Add(time.Hour)}
	repo.porToken["aceito"] = &Convite{ID: uuid.New(), Token: "aceito", Status: StatusAceito, AceitoEm: &aceitoEm, ExpiraEm: time.Now().Add(time.Hour)}
	repo.porToken["expirado"] = &Convite{ID: uuid.New(), Token: "expirado", Status: StatusExpirado, ExpiraEm: time.Now().Add(-time.Hour)}
	vencido := &Convite{ID: uuid.New(), Token: "vencido", Status: StatusPendente, ExpiraEm: time.Now().Add(-time.Minute)}
	repo.porToken["vencido"] = vencido

	if _, err := svc.Verificar(ctx, ""); !errors.Is(err, ErrTokenObrigatorio) {
		t.Fatalf("token vazio: %v", err)
	}
	if _, err := svc.Verificar(ctx, "inexistente"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token inexistente: %v", err)
	}

	c, err := svc.Verificar(ctx, "valido")
	if err != nil {
		t.Fatalf("token válido: %v", err)
	}
	if c.Nome != "João" {
		t.Fatalf("nome = %q", c.Nome)
	}

	if _, err := svc.Verificar(ctx, "aceito"); !errors.Is(err, ErrJaUtilizado) {
		t.Fatalf("token aceito: %v", err)
	}
	if _, err := svc.Verificar(ctx, "expirado"); !errors.Is(err, ErrExpirado) {
		t.Fatalf("token expirado: %v", err)
	}

	if _, err := svc.Verificar(ctx, "vencido"); !errors.Is(err, ErrExpirado) {
		t.Fatalf("token vencido: %v", err)
	}
	if len(repo.expirados) != 1 || repo.expirados[0] != vencido.ID {
		t.Fatalf("vencido deveria ter sido expirado na leitura: %v", repo.expirados)
	}
}

func TestAceitarComPessoaVinculada(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	contas := newStubContas()

	p := &pessoa.Pessoa{ID: uuid.New(), Nome: "João Atual", Cargo: permissao.CargoPresbitero, Telefone: strPtr("92981394605")}
	pessoas.add(p)

	contaID := uuid.New()
	contas.contas[contaID] = &acesso.Conta{ID: contaID, Email: "joao@example.com"}

	repo.porToken["tok"] = &Convite{
		ID:       uuid.New(),
		Token:    "tok",
		Email:    "antigo@example.com",
		Nome:     "João Antigo",
		Cargo:    permissao.CargoMusico,
		PessoaID: &p.ID,
		Status:   StatusPendente,
		ExpiraEm: time.Now().Add(time.Hour),
	}

	svc := newTestService(repo, pessoas, contas, &stubMailer{})

	res, err := svc.Aceitar(context.Background(), "tok", contaID)
	if err != nil {
		t.Fatalf("Aceitar: %v", err)
	}
	if res.PessoaID != p.ID {
		t.Fatalf("PessoaID = %s, esperado %s", res.PessoaID, p.ID)
	}
	if res.Email != "joao@example.com" {
		t.Fatalf("e-mail da conta deve prevalecer, veio %q", res.Email)
	}
	if res.Redirect != "/dashboard" {
		t.Fatalf("redirect = %q", res.Redirect)
	}

	if len(repo.aceites) != 1 {
		t.Fatalf("esperado 1 aceite, houve %d", len(repo.aceites))
	}
	params := repo.aceites[0]
	if params.Nome != "João Atual" || params.Cargo != permissao.CargoPresbitero {
		t.Fatalf("aceite deve usar os dados atuais da pessoa: %+v", params)
	}
	if params.PessoaID == nil || *params.PessoaID != p.ID {
		t.Fatalf("aceite deveria vincular pessoa existente: %+v", params)
	}
}

func TestAceitarCriaPessoaNova(t *testing.T) {
	repo := newStubRepo()
	contas := newStubContas()

	contaID := uuid.New()
	contas.contas[contaID] = &acesso.Conta{ID: contaID, Email: "novo@example.com"}

	repo.porToken["tok"] = &Convite{
		ID:       uuid.New(),
		Token:    "tok",
		Email:    "novo@example.com",
		Nome:     "Novo Integrante",
		Cargo:    permissao.CargoSeminarista,
		Status:   StatusPendente,
		ExpiraEm: time.Now().Add(time.Hour),
	}

	svc := newTestService(repo, newStubPessoas(), contas, &stubMailer{})

	res, err := svc.Aceitar(context.Background(), "tok", contaID)
	if err != nil {
		t.Fatalf("Aceitar: %v", err)
	}
	if res.PessoaID != contaID {
		t.Fatalf("pessoa nova deve nascer com o id da conta, veio %s", res.PessoaID)
	}

	params := repo.aceites[0]
	if params.PessoaID != nil {
		t.Fatalf("aceite de pessoa nova não vincula id existente: %+v", params)
	}
	if params.Nome != "Novo Integrante" || params.Cargo != permissao.CargoSeminarista {
		t.Fatalf("aceite deve usar os dados do convite: %+v", params)
	}
}

func TestAceitarVinculaPessoaPorEmail(t *testing.T) {
	repo := newStubRepo()
	pessoas := newStubPessoas()
	contas := newStubContas()

	existente := &pessoa.Pessoa{ID: uuid.New(), Nome: "Maria", Cargo: permissao.CargoMembro, Email: strPtr("maria@example.com")}
	pessoas.add(existente)

	contaID := uuid.New()
	contas.contas[contaID] = &acesso.Conta{ID: contaID, Email: "maria@example.com"}

	repo.porToken["tok"] = &Convite{
		ID:       uuid.New(),
		Token:    "tok",
		Email:    "maria@example.com",
		Nome:     "Maria",
		Cargo:    permissao.CargoMembro,
		Status:   StatusPendente,
		ExpiraEm: time.Now().Add(time.Hour),
	}

	svc := newTestService(repo, pessoas, contas, &stubMailer{})

	res, err := svc.Aceitar(context.Background(), "tok", contaID)
	if err != nil {
		t.Fatalf("Aceitar: %v", err)
	}
	if res.PessoaID != existente.ID {
		t.Fatalf("deveria vincular a pessoa existente, veio %s", res.PessoaID)
	}
}

func TestAceitarIdempotente(t *testing.T) {
	repo := newStubRepo()
	contas := newStubContas()

	contaID := uuid.New()
	pessoaID := uuid.New()
	aceitoEm := time.Now().Add(-time.Minute)
	contas.registos[contaID] = &acesso.UsuarioAcesso{ID: contaID, PessoaID: pessoaID, Email: "joao@example.com", Ativo: true}

	repo.porToken["tok"] = &Convite{
		ID:        uuid.New(),
		Token:     "tok",
		Status:    StatusAceito,
		AceitoEm:  &aceitoEm,
		AceitoPor: &contaID,
		ExpiraEm:  time.Now().Add(time.Hour),
	}

	svc := newTestService(repo, newStubPessoas(), contas, &stubMailer{})

	res, err := svc.Aceitar(context.Background(), "tok", contaID)
	if err != nil {
		t.Fatalf("repetir o aceite deveria ser seguro: %v", err)
	}
	if res.PessoaID != pessoaID {
		t.Fatalf("PessoaID = %s, esperado %s", res.PessoaID, pessoaID)
	}
	if len(repo.aceites) != 0 {
		t.Fatalf("aceite repetido não deve mutar nada: %d", len(repo.aceites))
	}
}

func TestAceitarComOutraContaFalha(t *testing.T) {
	repo := newStubRepo()
	contas := newStubContas()

	dona := uuid.New()
	outra := uuid.New()
	aceitoEm := time.Now().Add(-time.Minute)
	contas.registos[dona] = &acesso.UsuarioAcesso{ID: dona, PessoaID: uuid.New(), Email: "dona@example.com", Ativo: true}
	contas.registos[outra] = &acesso.UsuarioAcesso{ID: outra, PessoaID: uuid.New(), Email: "outra@example.com", Ativo: true}

	repo.porToken["tok-usado"] = &Convite{
		ID:        uuid.New(),
		Token:     "tok-usado",
		Status:    StatusAceito,
		AceitoEm:  &aceitoEm,
		AceitoPor: &dona,
		ExpiraEm:  time.Now().Add(time.Hour),
	}

	svc := newTestService(repo, newStubPessoas(), contas, &stubMailer{})

	if _, err := svc.Aceitar(context.Background(), "tok-usado", outra); !errors.Is(err, ErrJaUtilizado) {
		t.Fatalf("token consumido por outra conta: esperado ErrJaUtilizado, veio %v", err)
	}
	if len(repo.aceites) != 0 {
		t.Fatalf("replay de outra conta não deve mutar nada: %d", len(repo.aceites))
	}
}

func TestAceitarFalhas(t *testing.T) {
	repo := newStubRepo()
	contas := newStubContas()
	svc := newTestService(repo, newStubPessoas(), contas, &stubMailer{})
	ctx := context.Background()
	contaID := uuid.New()

	if _, err := svc.Aceitar(ctx, "", contaID); !errors.Is(err, ErrCamposObrigatorios) {
		t.Fatalf("token vazio: %v", err)
	}
	if _, err := svc.Aceitar(ctx, "tok", uuid.Nil); !errors.Is(err, ErrCamposObrigatorios) {
		t.Fatalf("conta nula: %v", err)
	}
	if _, err := svc.Aceitar(ctx, "inexistente", contaID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("token inexistente: %v", err)
	}

	repo.porToken["expirado"] = &Convite{ID: uuid.New(), Token: "expirado", Status: StatusExpirado, ExpiraEm: time.Now().Add(-time.Hour)}
	if _, err := svc.Aceitar(ctx, "expirado", contaID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("status expirado no aceite vale como não encontrado: %v", err)
	}

	vencido := &Convite{ID: uuid.New(), Token: "vencido", Status: StatusPendente, ExpiraEm: time.Now().Add(-time.Minute)}
	repo.porToken["vencido"] = vencido
	if _, err := svc.Aceitar(ctx, "vencido", contaID); !errors.Is(err, ErrExpirado) {
		t.Fatalf("pendente vencido: %v", err)
	}
	if len(repo.expirados) != 1 || repo.expirados[0] != vencido.ID {
		t.Fatalf("vencido deveria ter sido expirado: %v", repo.expirados)
	}

	repo.porToken["semconta"] = &Convite{ID: uuid.New(), Token: "semconta", Email: "x@example.com", Nome: "X", Cargo: permissao.CargoMembro, Status: StatusPendente, ExpiraEm: time.Now().Add(time.Hour)}
	if _, err := svc.Aceitar(ctx, "semconta", uuid.New()); !errors.Is(err, ErrContaNaoEncontrada) {
		t.Fatalf("conta inexistente: %v", err)
	}
}
