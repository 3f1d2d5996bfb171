package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/igrejacanaa/louvores/internal/acesso"
	"github.com/igrejacanaa/louvores/internal/auth"
	"github.com/igrejacanaa/louvores/internal/permissao"
	"github.com/igrejacanaa/louvores/internal/util"
)

var (
	// ErrCredenciaisInvalidas indica falha na autenticação.
	ErrCredenciaisInvalidas = errors.New("credenciais inválidas")
	// ErrRefreshInvalido indica refresh token inválido ou expirado.
	ErrRefreshInvalido = errors.New("refresh token inválido")
	// ErrAcessoDesativado indica registro de acesso desativado.
	ErrAcessoDesativado = errors.New("acesso desativado")
)

type contaStore interface {
	CreateConta(ctx context.Context, email, senhaHash string) (*acesso.Conta, error)
	GetContaByEmail(ctx context.Context, email string) (*acesso.Conta, error)
	GetContaByID(ctx context.Context, id uuid.UUID) (*acesso.Conta, error)
}

type permissaoResolver interface {
	Resolve(ctx context.Context, contaID uuid.UUID, email string) (*permissao.Resultado, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService concentra registro de contas, login e sessões.
type AuthService struct {
	contas     contaStore
	resolver   permissaoResolver
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService cria novo serviço.
func NewAuthService(contas contaStore, resolver permissaoResolver, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		contas:     contas,
		resolver:   resolver,
		redis:      redisClient,
		jwt:        jwtMgr,
		refreshTTL: refreshTTL,
	}
}

// JWT expõe o gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// Perfil agrega conta, registro de acesso e capacidades resolvidas.
// Usuario é nil enquanto a conta ainda não aceitou um convite.
type Perfil struct {
	ID           uuid.UUID              `json:"id"`
	Email        string                 `json:"email"`
	Usuario      *acesso.UsuarioAcesso  `json:"usuario"`
	Capabilities permissao.Capabilities `json:"permissoes"`
	SuperAdmin   bool                   `json:"super_admin"`
}

// LoginResult representa retorno padrão de autenticações.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Perfil       *Perfil
}

// Registrar cria uma conta de login. A conta nasce sem permissões e só
// ganha acesso ao painel ao aceitar um convite.
func (s *AuthService) Registrar(ctx context.Context, email, senha string) (*acesso.Conta, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := util.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := util.ValidatePassword(senha); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(senha)
	if err != nil {
		return nil, err
	}

	return s.contas.CreateConta(ctx, email, hash)
}

// Login autentica a conta e emite par access/refresh. Contas sem registro
// de acesso ainda podem logar (precisam da sessão para aceitar convites);
// registros desativados são bloqueados.
func (s *AuthService) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	conta, err := s.contas.GetContaByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, acesso.ErrNotFound) {
			log.Warn().Msg("login: conta não encontrada")
			return nil, ErrCredenciaisInvalidas
		}
		return nil, err
	}

	ok, err := auth.Verify(senha, conta.SenhaHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verificação de senha falhou")
		return nil, ErrCredenciaisInvalidas
	}
	if !ok {
		return nil, ErrCredenciaisInvalidas
	}

	return s.emitir(ctx, conta)
}

// Refresh rotaciona o refresh token e emite novo access token.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalido
	}

	key := auth.RefreshRedisKey(auth.HashToken(rawToken))
	subject, err := s.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalido
	}
	if err != nil {
		return nil, err
	}

	contaID, err := uuid.Parse(subject)
	if err != nil {
		return nil, ErrRefreshInvalido
	}

	conta, err := s.contas.GetContaByID(ctx, contaID)
	if err != nil {
		if errors.Is(err, acesso.ErrNotFound) {
			return nil, ErrRefreshInvalido
		}
		return nil, err
	}

	// Rotação: o token usado deixa de valer antes do novo ser emitido.
	if err := s.redis.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return s.emitir(ctx, conta)
}

// Logout revoga o refresh token atual. Token ausente não é erro.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	key := auth.RefreshRedisKey(auth.HashToken(rawToken))
	if err := s.redis.Del(ctx, key).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// Me retorna o perfil resolvido da conta autenticada.
func (s *AuthService) Me(ctx context.Context, contaID uuid.UUID) (*Perfil, error) {
	conta, err := s.contas.GetContaByID(ctx, contaID)
	if err != nil {
		return nil, err
	}
	return s.perfil(ctx, conta)
}

func (s *AuthService) emitir(ctx context.Context, conta *acesso.Conta) (*LoginResult, error) {
	perfil, err := s.perfil(ctx, conta)
	if err != nil {
		return nil, err
	}

	cargo := ""
	if perfil.Usuario != nil {
		cargo = perfil.Usuario.Cargo
	}

	accessToken, err := s.jwt.GenerateAccessToken(conta.ID.String(), conta.Email, cargo)
	if err != nil {
		return nil, err
	}

	rawRefresh, err := auth.NewToken()
	if err != nil {
		return nil, err
	}
	key := auth.RefreshRedisKey(auth.HashToken(rawRefresh))
	if err := s.redis.Set(ctx, key, conta.ID.String(), s.refreshTTL).Err(); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: rawRefresh,
		Perfil:       perfil,
	}, nil
}

func (s *AuthService) perfil(ctx context.Context, conta *acesso.Conta) (*Perfil, error) {
	perfil := &Perfil{ID: conta.ID, Email: conta.Email}

	resultado, err := s.resolver.Resolve(ctx, conta.ID, conta.Email)
	switch {
	case err == nil:
		usuario := resultado.Usuario
		if usuario.ID != uuid.Nil {
			perfil.Usuario = &usuario
		}
		perfil.Capabilities = resultado.Capabilities
		perfil.SuperAdmin = resultado.SuperAdmin
	case errors.Is(err, permissao.ErrNaoProvisionado):
		// Conta sem convite aceito: sessão válida, painel bloqueado.
	case errors.Is(err, permissao.ErrDesativado):
		return nil, ErrAcessoDesativado
	default:
		return nil, err
	}

	return perfil, nil
}
