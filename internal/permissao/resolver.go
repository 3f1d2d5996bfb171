package permissao

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/igrejacanaa/louvores/internal/acesso"
)

var (
	// ErrNaoProvisionado indica usuário autenticado sem registro de acesso.
	ErrNaoProvisionado = errors.New("usuário não provisionado")
	// ErrDesativado indica registro de acesso desativado.
	ErrDesativado = errors.New("acesso desativado")
)

// Store abstrai a consulta ao registro de acesso.
type Store interface {
	GetByEmail(ctx context.Context, email string) (*acesso.UsuarioAcesso, error)
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Resultado agrega o registro efetivo e suas capacidades.
type Resultado struct {
	Usuario      acesso.UsuarioAcesso `json:"usuario"`
	Capabilities Capabilities         `json:"permissoes"`
	SuperAdmin   bool                 `json:"super_admin"`
}

// Resolver combina a lista de super-admins com o registro armazenado.
type Resolver struct {
	policy   *Policy
	store    Store
	redis    redisCommander
	cacheTTL time.Duration
}

// NewResolver cria o resolvedor. redisClient pode ser nil (sem cache).
func NewResolver(policy *Policy, store Store, redisClient *redis.Client, cacheTTL time.Duration) *Resolver {
	r := &Resolver{policy: policy, store: store, cacheTTL: cacheTTL}
	if redisClient != nil {
		r.redis = redisClient
	}
	return r
}

// Policy expõe a política pura (útil em middlewares e serviços).
func (r *Resolver) Policy() *Policy {
	return r.policy
}

// Resolve devolve o conjunto efetivo de capacidades do e-mail informado.
// Super-admin domina: dispensa registro armazenado e ignora o flag ativo.
func (r *Resolver) Resolve(ctx context.Context, contaID uuid.UUID, email string) (*Resultado, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if cached := r.fromCache(ctx, email); cached != nil {
		return cached, nil
	}

	if r.policy.IsSuperAdmin(email) {
		resultado := r.resolveSuperAdmin(ctx, contaID, email)
		r.toCache(ctx, email, resultado)
		return resultado, nil
	}

	registro, err := r.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, acesso.ErrNotFound) {
			return nil, ErrNaoProvisionado
		}
		return nil, err
	}
	if !registro.Ativo {
		return nil, ErrDesativado
	}

	resultado := &Resultado{
		Usuario:      *registro,
		Capabilities: r.policy.Resolve(registro.Cargo, email),
	}
	r.toCache(ctx, email, resultado)
	return resultado, nil
}

// resolveSuperAdmin usa o registro armazenado quando existir; na ausência,
// fabrica um registro sintético com o cargo de maior privilégio.
func (r *Resolver) resolveSuperAdmin(ctx context.Context, contaID uuid.UUID, email string) *Resultado {
	caps := r.policy.Resolve(CargoAdmin, email)

	registro, err := r.store.GetByEmail(ctx, email)
	if err == nil {
		return &Resultado{Usuario: *registro, Capabilities: caps, SuperAdmin: true}
	}
	if !errors.Is(err, acesso.ErrNotFound) {
		log.Warn().Err(err).Str("email", email).Msg("permissao: consulta de registro falhou, usando sintético")
	}

	return &Resultado{
		Usuario: acesso.UsuarioAcesso{
			ID:    contaID,
			Email: email,
			Nome:  localPart(email),
			Cargo: CargoAdmin,
			Ativo: true,
		},
		Capabilities: caps,
		SuperAdmin:   true,
	}
}

// Invalidate remove o e-mail do cache (chamado após mudanças de acesso).
func (r *Resolver) Invalidate(ctx context.Context, email string) {
	if r.redis == nil {
		return
	}
	_ = r.redis.Del(ctx, cacheKey(strings.ToLower(strings.TrimSpace(email))))
}

func (r *Resolver) fromCache(ctx context.Context, email string) *Resultado {
	if r.redis == nil || r.cacheTTL <= 0 {
		return nil
	}
	raw, err := r.redis.Get(ctx, cacheKey(email)).Bytes()
	if err != nil {
		return nil
	}
	var resultado Resultado
	if err := json.Unmarshal(raw, &resultado); err != nil {
		return nil
	}
	return &resultado
}

func (r *Resolver) toCache(ctx context.Context, email string, resultado *Resultado) {
	if r.redis == nil || r.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(resultado)
	if err != nil {
		return
	}
	_ = r.redis.Set(ctx, cacheKey(email), payload, r.cacheTTL).Err()
}

func cacheKey(email string) string {
	return "permissao:" + email
}

func localPart(email string) string {
	if idx := strings.Index(email, "@"); idx > 0 {
		return email[:idx]
	}
	return email
}
