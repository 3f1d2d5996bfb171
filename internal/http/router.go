package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/igrejacanaa/louvores/internal/acesso"
	"github.com/igrejacanaa/louvores/internal/auth"
	"github.com/igrejacanaa/louvores/internal/config"
	"github.com/igrejacanaa/louvores/internal/convite"
	"github.com/igrejacanaa/louvores/internal/escala"
	httpmiddleware "github.com/igrejacanaa/louvores/internal/http/middleware"
	"github.com/igrejacanaa/louvores/internal/louvor"
	"github.com/igrejacanaa/louvores/internal/permissao"
	"github.com/igrejacanaa/louvores/internal/pessoa"
	"github.com/igrejacanaa/louvores/internal/service"
	"github.com/igrejacanaa/louvores/internal/storage"
	"github.com/igrejacanaa/louvores/internal/tags"
)

// Handler agrega as dependências compartilhadas das rotas de topo.
type Handler struct {
	cfg           *config.Config
	pool          *pgxpool.Pool
	redis         *redis.Client
	authService   *service.AuthService
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
	devCookies    bool
}

const refreshCookieName = "refresh_token"

// NewRouter devolve roteador configurado com todos os módulos montados.
func NewRouter(cfg *config.Config, pool *pgxpool.Pool, redisClient *redis.Client, mailer convite.Mailer, uploader storage.Uploader) http.Handler {
	devCookies := false
	for _, origin := range cfg.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			devCookies = true
			break
		}
	}

	acessoRepo := acesso.NewRepository(pool)
	policy := permissao.NewPolicy(cfg.SuperAdmins)
	resolver := permissao.NewResolver(policy, acessoRepo, redisClient, 5*time.Minute)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL)
	authService := service.NewAuthService(acessoRepo, resolver, redisClient, jwtMgr, cfg.JWTRefreshTTL)

	pessoaRepo := pessoa.NewRepository(pool)
	pessoaService := pessoa.NewService(pessoaRepo)
	pessoaHandler := pessoa.NewHandler(pessoaService)

	tagRepo := tags.NewRepository(pool)
	tagService := tags.NewService(tagRepo)
	tagHandler := tags.NewHandler(tagService)

	escalaRepo := escala.NewRepository(pool)
	escalaService := escala.NewService(escalaRepo, tagRepo, pessoaRepo)
	escalaHandler := escala.NewHandler(escalaService)

	louvorRepo := louvor.NewRepository(pool)
	louvorService := louvor.NewService(louvorRepo, uploader)
	louvorHandler := louvor.NewHandler(louvorService)

	conviteRepo := convite.NewRepository(pool)
	conviteService := convite.NewService(conviteRepo, pessoaRepo, acessoRepo, mailer, cfg.AppURL, cfg.ConviteTTL, log.Logger)
	conviteHandler := convite.NewHandler(conviteService)

	h := &Handler{
		cfg:           cfg,
		pool:          pool,
		redis:         redisClient,
		authService:   authService,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
		devCookies:    devCookies,
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)

		public.Route("/auth", func(auth chi.Router) {
			auth.Post("/registrar", h.Registrar)
			auth.Post("/login", h.Login)
			auth.Post("/refresh", h.Refresh)
			auth.Post("/logout", h.Logout)
		})

		conviteHandler.RegisterPublicRoutes(public)
	})

	r.Group(func(private chi.Router) {
		private.Use(httpmiddleware.Auth(jwtMgr))
		private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

		private.Get("/me", h.Me)
		conviteHandler.RegisterAuthRoutes(private)

		gerirUsuarios := httpmiddleware.RequireCapability(resolver, func(c permissao.Capabilities) bool {
			return c.GerenciarUsuarios
		})
		gerirEscalas := httpmiddleware.RequireCapability(resolver, func(c permissao.Capabilities) bool {
			return c.GerenciarEscalas
		})
		gerirConteudo := httpmiddleware.RequireCapability(resolver, func(c permissao.Capabilities) bool {
			return c.GerenciarConteudo
		})

		// Painel: leituras exigem acesso administrativo e as escritas de
		// cada módulo passam pelo gate da capacidade correspondente.
		private.Group(func(painel chi.Router) {
			painel.Use(httpmiddleware.RequireAdmin(resolver))

			painel.Route("/pessoas", func(r chi.Router) {
				pessoaHandler.RegisterRoutes(r, gerirUsuarios)
			})
			painel.Route("/tags", func(r chi.Router) {
				tagHandler.RegisterRoutes(r, gerirConteudo)
			})
			painel.Route("/escalas", func(r chi.Router) {
				escalaHandler.RegisterRoutes(r, gerirEscalas)
			})
			painel.Route("/louvores", func(r chi.Router) {
				louvorHandler.RegisterRoutes(r, gerirConteudo)
			})
		})

		private.Group(func(gestao chi.Router) {
			gestao.Use(gerirUsuarios)
			gestao.Route("/convites", conviteHandler.RegisterAdminRoutes)
		})
	})

	return r
}

// Health responde status simples.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready valida conexões com Postgres e Redis.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbErr := h.pool.Ping(ctx)
	redisErr := h.redis.Ping(ctx).Err()

	if dbErr != nil || redisErr != nil {
		WriteError(w, http.StatusServiceUnavailable, "INTERNAL", "dependências indisponíveis", map[string]any{
			"db":    errorString(dbErr),
			"redis": errorString(redisErr),
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Registrar cria conta de login. A conta só ganha acesso ao painel após
// aceitar um convite.
func (h *Handler) Registrar(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	conta, err := h.authService.Registrar(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		if errors.Is(err, acesso.ErrEmailEmUso) {
			WriteError(w, http.StatusBadRequest, "CONFLICT", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, map[string]any{
		"id":    conta.ID,
		"email": conta.Email,
	})
}

// Login autentica e emite sessão.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
		Senha string `json:"senha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if strings.TrimSpace(payload.Email) == "" || strings.TrimSpace(payload.Senha) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "email e senha são obrigatórios", nil)
		return
	}

	result, err := h.authService.Login(r.Context(), payload.Email, payload.Senha)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Refresh renova o access token a partir do cookie de refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	token, err := refreshFromRequest(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "AUTH", "refresh ausente", nil)
		return
	}

	result, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrRefreshInvalido) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "refresh inválido", nil)
			return
		}
		if errors.Is(err, service.ErrAcessoDesativado) {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao renovar sessão", nil)
		return
	}

	h.writeLoginSuccess(w, result)
}

// Logout revoga o refresh token atual.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, err := refreshFromRequest(r); err == nil {
		_ = h.authService.Logout(r.Context(), token)
	}

	h.clearRefreshCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me retorna o perfil da conta autenticada.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	subject, ok := httpmiddleware.GetSubject(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "AUTH", "sessão inválida", nil)
		return
	}

	perfil, err := h.authService.Me(r.Context(), subject)
	if err != nil {
		if errors.Is(err, service.ErrAcessoDesativado) {
			WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
			return
		}
		if errors.Is(err, acesso.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "conta não encontrada", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar perfil", nil)
		return
	}

	WriteJSON(w, http.StatusOK, perfil)
}

func (h *Handler) handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrCredenciaisInvalidas):
		WriteError(w, http.StatusUnauthorized, "AUTH", err.Error(), nil)
	case errors.Is(err, service.ErrAcessoDesativado):
		WriteError(w, http.StatusForbidden, "FORBIDDEN", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "erro ao autenticar", nil)
	}
}

func (h *Handler) writeLoginSuccess(w http.ResponseWriter, result *service.LoginResult) {
	h.setRefreshCookie(w, result.RefreshToken, time.Now().Add(h.cfg.JWTRefreshTTL))

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": result.AccessToken,
		"perfil":       result.Perfil,
	})
}

func refreshFromRequest(r *http.Request) (string, error) {
	if c, err := r.Cookie(refreshCookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errors.New("refresh ausente")
}

func (h *Handler) setRefreshCookie(w http.ResponseWriter, token string, expires time.Time) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

func (h *Handler) clearRefreshCookie(w http.ResponseWriter) {
	secure := !h.devCookies
	sameSite := http.SameSiteNoneMode
	if h.devCookies {
		sameSite = http.SameSiteLaxMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}
