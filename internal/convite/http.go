package convite

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/http/middleware"
)

// ServiceProvider expõe os casos de uso consumidos pelo handler.
type ServiceProvider interface {
	Enviar(ctx context.Context, input EnviarInput) (*EnviarResult, error)
	Verificar(ctx context.Context, token string) (*Convite, error)
	Aceitar(ctx context.Context, token string, contaID uuid.UUID) (*AceitarResult, error)
	Listar(ctx context.Context, somentePendentes bool) ([]Convite, error)
}

// Handler expõe os endpoints do fluxo de convites.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterAdminRoutes monta as rotas de gestão, restritas a quem pode
// gerenciar usuários.
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.enviar)
}

// RegisterPublicRoutes monta a verificação de token, acessível sem login.
func (h *Handler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/convites/verificar", h.verificar)
}

// RegisterAuthRoutes monta o aceite, que exige conta autenticada.
func (h *Handler) RegisterAuthRoutes(r chi.Router) {
	r.Post("/convites/aceitar", h.aceitar)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	somentePendentes := r.URL.Query().Get("pendentes") == "true"

	convites, err := h.service.Listar(r.Context(), somentePendentes)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar convites", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"convites": convites})
}

type enviarPayload struct {
	PessoaID *uuid.UUID `json:"pessoa_id"`
	Email    string     `json:"email"`
	Nome     string     `json:"nome"`
	Cargo    string     `json:"cargo"`
	Telefone *string    `json:"telefone"`
}

func (h *Handler) enviar(w http.ResponseWriter, r *http.Request) {
	var payload enviarPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	input := EnviarInput{
		PessoaID: payload.PessoaID,
		Email:    payload.Email,
		Nome:     payload.Nome,
		Cargo:    payload.Cargo,
		Telefone: payload.Telefone,
	}
	if subject, ok := middleware.GetSubject(r.Context()); ok {
		input.CriadoPor = &subject
	}

	res, err := h.service.Enviar(r.Context(), input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	status := http.StatusCreated
	if res.JaPendente {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{
		"convite":     res.Convite,
		"link":        res.Link,
		"ja_pendente": res.JaPendente,
	})
}

func (h *Handler) verificar(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	c, err := h.service.Verificar(r.Context(), token)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":     c.Email,
		"nome":      c.Nome,
		"cargo":     c.Cargo,
		"pessoa_id": c.PessoaID,
		"expira_em": c.ExpiraEm,
	})
}

func (h *Handler) aceitar(w http.ResponseWriter, r *http.Request) {
	contaID, ok := middleware.GetSubject(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "sessão inválida", nil)
		return
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	res, err := h.service.Aceitar(r.Context(), payload.Token, contaID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"pessoa_id": res.PessoaID,
		"email":     res.Email,
		"redirect":  res.Redirect,
	})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	var semAcesso *PessoaSemAcessoError
	switch {
	case errors.As(err, &semAcesso):
		writeError(w, http.StatusBadRequest, "CONFLICT", err.Error(),
			map[string]string{"pessoa_id": semAcesso.PessoaID.String()})
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPessoaNaoEncontrada),
		errors.Is(err, ErrContaNaoEncontrada):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrExpirado):
		writeError(w, http.StatusGone, "GONE", err.Error(), nil)
	case errors.Is(err, ErrJaUtilizado):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", err.Error(),
			map[string]string{"status": StatusAceito})
	case errors.Is(err, ErrPessoaJaTemAcesso):
		writeError(w, http.StatusBadRequest, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrTokenObrigatorio), errors.Is(err, ErrCamposObrigatorios),
		errors.Is(err, ErrEmailObrigatorio), errors.Is(err, ErrEmailInvalido),
		errors.Is(err, ErrCargoInvalido), errors.Is(err, ErrTelefoneInvalido):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "erro interno", nil)
	}
}

type successEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Data  any        `json:"data"`
	Error *errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(successEnvelope{Data: data})
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope{
		Data: nil,
		Error: &errorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
