package pessoa

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ServiceProvider expõe os casos de uso consumidos pelo handler.
type ServiceProvider interface {
	List(ctx context.Context, somenteAtivas bool) ([]Pessoa, error)
	Get(ctx context.Context, id uuid.UUID) (*PessoaComTags, error)
	Create(ctx context.Context, input CreateInput) (*Pessoa, error)
	Update(ctx context.Context, input UpdateInput) (*Pessoa, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ToggleTag(ctx context.Context, pessoaID, tagID uuid.UUID, nivel string, remover bool) error
}

// Handler expõe endpoints REST do rol de membros.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes monta as rotas do rol de membros. As leituras ficam
// abertas a qualquer acesso ao painel; as escritas passam pelo gate de
// gestão de usuários.
func (h *Handler) RegisterRoutes(r chi.Router, gerir func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{pessoaID}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(gerir)
		r.Post("/", h.create)
		r.Put("/{pessoaID}", h.update)
		r.Delete("/{pessoaID}", h.remove)
		r.Put("/{pessoaID}/tags/{tagID}", h.toggleTag)
		r.Delete("/{pessoaID}/tags/{tagID}", h.removeTag)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	somenteAtivas := r.URL.Query().Get("ativas") == "true"

	pessoas, err := h.service.List(r.Context(), somenteAtivas)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar pessoas", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pessoas": pessoas})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pessoaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "pessoa não encontrada", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível carregar pessoa", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type pessoaPayload struct {
	Nome     string  `json:"nome"`
	Cargo    string  `json:"cargo"`
	Email    *string `json:"email"`
	Telefone *string `json:"telefone"`
	Ativo    *bool   `json:"ativo"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload pessoaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	p, err := h.service.Create(r.Context(), CreateInput{
		Nome:     payload.Nome,
		Cargo:    payload.Cargo,
		Email:    payload.Email,
		Telefone: payload.Telefone,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pessoaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload pessoaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	ativo := true
	if payload.Ativo != nil {
		ativo = *payload.Ativo
	}

	p, err := h.service.Update(r.Context(), UpdateInput{
		ID:       id,
		Nome:     payload.Nome,
		Cargo:    payload.Cargo,
		Email:    payload.Email,
		Telefone: payload.Telefone,
		Ativo:    ativo,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "pessoaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "pessoa não encontrada", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível desativar pessoa", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "desativada"})
}

func (h *Handler) toggleTag(w http.ResponseWriter, r *http.Request) {
	pessoaID, tagID, ok := parseTagParams(w, r)
	if !ok {
		return
	}

	var payload struct {
		Nivel string `json:"nivel"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
			return
		}
	}

	if err := h.service.ToggleTag(r.Context(), pessoaID, tagID, payload.Nivel, false); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "vinculada"})
}

func (h *Handler) removeTag(w http.ResponseWriter, r *http.Request) {
	pessoaID, tagID, ok := parseTagParams(w, r)
	if !ok {
		return
	}

	if err := h.service.ToggleTag(r.Context(), pessoaID, tagID, "", true); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "desvinculada"})
}

func parseTagParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	pessoaID, err := uuid.Parse(chi.URLParam(r, "pessoaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return uuid.Nil, uuid.Nil, false
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "tag inválida", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return pessoaID, tagID, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrEmailEmUso):
		writeError(w, http.StatusBadRequest, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrNomeObrigatorio), errors.Is(err, ErrEmailInvalido),
		errors.Is(err, ErrCargoInvalido), errors.Is(err, ErrTelefoneInvalido),
		errors.Is(err, ErrNivelInvalido):
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
