package tags

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
	List(ctx context.Context, somenteAtivas bool) ([]Tag, error)
	Create(ctx context.Context, nome, categoria string, ordem int) (*Tag, error)
	Update(ctx context.Context, tag Tag) (*Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler expõe o CRUD do catálogo de tags.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes monta as rotas do catálogo de funções. A listagem fica
// aberta a qualquer acesso ao painel; as escritas passam pelo gate de
// gestão de conteúdo.
func (h *Handler) RegisterRoutes(r chi.Router, gerir func(http.Handler) http.Handler) {
	r.Get("/", h.list)

	r.Group(func(r chi.Router) {
		r.Use(gerir)
		r.Post("/", h.create)
		r.Put("/{tagID}", h.update)
		r.Delete("/{tagID}", h.remove)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	somenteAtivas := r.URL.Query().Get("ativas") == "true"

	lista, err := h.service.List(r.Context(), somenteAtivas)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar tags", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": lista})
}

type tagPayload struct {
	Nome      string `json:"nome"`
	Categoria string `json:"categoria"`
	Ordem     int    `json:"ordem"`
	Ativa     *bool  `json:"ativa"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload tagPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	tag, err := h.service.Create(r.Context(), payload.Nome, payload.Categoria, payload.Ordem)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload tagPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	ativa := true
	if payload.Ativa != nil {
		ativa = *payload.Ativa
	}

	tag, err := h.service.Update(r.Context(), Tag{
		ID:        id,
		Nome:      payload.Nome,
		Categoria: payload.Categoria,
		Ordem:     payload.Ordem,
		Ativa:     ativa,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrNomeObrigatorio), errors.Is(err, ErrCategoriaInvalida):
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
