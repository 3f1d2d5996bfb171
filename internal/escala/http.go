package escala

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ServiceProvider expõe os casos de uso consumidos pelo handler.
type ServiceProvider interface {
	GetPorData(ctx context.Context, data time.Time) (*View, error)
	Listar(ctx context.Context, aPartirDe time.Time) ([]Escala, error)
	Criar(ctx context.Context, data time.Time, titulo string) (*Escala, error)
	AlterarStatus(ctx context.Context, id uuid.UUID, status string) error
	Remover(ctx context.Context, id uuid.UUID) error
	AtribuirFuncao(ctx context.Context, escalaID, tagID, pessoaID uuid.UUID, ordem int) (*Funcao, error)
	ConfirmarFuncao(ctx context.Context, funcaoID uuid.UUID, confirmado bool) error
	RemoverFuncao(ctx context.Context, funcaoID uuid.UUID) error
}

// Handler expõe os endpoints de escalas.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes monta as rotas de escalas. As leituras ficam abertas a
// qualquer acesso ao painel; as escritas passam pelo gate de gestão de
// escalas.
func (h *Handler) RegisterRoutes(r chi.Router, gerir func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/data/{data}", h.getPorData)

	r.Group(func(r chi.Router) {
		r.Use(gerir)
		r.Post("/", h.create)
		r.Put("/{escalaID}/status", h.setStatus)
		r.Delete("/{escalaID}", h.remove)
		r.Post("/{escalaID}/funcoes", h.addFuncao)
		r.Put("/funcoes/{funcaoID}", h.confirmarFuncao)
		r.Delete("/funcoes/{funcaoID}", h.removeFuncao)
	})
}

const dataLayout = "2006-01-02"

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var aPartirDe time.Time
	if raw := r.URL.Query().Get("a_partir_de"); raw != "" {
		parsed, err := time.Parse(dataLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida", nil)
			return
		}
		aPartirDe = parsed
	}

	escalas, err := h.service.Listar(r.Context(), aPartirDe)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar escalas", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"escalas": escalas})
}

func (h *Handler) getPorData(w http.ResponseWriter, r *http.Request) {
	data, err := time.Parse(dataLayout, chi.URLParam(r, "data"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida", nil)
		return
	}

	view, err := h.service.GetPorData(r.Context(), data)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível montar a escala", nil)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Data   string `json:"data"`
		Titulo string `json:"titulo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	data, err := time.Parse(dataLayout, payload.Data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "data inválida", nil)
		return
	}

	e, err := h.service.Criar(r.Context(), data, payload.Titulo)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "escalaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.service.AlterarStatus(r.Context(), id, payload.Status); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": payload.Status})
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "escalaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.Remover(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}

func (h *Handler) addFuncao(w http.ResponseWriter, r *http.Request) {
	escalaID, err := uuid.Parse(chi.URLParam(r, "escalaID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		TagID    uuid.UUID `json:"tag_id"`
		PessoaID uuid.UUID `json:"pessoa_id"`
		Ordem    int       `json:"ordem"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if payload.TagID == uuid.Nil || payload.PessoaID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "tag_id e pessoa_id são obrigatórios", nil)
		return
	}

	f, err := h.service.AtribuirFuncao(r.Context(), escalaID, payload.TagID, payload.PessoaID, payload.Ordem)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (h *Handler) confirmarFuncao(w http.ResponseWriter, r *http.Request) {
	funcaoID, err := uuid.Parse(chi.URLParam(r, "funcaoID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	var payload struct {
		Confirmado bool `json:"confirmado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.service.ConfirmarFuncao(r.Context(), funcaoID, payload.Confirmado); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"confirmado": payload.Confirmado})
}

func (h *Handler) removeFuncao(w http.ResponseWriter, r *http.Request) {
	funcaoID, err := uuid.Parse(chi.URLParam(r, "funcaoID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return
	}

	if err := h.service.RemoverFuncao(r.Context(), funcaoID); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removida"})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFuncaoNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrDataOcupada):
		writeError(w, http.StatusBadRequest, "CONFLICT", err.Error(), nil)
	case errors.Is(err, ErrTituloObrigatorio), errors.Is(err, ErrDataInvalida),
		errors.Is(err, ErrStatusInvalido):
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
