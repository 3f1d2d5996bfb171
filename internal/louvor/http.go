package louvor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/igrejacanaa/louvores/internal/storage"
)

// ServiceProvider expõe os casos de uso consumidos pelo handler.
type ServiceProvider interface {
	List(ctx context.Context, busca string) ([]Louvor, error)
	Get(ctx context.Context, id uuid.UUID) (*Louvor, error)
	Create(ctx context.Context, input Input) (*Louvor, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*Louvor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadCifra(ctx context.Context, id uuid.UUID, contentType string, body []byte) (*Louvor, error)
}

// Handler expõe os endpoints do repertório.
type Handler struct {
	service ServiceProvider
}

func NewHandler(service ServiceProvider) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes monta as rotas do repertório. As leituras ficam abertas
// a qualquer acesso ao painel; as escritas passam pelo gate de gestão de
// conteúdo.
func (h *Handler) RegisterRoutes(r chi.Router, gerir func(http.Handler) http.Handler) {
	r.Get("/", h.list)
	r.Get("/{louvorID}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(gerir)
		r.Post("/", h.create)
		r.Put("/{louvorID}", h.update)
		r.Delete("/{louvorID}", h.remove)
		r.Post("/{louvorID}/cifra", h.uploadCifra)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	lista, err := h.service.List(r.Context(), r.URL.Query().Get("busca"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "não foi possível listar louvores", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"louvores": lista})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	l, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

type louvorPayload struct {
	Titulo  string  `json:"titulo"`
	Artista *string `json:"artista"`
	Tom     *string `json:"tom"`
	Letra   string  `json:"letra"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload louvorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	l, err := h.service.Create(r.Context(), Input{
		Titulo:  payload.Titulo,
		Artista: payload.Artista,
		Tom:     payload.Tom,
		Letra:   payload.Letra,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var payload louvorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	l, err := h.service.Update(r.Context(), id, Input{
		Titulo:  payload.Titulo,
		Artista: payload.Artista,
		Tom:     payload.Tom,
		Letra:   payload.Letra,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "removido"})
}

func (h *Handler) uploadCifra(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	file, header, err := r.FormFile("cifra")
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "arquivo de cifra ausente", nil)
		return
	}
	defer file.Close()

	body, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "não foi possível ler o arquivo", nil)
		return
	}

	l, err := h.service.UploadCifra(r.Context(), id, header.Header.Get("Content-Type"), body)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "louvorID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, ErrTituloObrigatorio), errors.Is(err, ErrArquivoInvalido):
		writeError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
	case errors.Is(err, storage.ErrNaoConfigurado):
		writeError(w, http.StatusServiceUnavailable, "STORAGE", "armazenamento de arquivos indisponível", nil)
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
