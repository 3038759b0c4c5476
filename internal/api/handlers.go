package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/normalize"
	"github.com/starford/ansuz/internal/notestore"
	"github.com/starford/ansuz/internal/sse"
)

const maxBodyBytes = 20 << 20 // inline image payloads are base64 blobs

// Handler holds API route handlers.
type Handler struct {
	store  *notestore.Store
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil when SSE is disabled.
func NewHandler(store *notestore.Store, broker *sse.Broker) *Handler {
	return &Handler{store: store, broker: broker}
}

func (h *Handler) publishNote(kind, id string) {
	if h.broker != nil {
		h.broker.PublishNoteEvent(kind, id)
	}
}

func (h *Handler) publishTag(eventType string, data map[string]string) {
	if h.broker != nil {
		h.broker.PublishTagEvent(eventType, data)
	}
}

func captureSource(rawURL, title string) models.Source {
	return models.Source{
		URL:    rawURL,
		Title:  normalize.CleanText(title),
		Domain: normalize.Domain(rawURL),
	}
}

// ListNotes handles GET /notes with optional ?tag= filter and ?sort= order
// (newest, oldest, alphabetical; default is insertion order).
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var notes []models.Note
	var err error
	if tag := q.Get("tag"); tag != "" {
		notes, err = h.store.GetNotesByTag(r.Context(), tag)
	} else {
		notes, err = h.store.GetAllNotes(r.Context())
	}
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}

	sortNotes(notes, q.Get("sort"))
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

func sortNotes(notes []models.Note, order string) {
	switch order {
	case "newest":
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.After(notes[j].CreatedAt) })
	case "oldest":
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.Before(notes[j].CreatedAt) })
	case "alphabetical":
		sort.SliceStable(notes, func(i, j int) bool { return notes[i].Text < notes[j].Text })
	}
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.store.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// SaveNote handles POST /notes: capture a text selection.
func (h *Handler) SaveNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	text := normalize.CleanText(req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("text is required"))
		return
	}

	content := models.NewTextNote(text, captureSource(req.URL, req.Title), normalize.ParseTags(req.Tags))
	note, err := h.store.CreateNote(r.Context(), content)
	if err != nil {
		slog.Error("save note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishNote("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// SaveImageNote handles POST /notes/image: capture an inline image with
// optional caption.
func (h *Handler) SaveImageNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SaveImageNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Image.Data == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("image data is required"))
		return
	}

	caption := normalize.CleanText(req.Text)
	content := models.NewImageNote(req.Image, caption, captureSource(req.URL, req.Title), normalize.ParseTags(req.Tags))
	note, err := h.store.CreateNote(r.Context(), content)
	if err != nil {
		slog.Error("save image note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishNote("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// SaveImageURLNote handles POST /notes/image-url: capture an image by
// reference when the pixels could not be read cross-origin.
func (h *Handler) SaveImageURLNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req SaveImageURLNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if !normalize.ValidURL(req.ImageURL) {
		writeJSON(w, http.StatusBadRequest, errorBody("a valid image_url is required"))
		return
	}

	content := models.NewImageURLNote(req.ImageURL, captureSource(req.URL, req.Title), normalize.ParseTags(req.Tags))
	content.Text = normalize.CleanText(req.Alt)
	note, err := h.store.CreateNote(r.Context(), content)
	if err != nil {
		slog.Error("save image url note failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishNote("created", note.ID)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /notes/{id}: edit text and/or tags.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	id := chi.URLParam(r, "id")
	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	text := normalize.CleanText(req.Text)
	tags := normalize.ParseTags(req.Tags)
	note, err := h.store.UpdateNote(r.Context(), id, notestore.Patch{Text: &text, Tags: &tags})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody("note text cannot be empty"))
		default:
			slog.Error("update note failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishNote("updated", note.ID)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}. Deleting an unknown id succeeds.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteNote(r.Context(), id); err != nil {
		slog.Error("delete note failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishNote("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	notes, err := h.store.SearchNotes(r.Context(), q)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}
