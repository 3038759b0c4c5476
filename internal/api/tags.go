package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
)

// tagName extracts and decodes the {name} route parameter.
func tagName(r *http.Request) string {
	raw := chi.URLParam(r, "name")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// AllTags handles GET /tags: the full tag index keyed by name.
func (h *Handler) AllTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.store.AllTags(r.Context())
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// RecentTags handles GET /tags/recent?limit=.
func (h *Handler) RecentTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tags, err := h.store.RecentTags(r.Context(), limit)
	if err != nil {
		slog.Error("recent tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagNamesResponse{Tags: tags})
}

// PopularTags handles GET /tags/popular?limit=.
func (h *Handler) PopularTags(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	tags, err := h.store.PopularTags(r.Context(), limit)
	if err != nil {
		slog.Error("popular tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, TagNamesResponse{Tags: tags})
}

// TagStatistics handles GET /tags/statistics.
func (h *Handler) TagStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Statistics(r.Context())
	if err != nil {
		slog.Error("tag statistics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// NotesByTag handles GET /tags/{name}/notes: exact tag match.
func (h *Handler) NotesByTag(w http.ResponseWriter, r *http.Request) {
	name := tagName(r)
	notes, err := h.store.GetNotesByTag(r.Context(), name)
	if err != nil {
		slog.Error("notes by tag failed", slog.String("tag", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// RenameTag handles POST /tags/{name}/rename.
func (h *Handler) RenameTag(w http.ResponseWriter, r *http.Request) {
	oldName := tagName(r)
	var req RenameTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	if err := h.store.RenameTag(r.Context(), oldName, req.NewName); err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("tag not found"))
		case errors.Is(err, apperr.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorBody("invalid tag name"))
		default:
			slog.Error("rename tag failed", slog.String("tag", oldName), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.publishTag("tag.renamed", map[string]string{"old": oldName, "new": req.NewName})
	w.WriteHeader(http.StatusNoContent)
}

// DeleteTag handles DELETE /tags/{name}: strips the tag from every note and
// drops its record.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	name := tagName(r)
	if err := h.store.DeleteTag(r.Context(), name); err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid tag name"))
			return
		}
		slog.Error("delete tag failed", slog.String("tag", name), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishTag("tag.deleted", map[string]string{"name": name})
	w.WriteHeader(http.StatusNoContent)
}

// RefreshStatistics handles POST /tags/refresh: full recount from the notes
// collection.
func (h *Handler) RefreshStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.RefreshStatistics(r.Context())
	if err != nil {
		slog.Error("refresh statistics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishTag("tags.refreshed", nil)
	writeJSON(w, http.StatusOK, stats)
}

// GetTheme handles GET /theme.
func (h *Handler) GetTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.Theme(r.Context())
	if err != nil {
		slog.Error("get theme failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// SetTheme handles PUT /theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req SetThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.store.SetTheme(r.Context(), req.Theme); err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("theme must be light or dark"))
			return
		}
		slog.Error("set theme failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: req.Theme})
}

// ToggleTheme handles POST /theme/toggle.
func (h *Handler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.store.ToggleTheme(r.Context())
	if err != nil {
		slog.Error("toggle theme failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ThemeResponse{Theme: theme})
}

// Export handles GET /export: download the full collection as JSON.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.store.Export(r.Context())
	if err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="notes-export.json"`)
	writeJSON(w, http.StatusOK, doc)
}

// Import handles POST /import: re-save notes from an export document
// through the normal create path.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	imported, err := h.store.Import(r.Context(), data, slog.Default())
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidInput) {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid import file format"))
			return
		}
		slog.Error("import failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	h.publishTag("tags.refreshed", nil)
	writeJSON(w, http.StatusOK, ImportResponse{Imported: imported})
}
