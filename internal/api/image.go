package api

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

// ServeImage handles GET /notes/{id}/image. Inline payloads are decoded and
// served as raw bytes; image-URL notes redirect to the external reference.
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	note, err := h.store.GetNote(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("serve image failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}

	switch {
	case note.Image != nil:
		raw, format, err := decodeImageData(note.Image)
		if err != nil {
			slog.Error("decode image failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("stored image is corrupt"))
			return
		}
		w.Header().Set("Content-Type", "image/"+format)
		w.Header().Set("Cache-Control", "max-age=86400")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)

	case note.ImageURL != "":
		http.Redirect(w, r, note.ImageURL, http.StatusFound)

	default:
		writeJSON(w, http.StatusNotFound, errorBody("note has no image"))
	}
}

// decodeImageData handles both bare base64 and data-URI payloads, since the
// capture side stores whatever canvas.toDataURL produced.
func decodeImageData(img *models.ImagePayload) ([]byte, string, error) {
	data := img.Data
	format := img.Format
	if format == "" {
		format = "png"
	}

	if strings.HasPrefix(data, "data:") {
		// data:image/png;base64,....
		if i := strings.IndexByte(data, ','); i >= 0 {
			header := data[:i]
			data = data[i+1:]
			if f, ok := strings.CutPrefix(header, "data:image/"); ok {
				if j := strings.IndexByte(f, ';'); j >= 0 {
					format = f[:j]
				}
			}
		}
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, "", err
	}
	return raw, format, nil
}
