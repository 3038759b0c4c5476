package notestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/normalize"
)

// Export snapshots the notes collection and tag index into a portable
// document.
func (s *Store) Export(ctx context.Context) (*models.ExportDocument, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTagRecords(ctx)
	if err != nil {
		return nil, err
	}
	return &models.ExportDocument{
		Notes:      notes,
		Tags:       tags,
		ExportedAt: s.now().UTC(),
		Version:    models.ExportVersion,
	}, nil
}

// Import accepts any JSON document carrying a notes array. Each entry gets a
// fresh id and defaulted fields and is re-saved through the normal create
// path, so tag statistics update incrementally per imported note rather than
// in bulk. Entries that fail to import are skipped, not fatal.
// Returns the number of notes imported.
func (s *Store) Import(ctx context.Context, data []byte, logger *slog.Logger) (int, error) {
	var doc struct {
		Notes []models.Note `json:"notes"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("%w: not a valid export document", apperr.ErrInvalidInput)
	}
	if doc.Notes == nil {
		return 0, fmt.Errorf("%w: document has no notes array", apperr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imported := 0
	for i, in := range doc.Notes {
		content := sanitizeImported(in)
		if _, err := s.createNoteLocked(ctx, content); err != nil {
			if logger != nil {
				logger.Warn("import: skipping note",
					slog.Int("index", i),
					slog.String("error", err.Error()))
			}
			continue
		}
		imported++
	}
	return imported, nil
}

// sanitizeImported defaults missing fields and repairs kind/content
// combinations so arbitrary user files cannot smuggle invalid notes in.
func sanitizeImported(in models.Note) models.Note {
	out := models.Note{
		Kind:     in.Kind,
		Text:     normalize.CleanText(in.Text),
		Image:    in.Image,
		ImageURL: in.ImageURL,
		Source:   in.Source,
		Tags:     normalize.NormalizeTags(in.Tags),
	}
	if out.Source.Title == "" {
		out.Source.Title = "Imported Note"
	}
	if out.Source.Domain == "" && out.Source.URL != "" {
		out.Source.Domain = normalize.Domain(out.Source.URL)
	}

	switch {
	case !out.Kind.Valid():
		out.Kind = models.KindText
		out.Image = nil
		out.ImageURL = ""
	case out.Kind == models.KindText:
		out.Image = nil
		out.ImageURL = ""
	case out.Kind.HasInlineImage():
		out.ImageURL = ""
		if out.Image == nil {
			out.Kind = models.KindText
		} else if out.Kind == models.KindTextWithImage && out.Text == "" {
			out.Kind = models.KindImage
		}
	case out.Kind == models.KindImageURL:
		out.Image = nil
		if out.ImageURL == "" {
			out.Kind = models.KindText
		}
	}
	return out
}
