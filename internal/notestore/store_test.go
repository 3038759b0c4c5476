package notestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/kv"
	"github.com/starford/ansuz/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	provider, err := kv.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return New(provider)
}

func mustCreate(t *testing.T, s *Store, content models.Note) *models.Note {
	t.Helper()
	note, err := s.CreateNote(context.Background(), content)
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	return note
}

func TestCreateNoteRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	src := models.Source{URL: "https://example.com/a", Title: "Example", Domain: "example.com"}
	created := mustCreate(t, s, models.NewTextNote("captured text", src, []string{"work", "go"}))

	if created.ID == "" {
		t.Fatal("created note has no id")
	}
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps: created=%v updated=%v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := s.GetNote(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetNote: %v", err)
	}
	if got.Text != "captured text" || got.Kind != models.KindText {
		t.Errorf("note content = %q kind %q", got.Text, got.Kind)
	}
	if got.Source != src {
		t.Errorf("source = %+v, want %+v", got.Source, src)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "work" || got.Tags[1] != "go" {
		t.Errorf("tags = %v", got.Tags)
	}
}

func TestCreateNoteRejectsInvalidContent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	bad := []models.Note{
		{Kind: "screenshot", Text: "x"},
		{Kind: models.KindText, Text: "x", ImageURL: "https://example.com/i.png"},
		{Kind: models.KindImage},
		{Kind: models.KindImageURL},
	}
	for _, content := range bad {
		if _, err := s.CreateNote(ctx, content); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("CreateNote(kind=%s) err = %v, want ErrInvalidInput", content.Kind, err)
		}
	}
}

func TestCreateImageNoteExclusiveFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	img := models.ImagePayload{Data: "aGVsbG8=", Format: "png"}
	note := mustCreate(t, s, models.NewImageNote(img, "", models.Source{}, nil))
	if note.Kind != models.KindImage || note.Image == nil || note.ImageURL != "" {
		t.Errorf("image note = kind %q image %v url %q", note.Kind, note.Image, note.ImageURL)
	}

	captioned := mustCreate(t, s, models.NewImageNote(img, "a caption", models.Source{}, nil))
	if captioned.Kind != models.KindTextWithImage {
		t.Errorf("captioned image kind = %q", captioned.Kind)
	}

	linked := mustCreate(t, s, models.NewImageURLNote("https://example.com/i.png", models.Source{}, nil))
	if linked.Kind != models.KindImageURL || linked.Image != nil {
		t.Errorf("image url note = kind %q image %v", linked.Kind, linked.Image)
	}

	// A record carrying both an inline payload and an external URL is invalid.
	both := models.Note{Kind: models.KindImage, Image: &img, ImageURL: "https://example.com/i.png"}
	if _, err := s.CreateNote(ctx, both); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("both image fields: err = %v, want ErrInvalidInput", err)
	}
}

func TestUpdateNote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := mustCreate(t, s, models.NewTextNote("before", models.Source{}, []string{"a"}))

	s.now = func() time.Time { return note.CreatedAt.Add(time.Minute) }
	text := "after"
	tags := []string{"b", "c"}
	updated, err := s.UpdateNote(ctx, note.ID, Patch{Text: &text, Tags: &tags})
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if updated.Text != "after" {
		t.Errorf("text = %q", updated.Text)
	}
	if len(updated.Tags) != 2 || updated.Tags[0] != "b" {
		t.Errorf("tags = %v", updated.Tags)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updated_at not bumped: %v vs %v", updated.UpdatedAt, updated.CreatedAt)
	}
	if !updated.CreatedAt.Equal(note.CreatedAt) {
		t.Errorf("created_at changed: %v vs %v", updated.CreatedAt, note.CreatedAt)
	}
}

func TestUpdateNoteRejectsEmptyTextForTextNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := mustCreate(t, s, models.NewTextNote("hello", models.Source{}, nil))
	empty := ""
	if _, err := s.UpdateNote(ctx, note.ID, Patch{Text: &empty}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}

	// Clearing the caption of an image note is fine.
	img := mustCreate(t, s, models.NewImageNote(models.ImagePayload{Data: "aGk="}, "cap", models.Source{}, nil))
	if _, err := s.UpdateNote(ctx, img.ID, Patch{Text: &empty}); err != nil {
		t.Errorf("clearing caption: %v", err)
	}
}

func TestUpdateNoteNotFound(t *testing.T) {
	s := newTestStore(t)
	text := "x"
	if _, err := s.UpdateNote(context.Background(), "missing", Patch{Text: &text}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteNoteIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := mustCreate(t, s, models.NewTextNote("bye", models.Source{}, nil))
	if err := s.DeleteNote(ctx, note.ID); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if err := s.DeleteNote(ctx, note.ID); err != nil {
		t.Errorf("second DeleteNote: %v", err)
	}
	if _, err := s.GetNote(ctx, note.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetNote after delete: %v", err)
	}
}

func TestGetAllNotesInsertionOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := mustCreate(t, s, models.NewTextNote("first", models.Source{}, nil))
	second := mustCreate(t, s, models.NewTextNote("second", models.Source{}, nil))

	notes, err := s.GetAllNotes(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 || notes[0].ID != first.ID || notes[1].ID != second.ID {
		t.Errorf("order = %v", noteIDs(notes))
	}
}

func TestSearchNotesAcrossFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreate(t, s, models.NewTextNote("gopher proverbs", models.Source{}, nil))
	mustCreate(t, s, models.NewTextNote("unrelated", models.Source{Title: "The Gopher Times"}, nil))
	mustCreate(t, s, models.NewTextNote("also unrelated", models.Source{}, []string{"gophers"}))
	mustCreate(t, s, models.NewTextNote("nothing here", models.Source{}, []string{"misc"}))

	results, err := s.SearchNotes(ctx, "GoPHer")
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Errorf("got %d results: %v", len(results), noteIDs(results))
	}
}

func TestGetNotesByTagExactMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tagged := mustCreate(t, s, models.NewTextNote("a", models.Source{}, []string{"go"}))
	mustCreate(t, s, models.NewTextNote("b", models.Source{}, []string{"golang"}))

	notes, err := s.GetNotesByTag(ctx, "go")
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].ID != tagged.ID {
		t.Errorf("notes = %v", noteIDs(notes))
	}
}

func noteIDs(notes []models.Note) []string {
	ids := make([]string, len(notes))
	for i, n := range notes {
		ids[i] = n.ID
	}
	return ids
}
