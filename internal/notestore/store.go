// Package notestore implements the tag-indexed note store: a notes
// collection, a per-tag index, and derived tag statistics kept consistent
// across mutations on top of a whole-value key-value backing store.
//
// Every mutation is a read-entire-collection, modify, write-entire-collection
// cycle. The backing store offers no transactions, so all mutating
// operations are serialized behind a single mutex; the notes, tag-records
// and statistics writes of one mutation are still three independent
// completions, and a crash between them leaves the derived data stale until
// RefreshStatistics repairs it.
package notestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/kv"
	"github.com/starford/ansuz/internal/models"
)

// Backing store keys. Four independent top-level entries, each round-tripped
// as a whole JSON value.
const (
	keyNotes    = "notes"
	keyTags     = "tags"
	keyTagStats = "tag_stats"
	keyTheme    = "theme"
)

// Store owns the notes collection, the tag index, and the tag statistics.
type Store struct {
	kv kv.Provider

	// mu serializes all mutating operations (single logical writer).
	mu  sync.Mutex
	now func() time.Time
}

// New creates a store on top of the given backing store.
func New(p kv.Provider) *Store {
	return &Store{kv: p, now: time.Now}
}

// Patch carries the updatable fields of a note. Nil fields are left as-is;
// everything else (kind, provenance, created_at) is immutable post-creation.
type Patch struct {
	Text *string
	Tags *[]string
}

// CreateNote assigns a fresh id and timestamps to content, appends it to the
// collection, and updates the tag index for any tags it carries.
// The tags in content must already be normalized (see normalize.ParseTags).
func (s *Store) CreateNote(ctx context.Context, content models.Note) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNoteLocked(ctx, content)
}

func (s *Store) createNoteLocked(ctx context.Context, content models.Note) (*models.Note, error) {
	if err := content.Validate(); err != nil {
		return nil, err
	}

	note := content
	note.ID = uuid.NewString()
	now := s.now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.Tags == nil {
		note.Tags = []string{}
	}

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	notes = append(notes, note)
	if err := s.saveNotes(ctx, notes); err != nil {
		return nil, err
	}

	if len(note.Tags) > 0 {
		if err := s.updateTagStatistics(ctx, note.Tags, len(notes)); err != nil {
			return nil, err
		}
	}
	return &note, nil
}

// UpdateNote merges patch onto an existing note and bumps updated_at.
// Tag statistics are NOT adjusted here: the index is increment-on-save only,
// and removed tags keep their counts until RefreshStatistics runs.
func (s *Store) UpdateNote(ctx context.Context, id string, patch Patch) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	idx := findNote(notes, id)
	if idx < 0 {
		return nil, apperr.ErrNotFound
	}

	note := &notes[idx]
	if patch.Text != nil {
		// Pure text notes cannot be emptied; image captions can.
		if *patch.Text == "" && note.Kind == models.KindText {
			return nil, fmt.Errorf("%w: note text cannot be empty", apperr.ErrInvalidInput)
		}
		note.Text = *patch.Text
	}
	if patch.Tags != nil {
		note.Tags = *patch.Tags
		if note.Tags == nil {
			note.Tags = []string{}
		}
	}
	note.UpdatedAt = s.now().UTC()

	if err := s.saveNotes(ctx, notes); err != nil {
		return nil, err
	}
	out := *note
	return &out, nil
}

// DeleteNote removes the note with the given id. Deleting an absent id is a
// no-op, not an error. Tag statistics are left untouched; callers wanting
// consistent counts run RefreshStatistics afterwards.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return err
	}
	idx := findNote(notes, id)
	if idx < 0 {
		return nil
	}
	notes = append(notes[:idx], notes[idx+1:]...)
	return s.saveNotes(ctx, notes)
}

// GetNote returns the note with the given id.
func (s *Store) GetNote(ctx context.Context, id string) (*models.Note, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	idx := findNote(notes, id)
	if idx < 0 {
		return nil, apperr.ErrNotFound
	}
	note := notes[idx]
	return &note, nil
}

// GetAllNotes returns the full collection in insertion order.
func (s *Store) GetAllNotes(ctx context.Context) ([]models.Note, error) {
	return s.loadNotes(ctx)
}

// SearchNotes returns notes whose text, source title, or any tag contains
// the query, case-insensitively. Result order is insertion order.
func (s *Store) SearchNotes(ctx context.Context, query string) ([]models.Note, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(query)
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if noteMatches(&n, q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func noteMatches(n *models.Note, q string) bool {
	if strings.Contains(strings.ToLower(n.Text), q) {
		return true
	}
	if strings.Contains(strings.ToLower(n.Source.Title), q) {
		return true
	}
	for _, t := range n.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// GetNotesByTag returns notes whose tag set contains exactly the given name.
func (s *Store) GetNotesByTag(ctx context.Context, name string) ([]models.Note, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Note, 0)
	for _, n := range notes {
		if n.HasTag(name) {
			out = append(out, n)
		}
	}
	return out, nil
}

func findNote(notes []models.Note, id string) int {
	for i := range notes {
		if notes[i].ID == id {
			return i
		}
	}
	return -1
}

// --- backing-store round trips ---

func (s *Store) loadNotes(ctx context.Context) ([]models.Note, error) {
	data, err := s.kv.Get(ctx, keyNotes)
	if err != nil {
		if err == kv.ErrNoKey {
			return []models.Note{}, nil
		}
		return nil, err
	}
	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return nil, fmt.Errorf("notestore: decode notes: %w", err)
	}
	return notes, nil
}

func (s *Store) saveNotes(ctx context.Context, notes []models.Note) error {
	data, err := json.Marshal(notes)
	if err != nil {
		return fmt.Errorf("notestore: encode notes: %w", err)
	}
	return s.kv.Set(ctx, keyNotes, data)
}

func (s *Store) loadTagRecords(ctx context.Context) (map[string]models.TagRecord, error) {
	data, err := s.kv.Get(ctx, keyTags)
	if err != nil {
		if err == kv.ErrNoKey {
			return map[string]models.TagRecord{}, nil
		}
		return nil, err
	}
	var tags map[string]models.TagRecord
	if err := json.Unmarshal(data, &tags); err != nil {
		return nil, fmt.Errorf("notestore: decode tags: %w", err)
	}
	return tags, nil
}

func (s *Store) saveTagRecords(ctx context.Context, tags map[string]models.TagRecord) error {
	data, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("notestore: encode tags: %w", err)
	}
	return s.kv.Set(ctx, keyTags, data)
}

func (s *Store) loadStats(ctx context.Context) (models.TagStatistics, error) {
	empty := models.TagStatistics{RecentTags: []string{}, PopularTags: []string{}}
	data, err := s.kv.Get(ctx, keyTagStats)
	if err != nil {
		if err == kv.ErrNoKey {
			return empty, nil
		}
		return empty, err
	}
	var stats models.TagStatistics
	if err := json.Unmarshal(data, &stats); err != nil {
		return empty, fmt.Errorf("notestore: decode tag stats: %w", err)
	}
	if stats.RecentTags == nil {
		stats.RecentTags = []string{}
	}
	if stats.PopularTags == nil {
		stats.PopularTags = []string{}
	}
	return stats, nil
}

func (s *Store) saveStats(ctx context.Context, stats models.TagStatistics) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("notestore: encode tag stats: %w", err)
	}
	return s.kv.Set(ctx, keyTagStats, data)
}
