package notestore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/tagcolor"
)

// maxTagList caps the recent_tags and popular_tags sequences.
const maxTagList = 10

// updateTagStatistics is the maintenance step run after a note-creating save
// with non-empty tags. Counts only ever go up here; decrements happen solely
// through RefreshStatistics. Caller holds the mutex.
//
// Tag records and statistics are two separate backing-store writes with no
// shared transaction.
func (s *Store) updateTagStatistics(ctx context.Context, newTags []string, noteCount int) error {
	tags, err := s.loadTagRecords(ctx)
	if err != nil {
		return err
	}

	now := s.now().UTC()
	for _, name := range newTags {
		rec, ok := tags[name]
		if !ok {
			rec = models.TagRecord{
				Name:      name,
				Color:     tagcolor.For(name),
				CreatedAt: now,
			}
		}
		rec.UsageCount++
		rec.LastUsedAt = now
		tags[name] = rec
	}
	if err := s.saveTagRecords(ctx, tags); err != nil {
		return err
	}

	stats, err := s.loadStats(ctx)
	if err != nil {
		return err
	}
	stats.RecentTags = pushRecent(stats.RecentTags, newTags)
	stats.PopularTags = popularOf(tags)
	stats.TotalTags = len(tags)
	stats.TotalNotes = noteCount
	return s.saveStats(ctx, stats)
}

// pushRecent prepends used in presentation order, removes the earlier
// occurrences, and truncates to maxTagList.
func pushRecent(recent, used []string) []string {
	out := make([]string, 0, len(recent)+len(used))
	out = append(out, used...)
	for _, name := range recent {
		dup := false
		for _, u := range used {
			if u == name {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, name)
		}
	}
	if len(out) > maxTagList {
		out = out[:maxTagList]
	}
	return out
}

// popularOf ranks records by usage count descending, ties by name, capped.
func popularOf(tags map[string]models.TagRecord) []string {
	recs := make([]models.TagRecord, 0, len(tags))
	for _, rec := range tags {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].UsageCount != recs[j].UsageCount {
			return recs[i].UsageCount > recs[j].UsageCount
		}
		return recs[i].Name < recs[j].Name
	})
	if len(recs) > maxTagList {
		recs = recs[:maxTagList]
	}
	out := make([]string, len(recs))
	for i, rec := range recs {
		out[i] = rec.Name
	}
	return out
}

// AllTags returns the full tag index keyed by name.
func (s *Store) AllTags(ctx context.Context) (map[string]models.TagRecord, error) {
	return s.loadTagRecords(ctx)
}

// Statistics returns the cached derived view.
func (s *Store) Statistics(ctx context.Context) (*models.TagStatistics, error) {
	stats, err := s.loadStats(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// RecentTags returns up to limit most-recently-used tag names.
// limit <= 0 or > 10 falls back to the cached list's full length.
func (s *Store) RecentTags(ctx context.Context, limit int) ([]string, error) {
	stats, err := s.loadStats(ctx)
	if err != nil {
		return nil, err
	}
	return capList(stats.RecentTags, limit), nil
}

// PopularTags returns up to limit tag names ranked by usage count.
func (s *Store) PopularTags(ctx context.Context, limit int) ([]string, error) {
	stats, err := s.loadStats(ctx)
	if err != nil {
		return nil, err
	}
	return capList(stats.PopularTags, limit), nil
}

func capList(list []string, limit int) []string {
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}
	out := make([]string, limit)
	copy(out, list[:limit])
	return out
}

// RenameTag rewrites old to new in every note's tag set (bumping each
// affected note's updated_at), moves the tag record under the new key, and
// refreshes the derived data. Fails with ErrNotFound when no record for old
// exists.
func (s *Store) RenameTag(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	oldName = strings.ToLower(strings.TrimSpace(oldName))
	newName = strings.ToLower(strings.TrimSpace(newName))
	if newName == "" || newName == oldName {
		return fmt.Errorf("%w: invalid tag rename %q -> %q", apperr.ErrInvalidInput, oldName, newName)
	}

	tags, err := s.loadTagRecords(ctx)
	if err != nil {
		return err
	}
	rec, ok := tags[oldName]
	if !ok {
		return apperr.ErrNotFound
	}

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	for i := range notes {
		if replaced := replaceTag(notes[i].Tags, oldName, newName); replaced != nil {
			notes[i].Tags = replaced
			notes[i].UpdatedAt = now
		}
	}
	if err := s.saveNotes(ctx, notes); err != nil {
		return err
	}

	// Move the record. When a record already exists under the new name the
	// existing one wins; refresh below repairs its count either way.
	delete(tags, oldName)
	if _, exists := tags[newName]; !exists {
		rec.Name = newName
		rec.Color = tagcolor.For(newName)
		tags[newName] = rec
	}
	if err := s.saveTagRecords(ctx, tags); err != nil {
		return err
	}

	stats, err := s.loadStats(ctx)
	if err != nil {
		return err
	}
	stats.RecentTags = renameInList(stats.RecentTags, oldName, newName)
	_, err = s.refreshLocked(ctx, stats.RecentTags)
	return err
}

// DeleteTag removes name from every note's tag set (bumping updated_at),
// drops the tag record, and refreshes. Deleting an unknown tag still scrubs
// notes and refreshes; it is not an error.
func (s *Store) DeleteTag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return fmt.Errorf("%w: empty tag name", apperr.ErrInvalidInput)
	}

	notes, err := s.loadNotes(ctx)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	for i := range notes {
		if stripped := stripTag(notes[i].Tags, name); stripped != nil {
			notes[i].Tags = stripped
			notes[i].UpdatedAt = now
		}
	}
	if err := s.saveNotes(ctx, notes); err != nil {
		return err
	}

	tags, err := s.loadTagRecords(ctx)
	if err != nil {
		return err
	}
	delete(tags, name)
	if err := s.saveTagRecords(ctx, tags); err != nil {
		return err
	}

	stats, err := s.loadStats(ctx)
	if err != nil {
		return err
	}
	stats.RecentTags = removeFromList(stats.RecentTags, name)
	_, err = s.refreshLocked(ctx, stats.RecentTags)
	return err
}

// RefreshStatistics recomputes every tag record's usage count from a full
// scan of the notes collection (the source of truth), rebuilds the popular
// list and totals, and preserves recent_tags as-is: recency is a usage-order
// log that a scan cannot reconstruct.
func (s *Store) RefreshStatistics(ctx context.Context) (*models.TagStatistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats, err := s.loadStats(ctx)
	if err != nil {
		return nil, err
	}
	return s.refreshLocked(ctx, stats.RecentTags)
}

func (s *Store) refreshLocked(ctx context.Context, recent []string) (*models.TagStatistics, error) {
	notes, err := s.loadNotes(ctx)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, n := range notes {
		for _, t := range n.Tags {
			counts[t]++
		}
	}

	tags, err := s.loadTagRecords(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	for name, rec := range tags {
		rec.UsageCount = counts[name]
		tags[name] = rec
	}
	// Repair: notes may reference tags with no record (interrupted saves).
	for name, count := range counts {
		if _, ok := tags[name]; !ok {
			tags[name] = models.TagRecord{
				Name:       name,
				UsageCount: count,
				Color:      tagcolor.For(name),
				CreatedAt:  now,
				LastUsedAt: now,
			}
		}
	}
	if err := s.saveTagRecords(ctx, tags); err != nil {
		return nil, err
	}

	stats := models.TagStatistics{
		RecentTags:  recent,
		PopularTags: popularOf(tags),
		TotalTags:   len(tags),
		TotalNotes:  len(notes),
	}
	if stats.RecentTags == nil {
		stats.RecentTags = []string{}
	}
	if err := s.saveStats(ctx, stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// replaceTag returns a rewritten tag set when old is present, nil otherwise.
// If new was already present the result just drops old.
func replaceTag(tags []string, oldName, newName string) []string {
	found := false
	hasNew := false
	for _, t := range tags {
		if t == oldName {
			found = true
		}
		if t == newName {
			hasNew = true
		}
	}
	if !found {
		return nil
	}
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == oldName {
			if !hasNew {
				out = append(out, newName)
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

// stripTag returns the tag set without name when present, nil otherwise.
func stripTag(tags []string, name string) []string {
	found := false
	for _, t := range tags {
		if t == name {
			found = true
			break
		}
	}
	if !found {
		return nil
	}
	out := make([]string, 0, len(tags)-1)
	for _, t := range tags {
		if t != name {
			out = append(out, t)
		}
	}
	return out
}

func renameInList(list []string, oldName, newName string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, name := range list {
		if name == oldName {
			name = newName
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func removeFromList(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, n := range list {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
