package notestore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
)

func createTagged(t *testing.T, s *Store, text string, tags ...string) *models.Note {
	t.Helper()
	return mustCreate(t, s, models.NewTextNote(text, models.Source{}, tags))
}

func TestTagRecordsCreatedOnSave(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTagged(t, s, "one", "work", "go")
	createTagged(t, s, "two", "work")

	tags, err := s.AllTags(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 2 {
		t.Fatalf("got %d tag records: %v", len(tags), tags)
	}
	if tags["work"].UsageCount != 2 {
		t.Errorf("work count = %d, want 2", tags["work"].UsageCount)
	}
	if tags["go"].UsageCount != 1 {
		t.Errorf("go count = %d, want 1", tags["go"].UsageCount)
	}
	if tags["work"].Color == "" {
		t.Error("tag record has no color")
	}
}

func TestRecentTagsOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTagged(t, s, "one", "a", "b")
	createTagged(t, s, "two", "c")

	recent, err := s.RecentTags(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"c", "a", "b"}
	if !reflect.DeepEqual(recent, want) {
		t.Errorf("recent = %v, want %v", recent, want)
	}

	// Reuse moves a tag to the front without duplicating it.
	createTagged(t, s, "three", "b")
	recent, _ = s.RecentTags(ctx, 0)
	want = []string{"b", "c", "a"}
	if !reflect.DeepEqual(recent, want) {
		t.Errorf("recent after reuse = %v, want %v", recent, want)
	}
}

func TestRecentTagsCapped(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8", "t9", "t10", "t11", "t12"} {
		createTagged(t, s, "n", name)
	}
	recent, err := s.RecentTags(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != maxTagList {
		t.Fatalf("recent length = %d, want %d", len(recent), maxTagList)
	}
	if recent[0] != "t12" || recent[maxTagList-1] != "t3" {
		t.Errorf("recent window = %v", recent)
	}

	limited, _ := s.RecentTags(ctx, 3)
	if !reflect.DeepEqual(limited, []string{"t12", "t11", "t10"}) {
		t.Errorf("limited recent = %v", limited)
	}
}

func TestPopularTagsOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTagged(t, s, "one", "x")
	createTagged(t, s, "two", "x")
	createTagged(t, s, "three", "y", "a")

	popular, err := s.PopularTags(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	// x leads on count; a and y tie and sort by name.
	want := []string{"x", "a", "y"}
	if !reflect.DeepEqual(popular, want) {
		t.Errorf("popular = %v, want %v", popular, want)
	}
}

func TestCountsDoNotDecrementWithoutRefresh(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := createTagged(t, s, "one", "stale")
	none := []string{}
	if _, err := s.UpdateNote(ctx, note.ID, Patch{Tags: &none}); err != nil {
		t.Fatal(err)
	}

	tags, _ := s.AllTags(ctx)
	if tags["stale"].UsageCount != 1 {
		t.Errorf("count after tag removal = %d, want 1 (increment-only)", tags["stale"].UsageCount)
	}
}

func TestRefreshStatisticsRecounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	keep := createTagged(t, s, "keep", "alive")
	gone := createTagged(t, s, "gone", "alive", "dead")
	if err := s.DeleteNote(ctx, gone.ID); err != nil {
		t.Fatal(err)
	}

	stats, err := s.RefreshStatistics(ctx)
	if err != nil {
		t.Fatalf("RefreshStatistics: %v", err)
	}

	tags, _ := s.AllTags(ctx)
	if tags["alive"].UsageCount != 1 {
		t.Errorf("alive count = %d, want 1", tags["alive"].UsageCount)
	}
	// Records survive refresh at zero count; only their ranking drops.
	if rec, ok := tags["dead"]; !ok || rec.UsageCount != 0 {
		t.Errorf("dead record = %+v, want kept at 0", rec)
	}
	if stats.TotalNotes != 1 || stats.TotalTags != 2 {
		t.Errorf("totals = %d notes %d tags", stats.TotalNotes, stats.TotalTags)
	}
	// Recency is a usage log; refresh must not rewrite it.
	if !reflect.DeepEqual(stats.RecentTags, []string{"alive", "dead"}) {
		t.Errorf("recent after refresh = %v", stats.RecentTags)
	}
	_ = keep
}

func TestRefreshCreatesMissingRecords(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Simulate an interrupted save: a note references a tag with no record.
	createTagged(t, s, "n", "orphan")
	tags, _ := s.AllTags(ctx)
	delete(tags, "orphan")
	if err := s.saveTagRecords(ctx, tags); err != nil {
		t.Fatal(err)
	}

	if _, err := s.RefreshStatistics(ctx); err != nil {
		t.Fatal(err)
	}
	tags, _ = s.AllTags(ctx)
	rec, ok := tags["orphan"]
	if !ok {
		t.Fatal("refresh did not recreate orphaned tag record")
	}
	if rec.UsageCount != 1 || rec.Color == "" {
		t.Errorf("recreated record = %+v", rec)
	}
}

func TestRenameTagPropagates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := createTagged(t, s, "n", "old", "other")
	if err := s.RenameTag(ctx, "old", "new"); err != nil {
		t.Fatalf("RenameTag: %v", err)
	}

	got, _ := s.GetNote(ctx, note.ID)
	if !reflect.DeepEqual(got.Tags, []string{"new", "other"}) {
		t.Errorf("note tags = %v", got.Tags)
	}

	tags, _ := s.AllTags(ctx)
	if _, ok := tags["old"]; ok {
		t.Error("old record still present")
	}
	if tags["new"].UsageCount != 1 {
		t.Errorf("new count = %d, want 1", tags["new"].UsageCount)
	}

	recent, _ := s.RecentTags(ctx, 0)
	if !reflect.DeepEqual(recent, []string{"new", "other"}) {
		t.Errorf("recent = %v", recent)
	}
}

func TestRenameTagMergesIntoExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := createTagged(t, s, "a", "src")
	b := createTagged(t, s, "b", "dst")
	both := createTagged(t, s, "c", "src", "dst")

	if err := s.RenameTag(ctx, "src", "dst"); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{a.ID, b.ID, both.ID} {
		note, _ := s.GetNote(ctx, id)
		if !note.HasTag("dst") || note.HasTag("src") {
			t.Errorf("note %s tags = %v", id, note.Tags)
		}
		// No duplicate dst after the merge.
		count := 0
		for _, tag := range note.Tags {
			if tag == "dst" {
				count++
			}
		}
		if count != 1 {
			t.Errorf("note %s carries dst %d times", id, count)
		}
	}

	tags, _ := s.AllTags(ctx)
	if tags["dst"].UsageCount != 3 {
		t.Errorf("dst count = %d, want 3", tags["dst"].UsageCount)
	}
}

func TestRenameTagErrors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTagged(t, s, "n", "real")
	if err := s.RenameTag(ctx, "ghost", "whatever"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown tag: err = %v, want ErrNotFound", err)
	}
	if err := s.RenameTag(ctx, "real", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("empty new name: err = %v, want ErrInvalidInput", err)
	}
	if err := s.RenameTag(ctx, "real", "Real"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("same name after normalization: err = %v, want ErrInvalidInput", err)
	}
}

func TestDeleteTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	note := createTagged(t, s, "n", "doomed", "kept")
	if err := s.DeleteTag(ctx, "doomed"); err != nil {
		t.Fatalf("DeleteTag: %v", err)
	}

	got, _ := s.GetNote(ctx, note.ID)
	if !reflect.DeepEqual(got.Tags, []string{"kept"}) {
		t.Errorf("note tags = %v", got.Tags)
	}
	tags, _ := s.AllTags(ctx)
	if _, ok := tags["doomed"]; ok {
		t.Error("record still present after delete")
	}
	recent, _ := s.RecentTags(ctx, 0)
	if !reflect.DeepEqual(recent, []string{"kept"}) {
		t.Errorf("recent = %v", recent)
	}

	// Deleting a tag that never existed is a no-op.
	if err := s.DeleteTag(ctx, "never-was"); err != nil {
		t.Errorf("delete unknown tag: %v", err)
	}
}
