package library

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/mgpai22/subsearch/internal/subtitle"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "library.db")
	store, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func cue(startMS, endMS int, text string) subtitle.Cue {
	return subtitle.Cue{
		StartTime: time.Duration(startMS) * time.Millisecond,
		EndTime:   time.Duration(endMS) * time.Millisecond,
		Text:      text,
	}
}

func TestAppendAndLoadCues(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	first, err := store.Append(ctx, "/media/a.mkv", []subtitle.Cue{
		cue(1000, 3000, "hello world"),
		cue(3000, 4500, "goodbye"),
	})
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if first.ID == "" || first.CueCount != 2 {
		t.Errorf("unexpected media record %+v", first)
	}

	if _, err := store.Append(ctx, "/media/b.mp4", []subtitle.Cue{
		cue(500, 900, "hello again"),
	}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	collection, err := store.Cues(ctx)
	if err != nil {
		t.Fatalf("Cues returned error: %v", err)
	}
	got := collection.Cues()
	want := []subtitle.Cue{
		cue(1000, 3000, "hello world").WithSource("/media/a.mkv"),
		cue(3000, 4500, "goodbye").WithSource("/media/a.mkv"),
		cue(500, 900, "hello again").WithSource("/media/b.mp4"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}

	results := slices.Collect(collection.Search("hello"))
	if len(results) != 2 {
		t.Errorf("expected 2 search results, got %d", len(results))
	}
}

func TestMediaListing(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	before := time.Now().Add(-time.Second)
	if _, err := store.Append(ctx, "/media/a.mkv", []subtitle.Cue{cue(0, 1, "x")}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Append(ctx, "/media/empty.mkv", nil); err != nil {
		t.Fatal(err)
	}

	items, err := store.Media(ctx)
	if err != nil {
		t.Fatalf("Media returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 media items, got %d", len(items))
	}
	if items[0].Path != "/media/a.mkv" || items[0].CueCount != 1 {
		t.Errorf("unexpected first item %+v", items[0])
	}
	if items[1].Path != "/media/empty.mkv" || items[1].CueCount != 0 {
		t.Errorf("unexpected second item %+v", items[1])
	}
	if items[0].LoadedAt.Before(before) {
		t.Errorf("loaded_at not recorded: %v", items[0].LoadedAt)
	}
}

func TestAppendCancelledLeavesNoState(t *testing.T) {
	store, _ := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Append(ctx, "/media/a.mkv", []subtitle.Cue{cue(0, 1, "x")}); err == nil {
		t.Fatal("expected error for cancelled context")
	}

	items, err := store.Media(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("expected no media after failed append, got %+v", items)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	store, _ := openTestStore(t)

	for _, src := range []string{"/a.mkv", "/b.mkv", "/a.mkv"} {
		if _, err := store.Append(ctx, src, []subtitle.Cue{cue(0, 1, src)}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Remove(ctx, "/a.mkv")
	if err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	collection, err := store.Cues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if collection.Len() != 1 || collection.Cues()[0].Source != "/b.mkv" {
		t.Errorf("unexpected cues after remove: %+v", collection.Cues())
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	collection, err = store.Cues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if collection.Len() != 0 {
		t.Errorf("expected empty library, got %d cues", collection.Len())
	}
}

func TestLibraryPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	if _, err := store.Append(ctx, "/a.mkv", []subtitle.Cue{cue(0, 1, "kept")}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	collection, err := reopened.Cues(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if collection.Len() != 1 || collection.Cues()[0].Text != "kept" {
		t.Errorf("expected persisted cue, got %+v", collection.Cues())
	}
}

func TestSchemaMismatch(t *testing.T) {
	ctx := context.Background()
	store, path := openTestStore(t)

	if _, err := store.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	_, err := Open(ctx, path)
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Errorf("expected ErrSchemaMismatch, got %v", err)
	}
}
