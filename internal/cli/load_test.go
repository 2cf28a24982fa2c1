package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mgpai22/subsearch/internal/library"
	"github.com/mgpai22/subsearch/internal/logging"
	"github.com/mgpai22/subsearch/internal/media"
)

type fakeDecoder struct {
	info     *media.Info
	vtt      string
	probeErr error
	loadErr  error
	streams  []int
}

func (f *fakeDecoder) Probe(ctx context.Context, path string) (*media.Info, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return f.info, nil
}

func (f *fakeDecoder) LoadSubtitles(ctx context.Context, path string, stream int) (string, error) {
	f.streams = append(f.streams, stream)
	if f.loadErr != nil {
		return "", f.loadErr
	}
	return f.vtt, nil
}

func (f *fakeDecoder) Trim(ctx context.Context, req media.TrimRequest) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeDecoder) Play(ctx context.Context, clip []byte, format string) error {
	return errors.New("not implemented")
}

const sampleVTT = `WEBVTT

00:00:01.000 --> 00:00:02.000
hello world

00:00:02.000 --> 00:00:03.000
hello world

00:00:04.000 --> 00:00:05.000
goodbye
`

func newTestLoader(t *testing.T, decoder media.Decoder, stream int) *loader {
	t.Helper()
	store, err := library.Open(context.Background(), filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("failed to open library: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return &loader{
		decoder: decoder,
		store:   store,
		logger:  logging.Nop(),
		stream:  stream,
	}
}

func TestLoaderLoadsMedia(t *testing.T) {
	ctx := context.Background()
	decoder := &fakeDecoder{
		info: &media.Info{
			SubtitleStreams: 2,
			SubtitleCodecs:  []string{"subrip", "ass"},
		},
		vtt: sampleVTT,
	}
	l := newTestLoader(t, decoder, 1)

	item, err := l.load(ctx, "/media/movie.mkv", "/media/movie.mkv")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if item.CueCount != 2 {
		t.Errorf("expected 2 merged cues, got %d", item.CueCount)
	}
	if len(decoder.streams) != 1 || decoder.streams[0] != 1 {
		t.Errorf("expected stream 1 to be extracted, got %v", decoder.streams)
	}

	collection, err := l.store.Cues(ctx)
	if err != nil {
		t.Fatalf("Cues returned error: %v", err)
	}
	cues := collection.Cues()
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues in library, got %d", len(cues))
	}
	if cues[0].Source != "/media/movie.mkv" || cues[0].Text != "hello world" {
		t.Errorf("unexpected first cue %+v", cues[0])
	}
	if cues[0].EndTime.Seconds() != 3 {
		t.Errorf("expected merged cue to end at 3s, got %v", cues[0].EndTime)
	}
}

func TestLoaderReadsVTTDirectly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "movie.en.vtt")
	if err := os.WriteFile(path, []byte(sampleVTT), 0o644); err != nil {
		t.Fatal(err)
	}

	l := newTestLoader(t, nil, 0)
	item, err := l.load(context.Background(), path, "/media/movie.mkv")
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if item.Path != "/media/movie.mkv" {
		t.Errorf("expected cues attributed to /media/movie.mkv, got %q", item.Path)
	}
	if item.CueCount != 2 {
		t.Errorf("expected 2 cues, got %d", item.CueCount)
	}
}

func TestLoaderErrorsLeaveLibraryUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		decoder *fakeDecoder
		stream  int
	}{
		{
			name:    "probe failure",
			decoder: &fakeDecoder{probeErr: errors.New("ffprobe failed")},
		},
		{
			name:    "no subtitle streams",
			decoder: &fakeDecoder{info: &media.Info{AudioStreams: 1}},
		},
		{
			name:    "stream out of range",
			decoder: &fakeDecoder{info: &media.Info{SubtitleStreams: 1}},
			stream:  1,
		},
		{
			name: "decode failure",
			decoder: &fakeDecoder{
				info:    &media.Info{SubtitleStreams: 1},
				loadErr: errors.New("ffmpeg failed"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			l := newTestLoader(t, tt.decoder, tt.stream)

			if _, err := l.load(ctx, "/media/movie.mkv", "/media/movie.mkv"); err == nil {
				t.Fatal("expected error")
			}

			items, err := l.store.Media(ctx)
			if err != nil {
				t.Fatalf("Media returned error: %v", err)
			}
			if len(items) != 0 {
				t.Errorf("expected empty library, got %d items", len(items))
			}
		})
	}
}
