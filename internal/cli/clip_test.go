package cli

import (
	"testing"
	"time"

	"github.com/mgpai22/subsearch/internal/subtitle"
)

func TestClipRange(t *testing.T) {
	cue := subtitle.Cue{
		StartTime: 10 * time.Second,
		EndTime:   12 * time.Second,
		Text:      "hello there",
	}

	tests := []struct {
		name      string
		from, to  time.Duration
		wantStart time.Duration
		wantEnd   time.Duration
		wantErr   bool
	}{
		{"whole line", 0, 0, 10 * time.Second, 12 * time.Second, false},
		{"from only", 500 * time.Millisecond, 0, 10500 * time.Millisecond, 12 * time.Second, false},
		{"sub range", 250 * time.Millisecond, 1200 * time.Millisecond, 10250 * time.Millisecond, 11200 * time.Millisecond, false},
		{"to equals length", 0, 2 * time.Second, 10 * time.Second, 12 * time.Second, false},
		{"negative from", -time.Second, 0, 0, 0, true},
		{"past end", 0, 3 * time.Second, 0, 0, true},
		{"empty range", time.Second, time.Second, 0, 0, true},
		{"from at end", 2 * time.Second, 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := clipRange(cue, tt.from, tt.to)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got range %v-%v", start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf(
					"expected %v-%v, got %v-%v",
					tt.wantStart,
					tt.wantEnd,
					start,
					end,
				)
			}
		})
	}
}

func TestClipOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		word   string
		n      int
		want   string
	}{
		{"default name", "", "hello", 1, "hello-1.mka"},
		{"word is lowered", "", "Hello", 3, "hello-3.mka"},
		{"unsafe characters", "", "don't stop", 2, "don_t_stop-2.mka"},
		{"empty word", "", "  ", 1, "clip-1.mka"},
		{"explicit extension", "out/line.wav", "hello", 1, "out/line.wav"},
		{"missing extension", "line", "hello", 1, "line.mka"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clipOutputPath(tt.output, tt.word, tt.n, "mka")
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
