package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subsearch/internal/subtitle"
)

func parsedCues() []subtitle.Cue {
	return []subtitle.Cue{
		{StartTime: 1500 * time.Millisecond, EndTime: 3 * time.Second, Text: "hello world"},
		{StartTime: 61 * time.Second, EndTime: 62250 * time.Millisecond, Text: "goodbye"},
	}
}

func TestWriteCuesText(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCues(&buf, parsedCues(), "text"); err != nil {
		t.Fatalf("writeCues returned error: %v", err)
	}

	want := "00:00:01.500 --> 00:00:03.000  hello world\n" +
		"00:01:01.000 --> 00:01:02.250  goodbye\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestWriteCuesYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCues(&buf, parsedCues(), "yaml"); err != nil {
		t.Fatalf("writeCues returned error: %v", err)
	}

	var records []cueRecord
	if err := yaml.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("output is not valid yaml: %v\n%s", err, buf.String())
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[1].Start != "00:01:01.000" || records[1].EndMS != 62250 {
		t.Errorf("unexpected record %+v", records[1])
	}
}

func TestWriteCuesVTTReparses(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCues(&buf, parsedCues(), "vtt"); err != nil {
		t.Fatalf("writeCues returned error: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "WEBVTT") {
		t.Fatalf("expected WEBVTT header, got %q", buf.String())
	}

	var got []subtitle.Cue
	for cue := range subtitle.ParseVTT(buf.String(), nil) {
		got = append(got, cue)
	}
	want := parsedCues()
	if len(got) != len(want) {
		t.Fatalf("expected %d cues, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cue %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestWriteCuesUnsupportedFormat(t *testing.T) {
	if err := writeCues(&bytes.Buffer{}, parsedCues(), "json"); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
