package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WebVTT format
type VTTWriter struct {
	// numbered cue identifiers before each header
	Identifiers bool
}

// writes the cues to a VTT file
func (w *VTTWriter) Write(cues []Cue, path string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create VTT file: %w", err)
	}

	if err := w.Encode(file, cues); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Encode renders cues as WebVTT to out.
func (w *VTTWriter) Encode(out io.Writer, cues []Cue) error {
	bw := bufio.NewWriter(out)

	// VTT header
	fmt.Fprint(bw, "WEBVTT\n\n")

	for i, cue := range cues {
		if w.Identifiers {
			fmt.Fprintf(bw, "%d\n", i+1)
		}

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(bw, "%s --> %s\n",
			FormatTimestamp(cue.StartTime),
			FormatTimestamp(cue.EndTime))

		fmt.Fprintf(bw, "%s\n\n", cue.Text)
	}

	return bw.Flush()
}

// WriteVTT renders cues as WebVTT without cue identifiers.
func WriteVTT(out io.Writer, cues []Cue) error {
	return (&VTTWriter{}).Encode(out, cues)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}
