package subtitle

import (
	"fmt"
	"time"
)

// single timed caption line
type Cue struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
	// media the cue was loaded from, empty until the caller attributes it
	Source string
}

// Duration reports how long the cue stays on screen.
func (c Cue) Duration() time.Duration {
	return c.EndTime - c.StartTime
}

// WithSource returns a copy of the cue attributed to source.
func (c Cue) WithSource(source string) Cue {
	c.Source = source
	return c
}

// non-fatal problem found while parsing
type Warning struct {
	Line    int
	Text    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s: %q", w.Line, w.Message, w.Text)
}

// receives parser warnings; nil discards them
type WarnFunc func(Warning)
