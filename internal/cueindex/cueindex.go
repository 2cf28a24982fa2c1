// Package cueindex holds the cues accumulated across loaded media items and
// answers single-word lookups over them.
package cueindex

import (
	"fmt"
	"iter"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/mgpai22/subsearch/internal/subtitle"
)

// Collection is an ordered, appendable set of cues. It is not safe for
// concurrent mutation; callers serialize loads.
type Collection struct {
	cues []subtitle.Cue
}

func NewCollection(cues ...subtitle.Cue) *Collection {
	c := &Collection{}
	c.Append(cues...)
	return c
}

func (c *Collection) Append(cues ...subtitle.Cue) {
	c.cues = append(c.cues, cues...)
}

// AppendFrom tags every cue in seq with source and appends them.
func (c *Collection) AppendFrom(source string, seq iter.Seq[subtitle.Cue]) int {
	n := 0
	for cue := range seq {
		c.cues = append(c.cues, cue.WithSource(source))
		n++
	}
	return n
}

func (c *Collection) Clear() {
	c.cues = nil
}

func (c *Collection) Len() int {
	return len(c.cues)
}

// All yields the cues in insertion order.
func (c *Collection) All() iter.Seq[subtitle.Cue] {
	return slices.Values(c.cues)
}

// Cues returns a copy of the collection contents.
func (c *Collection) Cues() []subtitle.Cue {
	return slices.Clone(c.cues)
}

func (c *Collection) Search(word string) iter.Seq[subtitle.Cue] {
	return Search(c.All(), word)
}

// Search yields the cues whose text contains word as a whole token. Text is
// compared lower-cased, with hyphens treated as spaces.
func Search(cues iter.Seq[subtitle.Cue], word string) iter.Seq[subtitle.Cue] {
	return func(yield func(subtitle.Cue) bool) {
		lower := cases.Lower(language.Und)
		query := lower.String(strings.TrimSpace(word))
		if query == "" {
			return
		}
		for cue := range cues {
			if !slices.Contains(Tokens(cue.Text), query) {
				continue
			}
			if !yield(cue) {
				return
			}
		}
	}
}

// Tokens splits caption text into the lower-cased words Search matches
// against.
func Tokens(text string) []string {
	lowered := cases.Lower(language.Und).String(text)
	return strings.Fields(strings.ReplaceAll(lowered, "-", " "))
}

// Format renders a result as `1.000s to 3.000s in "source"`.
func Format(cue subtitle.Cue) string {
	return fmt.Sprintf("%.3fs to %.3fs in \"%s\"",
		float64(cue.StartTime.Milliseconds())/1000.0,
		float64(cue.EndTime.Milliseconds())/1000.0,
		cue.Source,
	)
}
