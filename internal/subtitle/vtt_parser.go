package subtitle

import (
	"fmt"
	"iter"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"
)

// start --> end, anything after the end timestamp (cue settings) is ignored
var cueHeaderRegex = regexp.MustCompile(
	`^((?:\d+:){0,2}\d+\.\d+)\s+-->\s+((?:\d+:){0,2}\d+\.\d+)`,
)

// ParseVTT lazily parses WebVTT text into cues, merging back-to-back cues that
// repeat the same caption. Every range over the result parses text again.
func ParseVTT(text string, warn WarnFunc) iter.Seq[Cue] {
	return MergeAdjacent(RawCues(text, warn))
}

// RawCues parses WebVTT text without merging repeated captions. Each text line
// becomes its own cue carrying the interval of the closest preceding header.
func RawCues(text string, warn WarnFunc) iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		var (
			start, end   time.Duration
			haveInterval bool
			inPreamble   = true
		)

		for i, raw := range strings.Split(text, "\n") {
			lineNum := i + 1
			if lineNum == 1 {
				raw = strings.TrimPrefix(raw, "\ufeff")
			}
			line := strings.TrimSpace(raw)

			if inPreamble {
				if line == "" ||
					strings.HasPrefix(line, "WEBVTT") ||
					strings.HasPrefix(line, "NOTE") {
					continue
				}
				inPreamble = false
			}

			if line == "" || strings.HasPrefix(line, "NOTE") {
				continue
			}

			if matches := cueHeaderRegex.FindStringSubmatch(line); matches != nil {
				s, e, err := parseInterval(matches[1], matches[2])
				if err != nil {
					haveInterval = false
					emit(warn, Warning{
						Line:    lineNum,
						Text:    line,
						Message: err.Error(),
					})
					continue
				}
				start, end, haveInterval = s, e, true
				continue
			}

			if !haveInterval {
				emit(warn, Warning{
					Line:    lineNum,
					Text:    line,
					Message: "found subtitle text before timestamp data",
				})
				continue
			}

			if !yield(Cue{StartTime: start, EndTime: end, Text: line}) {
				return
			}
		}
	}
}

func parseInterval(startTS, endTS string) (time.Duration, time.Duration, error) {
	start, err := ParseTimestamp(startTS)
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(endTS)
	if err != nil {
		return 0, 0, err
	}
	if end < start {
		return 0, 0, fmt.Errorf("cue ends at %s before it starts at %s", endTS, startTS)
	}
	return start, end, nil
}

func emit(warn WarnFunc, w Warning) {
	if warn != nil {
		warn(w)
	}
}

// MergeAdjacent collapses runs of consecutive cues with identical text into a
// single cue spanning from the first start to the last end. Repeats separated
// by a different caption stay separate.
func MergeAdjacent(cues iter.Seq[Cue]) iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		var (
			last Cue
			have bool
		)
		for cue := range cues {
			if have && cue.Text == last.Text {
				last = Cue{
					StartTime: last.StartTime,
					EndTime:   cue.EndTime,
					Text:      last.Text,
					Source:    last.Source,
				}
				continue
			}
			if have && !yield(last) {
				return
			}
			last, have = cue, true
		}
		if have {
			yield(last)
		}
	}
}

// ParseVTTFile reads and parses a WebVTT file.
func ParseVTTFile(path string, warn WarnFunc) ([]Cue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read VTT file: %w", err)
	}
	return slices.Collect(ParseVTT(string(data), warn)), nil
}
