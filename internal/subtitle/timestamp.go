package subtitle

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// [[hours:]minutes:]seconds.fraction
var timestampRegex = regexp.MustCompile(
	`^(?:(?:(\d+):)?(\d+):)?(\d+)\.(\d+)$`,
)

// ParseTimestamp converts a WebVTT timestamp to a duration, truncating
// anything finer than a millisecond.
func ParseTimestamp(ts string) (time.Duration, error) {
	matches := timestampRegex.FindStringSubmatch(strings.TrimSpace(ts))
	if matches == nil {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}

	hours, err := parseComponent(matches[1])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", ts, err)
	}
	minutes, err := parseComponent(matches[2])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", ts, err)
	}
	seconds, err := parseComponent(matches[3])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", ts, err)
	}

	// only the first three fractional digits survive truncation
	fraction := matches[4]
	if len(fraction) > 3 {
		fraction = fraction[:3]
	}
	fraction += strings.Repeat("0", 3-len(fraction))
	millis, err := strconv.ParseInt(fraction, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid fraction in %q: %w", ts, err)
	}

	total := (hours*3600+minutes*60+seconds)*1000 + millis
	if total < 0 || total > int64(time.Duration(1<<63-1)/time.Millisecond) {
		return 0, fmt.Errorf("timestamp %q out of range", ts)
	}

	return time.Duration(total) * time.Millisecond, nil
}

func parseComponent(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if v > 1<<40 {
		return 0, fmt.Errorf("%s is too large", s)
	}
	return v, nil
}

// FormatTimestamp renders d as HH:MM:SS.mmm, the form ParseTimestamp reads back.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	hours := ms / 3_600_000
	minutes := (ms / 60_000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}
