package subtitle

import (
	"testing"
	"time"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"00:00:01.000", time.Second},
		{"01:02:03.456", time.Hour + 2*time.Minute + 3*time.Second + 456*time.Millisecond},
		{"02:03.004", 2*time.Minute + 3*time.Second + 4*time.Millisecond},
		{"7.5", 7500 * time.Millisecond},
		{"0.05", 50 * time.Millisecond},
		{"00:00:01.0019", 1001 * time.Millisecond},
		{"00:00:00.9999", 999 * time.Millisecond},
		{"100:00:00.000", 100 * time.Hour},
		{"00:00:01.001", 1001 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) returned error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimestampInvalid(t *testing.T) {
	inputs := []string{
		"",
		"1",
		"00:00:01",
		"00:00:01,000",
		"1:2:3:4.5",
		"aa:bb:cc.ddd",
		"99999999999999999999.0",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			if _, err := ParseTimestamp(input); err == nil {
				t.Errorf("expected error for %q", input)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		input time.Duration
		want  string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, "01:02:03.004"},
		{125 * time.Hour, "125:00:00.000"},
		{-time.Second, "00:00:00.000"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.input); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	samples := []int64{0, 1, 9, 10, 99, 100, 999, 1000, 1001, 59_999, 60_000,
		3_599_999, 3_600_000, 3_723_004, 86_399_999, 360_000_123}
	for ms := int64(0); ms < 5000; ms += 7 {
		samples = append(samples, ms)
	}

	for _, ms := range samples {
		d := time.Duration(ms) * time.Millisecond
		got, err := ParseTimestamp(FormatTimestamp(d))
		if err != nil {
			t.Fatalf("round trip of %dms failed: %v", ms, err)
		}
		if got != d {
			t.Errorf("round trip of %dms gave %v", ms, got)
		}
	}
}
