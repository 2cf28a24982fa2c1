package media

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidFormat marks a container name outside the recognized set.
var ErrInvalidFormat = errors.New("invalid format")

// container aliases accepted by NormalizeFormat
var formatAliases = map[string]string{
	"mkv":      "matroska",
	"mka":      "matroska",
	"mks":      "matroska",
	"matroska": "matroska",
	"avi":      "avi",
	"mov":      "mov",
	"mp4":      "mp4",
	"mp3":      "mp3",
	"ogg":      "ogg",
	"wav":      "wav",
}

// NormalizeFormat maps a file extension or container name to the name ffmpeg
// expects after -f. Unknown names fail with ErrInvalidFormat.
func NormalizeFormat(name string) (string, error) {
	key := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "."))
	if format, ok := formatAliases[key]; ok {
		return format, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

// Ext returns the extension of path without the leading dot.
func Ext(path string) (string, error) {
	ext := filepath.Ext(path)
	if len(ext) <= 1 {
		return "", fmt.Errorf("%q has no extension", path)
	}
	return ext[1:], nil
}

// FormatForPath picks the container format from the extension of path.
func FormatForPath(path string) (string, error) {
	ext, err := Ext(path)
	if err != nil {
		return "", err
	}
	return NormalizeFormat(ext)
}

// checks if the file is a WebVTT subtitle file based on extension
func IsSubtitleFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".vtt")
}
