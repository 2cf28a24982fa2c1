// Package config loads subsearch settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/mgpai22/subsearch/internal/ffmpeg"
	"github.com/mgpai22/subsearch/internal/media"
)

// Library controls where loaded cues are persisted.
type Library struct {
	Path string `toml:"path"`
}

// FFmpeg pins the tool binaries; empty values fall back to discovery.
type FFmpeg struct {
	FFmpegPath  string `toml:"ffmpeg_path"`
	FFprobePath string `toml:"ffprobe_path"`
	FFplayPath  string `toml:"ffplay_path"`
}

// Clip holds defaults for exported and played clips.
type Clip struct {
	Format     string `toml:"format"`
	PlayFormat string `toml:"play_format"`
}

// Config is the full settings tree.
type Config struct {
	Library Library `toml:"library"`
	FFmpeg  FFmpeg  `toml:"ffmpeg"`
	Clip    Clip    `toml:"clip"`
}

const defaultConfigPath = "~/.config/subsearch/config.toml"

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Library: Library{Path: "~/.local/share/subsearch/library.db"},
		Clip: Clip{
			Format:     "mka",
			PlayFormat: "wav",
		},
	}
}

// DefaultConfigPath returns the absolute path of the default config file.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load reads path (or the default location when empty), layers it over the
// defaults and validates the result. A missing file is not an error; exists
// reports whether one was read.
func Load(path string) (cfg *Config, exists bool, err error) {
	c := Default()

	if path == "" {
		path = defaultConfigPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return nil, false, err
	}

	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, false, fmt.Errorf("open config: %w", err)
	default:
		defer file.Close()
		exists = true
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&c); err != nil {
			return nil, false, fmt.Errorf("parse config %s: %w", resolved, err)
		}
	}

	if err := c.normalize(); err != nil {
		return nil, false, err
	}
	if err := c.Validate(); err != nil {
		return nil, false, err
	}
	return &c, exists, nil
}

func (c *Config) normalize() error {
	var err error
	c.Library.Path = strings.TrimSpace(c.Library.Path)
	if c.Library.Path != "" {
		if c.Library.Path, err = expandPath(c.Library.Path); err != nil {
			return fmt.Errorf("library.path: %w", err)
		}
	}

	for _, p := range []*string{&c.FFmpeg.FFmpegPath, &c.FFmpeg.FFprobePath, &c.FFmpeg.FFplayPath} {
		*p = strings.TrimSpace(*p)
		if *p == "" {
			continue
		}
		if *p, err = expandPath(*p); err != nil {
			return fmt.Errorf("ffmpeg: %w", err)
		}
	}

	c.Clip.Format = strings.ToLower(strings.TrimSpace(c.Clip.Format))
	c.Clip.PlayFormat = strings.ToLower(strings.TrimSpace(c.Clip.PlayFormat))
	return nil
}

// Validate checks the settings for values the commands cannot work with.
func (c *Config) Validate() error {
	if c.Library.Path == "" {
		return errors.New("library.path must not be empty")
	}
	if _, err := media.NormalizeFormat(c.Clip.Format); err != nil {
		return fmt.Errorf("clip.format: %w", err)
	}
	if _, err := media.NormalizeFormat(c.Clip.PlayFormat); err != nil {
		return fmt.Errorf("clip.play_format: %w", err)
	}
	return nil
}

// BinaryPaths converts the ffmpeg section into discovery overrides.
func (c *Config) BinaryPaths() ffmpeg.BinaryPaths {
	return ffmpeg.BinaryPaths{
		FFmpeg:  c.FFmpeg.FFmpegPath,
		FFprobe: c.FFmpeg.FFprobePath,
		FFplay:  c.FFmpeg.FFplayPath,
	}
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
