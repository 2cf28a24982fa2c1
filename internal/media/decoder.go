package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subsearch/internal/ffmpeg"
	"github.com/mgpai22/subsearch/internal/logging"
)

// defines interface for the media operations behind load, clip and play
type Decoder interface {
	// retrieves stream information for a media file
	Probe(ctx context.Context, path string) (*Info, error)

	// converts one embedded subtitle stream to WebVTT text
	LoadSubtitles(ctx context.Context, path string, stream int) (string, error)

	// cuts the audio between two timestamps
	Trim(ctx context.Context, req TrimRequest) ([]byte, error)

	// plays an in-memory clip until it ends or ctx is cancelled
	Play(ctx context.Context, clip []byte, format string) error
}

// holds options for audio trimming
type TrimRequest struct {
	Input  string
	Start  time.Duration
	End    time.Duration
	Format string // Output container (wav, matroska, mka, mp3, ...)
	// when set the clip is written here and Trim returns no bytes
	OutputPath string
}

// default implementation using ffmpeg, ffprobe and ffplay
type FFmpegDecoder struct {
	paths  ffmpegbin.BinaryPaths
	logger *logging.Logger
}

func NewDecoder(paths ffmpegbin.BinaryPaths, logger *logging.Logger) *FFmpegDecoder {
	if logger == nil {
		logger = logging.Nop()
	}
	return &FFmpegDecoder{
		paths:  paths,
		logger: logger,
	}
}

var quietArgs = []string{"-hide_banner", "-loglevel", "error"}

func subtitleArgs(path string, stream int) []string {
	args := ffmpeg.Input(path).
		Output("pipe:", ffmpeg.KwArgs{
			"map":    fmt.Sprintf("0:s:%d", stream),
			"format": "webvtt",
		}).
		GetArgs()
	return append(append([]string{}, quietArgs...), args...)
}

func trimArgs(req TrimRequest, format string) []string {
	kwargs := ffmpeg.KwArgs{
		"map":    "0:a",
		"ss":     fmt.Sprintf("%dms", req.Start.Milliseconds()),
		"to":     fmt.Sprintf("%dms", req.End.Milliseconds()),
		"format": format,
	}

	output := "pipe:"
	if req.OutputPath != "" {
		output = req.OutputPath
	}

	stream := ffmpeg.Input(req.Input).Output(output, kwargs)
	if req.OutputPath != "" {
		stream = stream.OverWriteOutput()
	}
	return append(append([]string{}, quietArgs...), stream.GetArgs()...)
}

func playArgs(format string) []string {
	return []string{
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-f", format,
		"-",
	}
}

// converts one embedded subtitle stream to WebVTT text
func (d *FFmpegDecoder) LoadSubtitles(
	ctx context.Context,
	path string,
	stream int,
) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", fmt.Errorf("media file not found: %s", path)
	}
	if stream < 0 {
		return "", fmt.Errorf("subtitle stream must not be negative, got %d", stream)
	}

	out, err := d.run(ctx, subtitleArgs(path, stream))
	if err != nil {
		return "", fmt.Errorf("subtitle extraction failed: %w", err)
	}
	return string(out), nil
}

// cuts the audio between two timestamps
func (d *FFmpegDecoder) Trim(ctx context.Context, req TrimRequest) ([]byte, error) {
	format, err := NormalizeFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if req.Start < 0 || req.End <= req.Start {
		return nil, fmt.Errorf(
			"invalid clip range %v to %v",
			req.Start,
			req.End,
		)
	}
	if _, err := os.Stat(req.Input); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", req.Input)
	}

	if req.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	out, err := d.run(ctx, trimArgs(req, format))
	if err != nil {
		return nil, fmt.Errorf("trim failed: %w", err)
	}
	if req.OutputPath != "" {
		return nil, nil
	}
	return out, nil
}

// plays an in-memory clip until it ends or ctx is cancelled
func (d *FFmpegDecoder) Play(ctx context.Context, clip []byte, format string) error {
	format, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	if d.paths.FFplay == "" {
		return ffmpegbin.ErrFFplayNotFound
	}

	cmd := exec.CommandContext(ctx, d.paths.FFplay, playArgs(format)...)
	cmd.Stdin = bytes.NewReader(clip)
	// let ffplay close its audio device before falling back to a kill
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 2 * time.Second

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	d.logger.Debugw("Starting playback", "bytes", len(clip), "format", format)
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("ffplay failed: %w: %s", err, stderrTail(stderr.String()))
	}
	return nil
}

func (d *FFmpegDecoder) run(ctx context.Context, args []string) ([]byte, error) {
	if d.paths.FFmpeg == "" {
		return nil, errors.New("ffmpeg path not configured")
	}

	cmd := exec.CommandContext(ctx, d.paths.FFmpeg, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	d.logger.Debugw("Running ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s", err, stderrTail(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// last few lines of ffmpeg's stderr, enough to explain a failure
func stderrTail(stderr string) string {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, "; ")
}
