package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/ffmpeg"
	"github.com/mgpai22/subsearch/internal/library"
	"github.com/mgpai22/subsearch/internal/logging"
	"github.com/mgpai22/subsearch/internal/media"
	"github.com/mgpai22/subsearch/internal/subtitle"
)

// context cancelled by Ctrl-C, so long ffmpeg runs and playback can be stopped
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func openLibrary(ctx context.Context) (*library.Store, error) {
	store, err := library.Open(ctx, cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	return store, nil
}

func newDecoder() (media.Decoder, error) {
	paths, err := ffmpeg.Resolve(cfg.BinaryPaths())
	if err != nil {
		return nil, fmt.Errorf("failed to locate ffmpeg: %w", err)
	}
	logger.Debugw("Using media tools",
		"ffmpeg", paths.FFmpeg,
		"ffprobe", paths.FFprobe,
		"ffplay", paths.FFplay,
	)
	return media.NewDecoder(paths, logger), nil
}

// routes parser warnings for one source to the log
func warnTo(log *logging.Logger, source string) subtitle.WarnFunc {
	return func(w subtitle.Warning) {
		log.Warnw("Skipping malformed subtitle line",
			"source", source,
			"line", w.Line,
			"text", w.Text,
			"reason", w.Message,
		)
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
