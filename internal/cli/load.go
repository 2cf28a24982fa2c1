package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/library"
	"github.com/mgpai22/subsearch/internal/logging"
	"github.com/mgpai22/subsearch/internal/media"
	"github.com/mgpai22/subsearch/internal/subtitle"
)

var loadCmd = &cobra.Command{
	Use:   "load [media_file...]",
	Short: "Load subtitles from video files into the library",
	Long: `Extract the embedded subtitles of each file and add them to the library.

Video files are converted to WebVTT with ffmpeg. WebVTT files (.vtt) are read
directly; use --media to attribute a single .vtt file to the video it belongs
to so its matches can be clipped.

Examples:
  subsearch load episode1.mkv episode2.mkv
  subsearch load movie.mp4 --stream 1
  subsearch load movie.en.vtt --media movie.mkv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().
		IntP("stream", "s", 0, "Subtitle stream index within each file")
	loadCmd.Flags().
		String("media", "", "Media file a single .vtt input belongs to")
}

// loads one media item into the library
type loader struct {
	decoder media.Decoder
	store   *library.Store
	logger  *logging.Logger
	stream  int
}

// parses the subtitles of path and appends them under source; nothing is
// stored unless decoding and parsing both succeed
func (l *loader) load(ctx context.Context, path, source string) (library.Media, error) {
	warn := warnTo(l.logger, source)

	var cues []subtitle.Cue
	if media.IsSubtitleFile(path) {
		parsed, err := subtitle.ParseVTTFile(path, warn)
		if err != nil {
			return library.Media{}, err
		}
		cues = parsed
	} else {
		if l.decoder == nil {
			return library.Media{}, errors.New("no media decoder available")
		}

		info, err := l.decoder.Probe(ctx, path)
		if err != nil {
			return library.Media{}, err
		}
		if info.SubtitleStreams == 0 {
			return library.Media{}, fmt.Errorf("%s has no subtitle streams", path)
		}
		if l.stream >= info.SubtitleStreams {
			return library.Media{}, fmt.Errorf(
				"%s has %d subtitle streams, stream %d requested",
				path,
				info.SubtitleStreams,
				l.stream,
			)
		}

		codec := "unknown"
		if l.stream < len(info.SubtitleCodecs) {
			codec = info.SubtitleCodecs[l.stream]
		}
		l.logger.Debugw("Extracting subtitles",
			"file", path,
			"stream", l.stream,
			"codec", codec,
		)
		text, err := l.decoder.LoadSubtitles(ctx, path, l.stream)
		if err != nil {
			return library.Media{}, err
		}
		cues = slices.Collect(subtitle.ParseVTT(text, warn))
	}

	return l.store.Append(ctx, source, cues)
}

func runLoad(cmd *cobra.Command, args []string) error {
	stream, _ := cmd.Flags().GetInt("stream")
	mediaPath, _ := cmd.Flags().GetString("media")

	if stream < 0 {
		return fmt.Errorf("stream must not be negative, got %d", stream)
	}
	if mediaPath != "" && (len(args) != 1 || !media.IsSubtitleFile(args[0])) {
		return fmt.Errorf("--media requires exactly one .vtt file")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	l := &loader{store: store, logger: logger, stream: stream}

	needsDecoder := slices.ContainsFunc(args, func(path string) bool {
		return !media.IsSubtitleFile(path)
	})
	if needsDecoder {
		if l.decoder, err = newDecoder(); err != nil {
			return err
		}
	}

	total := 0
	for _, arg := range args {
		path, err := filepath.Abs(arg)
		if err != nil {
			return fmt.Errorf("invalid path %q: %w", arg, err)
		}
		source := path
		if mediaPath != "" {
			if source, err = filepath.Abs(mediaPath); err != nil {
				return fmt.Errorf("invalid media path %q: %w", mediaPath, err)
			}
		}

		logger.Infow("Loading subtitles", "file", path)
		item, err := l.load(ctx, path, source)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", arg, err)
		}
		logger.Infow("Loaded subtitles",
			"file", item.Path,
			"cues", item.CueCount,
		)
		total += item.CueCount
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d subtitles from %d file(s)\n", total, len(args))
	return nil
}
