package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/cueindex"
	"github.com/mgpai22/subsearch/internal/media"
	"github.com/mgpai22/subsearch/internal/subtitle"
)

var clipCmd = &cobra.Command{
	Use:   "clip [word] [result]",
	Short: "Export the audio of a search result",
	Long: `Export the audio spoken during a search result to a file.

The result number refers to the output of "subsearch search". --from and --to
narrow the clip to part of the line and are measured from the line's start.
The container is taken from the output extension (mka, mkv, mp3, wav, ogg, ...).

Examples:
  subsearch clip hello 1
  subsearch clip hello 2 -o hello.wav
  subsearch clip hello 1 --from 250ms --to 1.2s`,
	Args: cobra.ExactArgs(2),
	RunE: runClip,
}

var playCmd = &cobra.Command{
	Use:   "play [word] [result]",
	Short: "Play the audio of a search result",
	Long: `Play the audio spoken during a search result with ffplay.

Press Ctrl-C to stop playback.

Examples:
  subsearch play hello 1
  subsearch play hello 1 --from 500ms`,
	Args: cobra.ExactArgs(2),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(clipCmd)
	rootCmd.AddCommand(playCmd)

	for _, cmd := range []*cobra.Command{clipCmd, playCmd} {
		cmd.Flags().
			Duration("from", 0, "Start offset from the beginning of the line")
		cmd.Flags().
			Duration("to", 0, "End offset from the beginning of the line (default: end of line)")
	}
	clipCmd.Flags().
		StringP("output", "o", "", "Output file (default <word>-<result>.<clip format>)")
}

// absolute clip bounds for a cue narrowed by offsets from its start; a zero
// to means the end of the cue
func clipRange(cue subtitle.Cue, from, to time.Duration) (time.Duration, time.Duration, error) {
	length := cue.Duration()
	if to == 0 {
		to = length
	}
	if from < 0 || to > length || from >= to {
		return 0, 0, fmt.Errorf(
			"invalid range %v-%v for a line of %v",
			from,
			to,
			length,
		)
	}
	return cue.StartTime + from, cue.StartTime + to, nil
}

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// output path for a clip, adding the default container when none is given
func clipOutputPath(output, word string, n int, defaultFormat string) string {
	if output == "" {
		name := unsafeNameChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(word)), "_")
		if name == "" {
			name = "clip"
		}
		return fmt.Sprintf("%s-%d.%s", name, n, defaultFormat)
	}
	if filepath.Ext(output) == "" {
		return output + "." + defaultFormat
	}
	return output
}

type clipTarget struct {
	cue        subtitle.Cue
	start, end time.Duration
}

func resolveClipTarget(ctx context.Context, cmd *cobra.Command, args []string) (clipTarget, error) {
	word := args[0]
	n, err := parseResultNumber(args[1])
	if err != nil {
		return clipTarget{}, err
	}
	from, _ := cmd.Flags().GetDuration("from")
	to, _ := cmd.Flags().GetDuration("to")

	store, err := openLibrary(ctx)
	if err != nil {
		return clipTarget{}, err
	}
	defer store.Close()

	results, err := findResults(ctx, store, word)
	if err != nil {
		return clipTarget{}, err
	}
	cue, err := selectResult(results, n)
	if err != nil {
		return clipTarget{}, fmt.Errorf("%q: %w", word, err)
	}

	start, end, err := clipRange(cue, from, to)
	if err != nil {
		return clipTarget{}, err
	}
	return clipTarget{cue: cue, start: start, end: end}, nil
}

func runClip(cmd *cobra.Command, args []string) error {
	n, err := parseResultNumber(args[1])
	if err != nil {
		return err
	}
	outputFlag, _ := cmd.Flags().GetString("output")
	outputPath := clipOutputPath(outputFlag, args[0], n, cfg.Clip.Format)

	// reject an unknown container before touching the library or ffmpeg
	format, err := media.FormatForPath(outputPath)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	target, err := resolveClipTarget(ctx, cmd, args)
	if err != nil {
		return err
	}

	decoder, err := newDecoder()
	if err != nil {
		return err
	}

	logger.Infow("Exporting clip",
		"source", target.cue.Source,
		"start", target.start,
		"end", target.end,
		"output", outputPath,
		"format", format,
	)
	if _, err := decoder.Trim(ctx, media.TrimRequest{
		Input:      target.cue.Source,
		Start:      target.start,
		End:        target.end,
		Format:     format,
		OutputPath: outputPath,
	}); err != nil {
		return fmt.Errorf("failed to export clip: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Clip exported: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", cueindex.Format(target.cue))
	return nil
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	target, err := resolveClipTarget(ctx, cmd, args)
	if err != nil {
		return err
	}

	decoder, err := newDecoder()
	if err != nil {
		return err
	}

	logger.Infow("Loading audio segment",
		"source", target.cue.Source,
		"start", target.start,
		"end", target.end,
	)
	clip, err := decoder.Trim(ctx, media.TrimRequest{
		Input:  target.cue.Source,
		Start:  target.start,
		End:    target.end,
		Format: cfg.Clip.PlayFormat,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("failed to load audio: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Playing %s\n", cueindex.Format(target.cue))
	if err := decoder.Play(ctx, clip, cfg.Clip.PlayFormat); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(cmd.OutOrStdout(), "Playback stopped")
			return nil
		}
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}
