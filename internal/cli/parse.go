package cli

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subsearch/internal/subtitle"
)

var parseCmd = &cobra.Command{
	Use:   "parse [vtt_file]",
	Short: "Print the cues parsed from a WebVTT file",
	Long: `Parse a WebVTT file the way load does and print the resulting cues.

Consecutive cues repeating the same line are merged. Use "-" to read from
standard input.

Examples:
  subsearch parse movie.vtt
  ffmpeg -i movie.mkv -map 0:s:0 -f webvtt - | subsearch parse -
  subsearch parse movie.vtt --output yaml
  subsearch parse movie.vtt -o vtt > clean.vtt`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().
		StringP("output", "o", "text", "Output format (text, yaml, vtt)")
}

// yaml shape of a parsed cue
type cueRecord struct {
	Start   string `yaml:"start"`
	End     string `yaml:"end"`
	StartMS int64  `yaml:"start_ms"`
	EndMS   int64  `yaml:"end_ms"`
	Text    string `yaml:"text"`
}

func writeCues(w io.Writer, cues []subtitle.Cue, format string) error {
	switch format {
	case "text":
		for _, cue := range cues {
			if _, err := fmt.Fprintf(w, "%s --> %s  %s\n",
				subtitle.FormatTimestamp(cue.StartTime),
				subtitle.FormatTimestamp(cue.EndTime),
				cue.Text,
			); err != nil {
				return err
			}
		}
		return nil
	case "yaml":
		records := make([]cueRecord, len(cues))
		for i, cue := range cues {
			records[i] = cueRecord{
				Start:   subtitle.FormatTimestamp(cue.StartTime),
				End:     subtitle.FormatTimestamp(cue.EndTime),
				StartMS: cue.StartTime.Milliseconds(),
				EndMS:   cue.EndTime.Milliseconds(),
				Text:    cue.Text,
			}
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case "vtt":
		return subtitle.WriteVTT(w, cues)
	default:
		return fmt.Errorf("unsupported format %q: use text, yaml, or vtt", format)
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	input := args[0]
	format, _ := cmd.Flags().GetString("output")
	format = strings.ToLower(format)

	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	warnings := 0
	warn := warnTo(logger, input)
	cues := slices.Collect(subtitle.ParseVTT(string(data), func(w subtitle.Warning) {
		warnings++
		warn(w)
	}))

	if err := writeCues(cmd.OutOrStdout(), cues, format); err != nil {
		return err
	}

	logger.Infow("Parsed subtitles",
		"cues", len(cues),
		"warnings", warnings,
	)
	return nil
}
