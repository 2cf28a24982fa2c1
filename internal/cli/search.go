package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/cueindex"
	"github.com/mgpai22/subsearch/internal/library"
	"github.com/mgpai22/subsearch/internal/subtitle"
)

var searchCmd = &cobra.Command{
	Use:   "search [word]",
	Short: "Find the subtitle lines containing a word",
	Long: `Search the loaded subtitles for lines containing a word.

Matching is on whole words and ignores case; hyphenated words match each of
their parts. The result numbers are used by the clip and play commands.

Examples:
  subsearch search hello
  subsearch search hello --plain
  subsearch search hello --copy 2`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().
		Bool("plain", false, "Print plain lines even on a terminal")
	searchCmd.Flags().
		Int("copy", 0, "Copy the formatted result with this number to the clipboard")
	searchCmd.Flags().
		IntP("limit", "n", 0, "Show at most this many results (0 = all)")
}

// runs the search against the library contents
func findResults(ctx context.Context, store *library.Store, word string) ([]subtitle.Cue, error) {
	collection, err := store.Cues(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debugw("Searching library",
		"word", word,
		"cues", collection.Len(),
	)
	return slices.Collect(collection.Search(word)), nil
}

// picks the 1-based result number n
func selectResult(results []subtitle.Cue, n int) (subtitle.Cue, error) {
	if len(results) == 0 {
		return subtitle.Cue{}, fmt.Errorf("no matches")
	}
	if n < 1 || n > len(results) {
		return subtitle.Cue{}, fmt.Errorf(
			"result %d out of range (1-%d)",
			n,
			len(results),
		)
	}
	return results[n-1], nil
}

func parseResultNumber(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid result number %q", arg)
	}
	return n, nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	word := args[0]
	plain, _ := cmd.Flags().GetBool("plain")
	copyN, _ := cmd.Flags().GetInt("copy")
	limit, _ := cmd.Flags().GetInt("limit")

	if strings.TrimSpace(word) == "" {
		return fmt.Errorf("search word must not be empty")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := findResults(ctx, store, word)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No matches for %q\n", word)
		return nil
	}

	shown := results
	if limit > 0 && limit < len(shown) {
		shown = shown[:limit]
	}

	if plain || !isTerminal(out) {
		writePlainResults(out, shown)
	} else {
		fmt.Fprintln(out, renderResults(shown))
	}
	if len(shown) < len(results) {
		fmt.Fprintf(out, "... %d more\n", len(results)-len(shown))
	}

	if copyN != 0 {
		cue, err := selectResult(results, copyN)
		if err != nil {
			return err
		}
		if err := clipboard.WriteAll(cueindex.Format(cue)); err != nil {
			return fmt.Errorf("failed to copy to clipboard: %w", err)
		}
		logger.Infow("Copied result to clipboard", "result", copyN)
	}

	return nil
}

func writePlainResults(w io.Writer, results []subtitle.Cue) {
	for i, cue := range results {
		fmt.Fprintf(w, "%d. %s\n", i+1, cueindex.Format(cue))
		fmt.Fprintf(w, "   %s\n", cue.Text)
	}
}

func renderResults(results []subtitle.Cue) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Start", "End", "Line", "Source"})

	for i, cue := range results {
		tw.AppendRow(table.Row{
			i + 1,
			fmt.Sprintf("%.3fs", cue.StartTime.Seconds()),
			fmt.Sprintf("%.3fs", cue.EndTime.Seconds()),
			cue.Text,
			cue.Source,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 60},
	})
	return tw.Render()
}
