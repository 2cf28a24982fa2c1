package cli

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/library"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List the media loaded into the library",
	Args:  cobra.NoArgs,
	RunE:  runLibrary,
}

var clearCmd = &cobra.Command{
	Use:   "clear [media_file]",
	Short: "Remove loaded subtitles from the library",
	Long: `Remove every loaded subtitle from the library, or only those loaded
from one media file.

Examples:
  subsearch clear
  subsearch clear episode1.mkv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(clearCmd)
}

func renderMedia(items []library.Media) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"ID", "File", "Lines", "Loaded"})

	total := 0
	for _, item := range items {
		id := item.ID
		if len(id) > 8 {
			id = id[:8]
		}
		tw.AppendRow(table.Row{
			id,
			item.Path,
			item.CueCount,
			humanize.Time(item.LoadedAt),
		})
		total += item.CueCount
	}
	tw.AppendFooter(table.Row{"", fmt.Sprintf("%d file(s)", len(items)), total, ""})

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	return tw.Render()
}

func runLibrary(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.Media(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintf(out, "Library is empty: %s\n", store.Path())
		return nil
	}
	fmt.Fprintln(out, renderMedia(items))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	store, err := openLibrary(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		if err := store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to clear library: %w", err)
		}
		fmt.Fprintln(out, "Library cleared")
		return nil
	}

	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("invalid path %q: %w", args[0], err)
	}
	removed, err := store.Remove(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", source, err)
	}
	if removed == 0 {
		return fmt.Errorf("%s is not in the library", source)
	}
	fmt.Fprintf(out, "Removed %s\n", source)
	return nil
}
