package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subsearch/internal/config"
	"github.com/mgpai22/subsearch/internal/logging"
)

var (
	verbose     bool
	configPath  string
	libraryPath string
	logger      *logging.Logger
	cfg         *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subsearch",
	Short: "Find spoken lines in videos by searching their subtitles",
	Long: `Subsearch indexes the embedded subtitles of video files and finds the
lines where a word is spoken.

Matching lines can be exported as audio clips or played back directly.
Loaded subtitles are kept in a local library until cleared.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.NewLogger(verbose)

		loaded, exists, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if libraryPath != "" {
			abs, err := filepath.Abs(libraryPath)
			if err != nil {
				return fmt.Errorf("invalid library path: %w", err)
			}
			loaded.Library.Path = abs
		}
		cfg = loaded

		logger.Debugw("Loaded configuration",
			"config_file_found", exists,
			"library", cfg.Library.Path,
		)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default ~/.config/subsearch/config.toml)")
	rootCmd.PersistentFlags().
		StringVar(&libraryPath, "library", "", "Library database path (overrides config)")
}
