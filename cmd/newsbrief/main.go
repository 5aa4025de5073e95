package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deusflow/newsbrief/internal/config"
	"github.com/deusflow/newsbrief/internal/logger"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/processor"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsbrief",
		Short: "Summarize and classify news articles",
		Long: `newsbrief reads RSS feeds, extracts article bodies, writes short extractive
summaries and files each article under a subgenre of its feed's main genre.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (overrides DEBUG)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format: text or json (overrides LOG_FORMAT)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newSummarizeCommand())

	return rootCmd
}

// loadConfig reads the environment, applies persistent flags and installs
// the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		cfg.Debug = true
	}
	if format, _ := cmd.Flags().GetString("log-format"); format != "" {
		cfg.LogFormat = format
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger.Init(cfg.Debug, cfg.LogFormat)
	return cfg, nil
}

func newProcessor(cfg *config.Config, eager bool) (*processor.Processor, error) {
	opts := []processor.Option{
		processor.WithMetrics(metrics.Global),
		processor.WithSummaryBand(cfg.SummaryMinWords, cfg.SummaryMaxWords),
	}
	if cfg.GenresDataPath != "" {
		opts = append(opts, processor.WithDataFile(cfg.GenresDataPath))
	}
	if eager {
		opts = append(opts, processor.WithEagerTraining())
	}
	return processor.New(opts...)
}
