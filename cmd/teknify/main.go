package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kelsos/teknify/internal/client"
	"github.com/kelsos/teknify/internal/config"
	"github.com/kelsos/teknify/internal/logger"
	"github.com/kelsos/teknify/internal/models"
	"github.com/kelsos/teknify/internal/orchestrator"
	"github.com/kelsos/teknify/internal/presenter"
	"github.com/kelsos/teknify/internal/storage"
	"github.com/kelsos/teknify/internal/tui"
	"github.com/kelsos/teknify/internal/utils"
)

// errUploadsFailed is returned when at least one file did not upload
var errUploadsFailed = errors.New("one or more uploads failed")

func main() {
	logger.Init()
	utils.LoadEnvironment()

	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errUploadsFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	var (
		concurrent string
		jsonOutput bool
		urlOutput  bool
		noHistory  bool
		timeout    int
	)

	rootCmd := &cobra.Command{
		Use:           "teknify [flags] FILE...",
		Short:         "Uploads files to u.teknik.io",
		Long:          `teknify uploads one or more files concurrently and prints the resulting URLs.`,
		Version:       "0.2.0",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("concurrent") {
				n, err := config.ParseConcurrency(concurrent)
				if err != nil {
					return err
				}
				cfg.Concurrency = n
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Timeout = time.Duration(timeout) * time.Second
			}
			switch {
			case jsonOutput:
				cfg.OutputMode = models.OutputJSON
			case urlOutput:
				cfg.OutputMode = models.OutputURLOnly
			}
			if noHistory {
				cfg.History = false
			}
			cfg.Files = args

			if err := cfg.Validate(); err != nil {
				return err
			}

			return runUploads(cfg)
		},
	}

	rootCmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Print extra information")
	rootCmd.Flags().StringVarP(&concurrent, "concurrent", "c", "",
		"Sets the number of concurrent uploads. The default is equal to the number of CPU processors of the current machine")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output full JSON reply rather than just image URL")
	rootCmd.Flags().BoolVarP(&urlOutput, "url", "u", false, "Output only the URL")
	rootCmd.Flags().StringVarP(&cfg.Endpoint, "endpoint", "e", cfg.Endpoint, "Upload endpoint URL")
	rootCmd.Flags().IntVarP(&timeout, "timeout", "t", 0, "Per-upload timeout in seconds (0 disables)")
	rootCmd.Flags().StringVarP(&cfg.ProxyAddr, "proxy", "", cfg.ProxyAddr, "SOCKS5 proxy address (host:port or socks5://host:port)")
	rootCmd.Flags().BoolVarP(&cfg.Progress, "progress", "p", false, "Show a live progress view while uploading")
	rootCmd.Flags().BoolVarP(&noHistory, "no-history", "", false, "Do not record successful uploads in the history file")
	rootCmd.Flags().Lookup("concurrent").DefValue = fmt.Sprintf("%d", cfg.Concurrency)
	rootCmd.MarkFlagsMutuallyExclusive("json", "url")

	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runUploads(cfg *config.Config) error {
	if cfg.Verbose {
		logger.SetLevel(zerolog.InfoLevel)
	}

	uploadClient, err := client.NewUploadClient(cfg)
	if err != nil {
		return err
	}

	out := presenter.New(os.Stdout, os.Stderr, cfg.Verbose)
	out.Header(cfg.Concurrency)
	logger.Info("Uploading %d files to %s", len(cfg.Files), uploadClient.Endpoint())

	var outcomes []models.TaskOutcome
	if cfg.Progress {
		outcomes, err = runWithMonitor(cfg, uploadClient)
		if err != nil {
			logger.Error("%v", err)
		}
		for _, outcome := range outcomes {
			out.Present(outcome)
		}
	} else {
		pool := orchestrator.New(cfg.Concurrency, cfg.OutputMode, uploadClient, out)
		outcomes = pool.Run(context.Background(), cfg.Files)
	}

	if cfg.History {
		recordHistory(outcomes)
	}

	summary := models.Summarize(outcomes)
	out.Summary(summary)
	if summary.Failed() > 0 {
		return errUploadsFailed
	}
	return nil
}

func runWithMonitor(cfg *config.Config, uploadClient *client.UploadClient) ([]models.TaskOutcome, error) {
	logPath, err := logger.InitFileOnly()
	if err != nil {
		logger.Warn("Failed to initialize file logging: %v", err)
		logPath = ""
	} else {
		defer logger.Close()
	}

	monitor := tui.NewUploadMonitor(logPath)
	monitor.Start()
	pool := orchestrator.New(cfg.Concurrency, cfg.OutputMode, uploadClient, monitor)

	outcomes, err := monitor.Run(cfg.Files, func() []models.TaskOutcome {
		return pool.Run(context.Background(), cfg.Files)
	})

	logger.SetOutput(os.Stderr)
	return outcomes, err
}

func recordHistory(outcomes []models.TaskOutcome) {
	path, err := storage.GetHistoryFilePath()
	if err != nil {
		logger.Warn("Skipping upload history: %v", err)
		return
	}

	now := time.Now().UTC()
	var entries []models.HistoryEntry
	for _, outcome := range outcomes {
		if outcome.Kind == models.OutcomeSuccess && outcome.URL != "" {
			entries = append(entries, models.HistoryEntry{Path: outcome.Path, URL: outcome.URL, UploadedAt: now})
		}
	}

	if err := storage.NewHistory(path).Append(entries...); err != nil {
		logger.Warn("Failed to record upload history: %v", err)
	}
}
