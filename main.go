package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/dhcgn/pst-exporter/config"
	"github.com/dhcgn/pst-exporter/mailstore"
	"github.com/dhcgn/pst-exporter/runner"
	"github.com/dhcgn/pst-exporter/stats"
	"github.com/dhcgn/pst-exporter/traverse"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pst-exporter",
		Short: "Extract emails from PST/OST archives into EML and PDF files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}

			logger, cleanup, err := setupLogger(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting pst-exporter", "input", cfg.InputPath, "output", cfg.OutputDir, "format", cfg.Format, "dryRun", cfg.DryRun)

			return run(cfg, logger)
		},
	}

	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(scanCmd(), statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	r, err := runner.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("runner.New: %w", err)
	}

	summary, _, err := r.Run()
	if err != nil {
		return err
	}

	fmt.Printf("Successfully processed %d/%d emails\n", summary.Processed(), summary.Discovered)
	return nil
}

// scanCmd lists PST/OST archives found under a directory.
func scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [dir]",
		Short: "List PST/OST archives in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.DefaultArchiveDir
			if len(args) == 1 {
				dir = args[0]
			}

			archives, err := config.DiscoverArchives(dir)
			if err != nil {
				return err
			}

			if len(archives) == 0 {
				pterm.Info.Printf("No PST/OST files found in %q\n", dir)
				return nil
			}

			pterm.Info.Printf("Found %d PST/OST files in %q:\n", len(archives), dir)
			for i, archive := range archives {
				pterm.Printf("  [%d] %s\n", i+1, archive)
			}
			return nil
		},
	}
}

// statsCmd traverses an archive without exporting and prints the folders
// holding the most messages.
func statsCmd() *cobra.Command {
	var input string
	var topN int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Analyse an archive and show per-folder message counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.ValidateArchivePath(input); err != nil {
				return err
			}

			store, err := mailstore.Open(input)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			root, err := store.RootFolder()
			if err != nil {
				return err
			}
			items, err := traverse.Extract(root)
			if err != nil {
				return err
			}

			fmt.Printf("Analyzing archive: %s\n", input)
			fmt.Printf("Total messages: %d\n\n", len(items))
			fmt.Printf("Top folders by message count:\n")
			stats.PrettyPrintTop(stats.CountByFolder(items), topN)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Path to the .pst/.ost file to analyse")
	cmd.Flags().IntVar(&topN, "top", 10, "Number of folders to show")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func setupLogger(cfg config.Config) (*slog.Logger, func() error, error) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)

	switch cfg.LogLevel {
	case "debug":
		level.Set(slog.LevelDebug)
	case "info":
		level.Set(slog.LevelInfo)
	case "warn":
		level.Set(slog.LevelWarn)
	case "error":
		level.Set(slog.LevelError)
	}

	opts := &slog.HandlerOptions{Level: level}
	cleanup := func() error { return nil }

	if cfg.LogDir != "" {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return nil, cleanup, err
		}

		logFilePath := filepath.Join(cfg.LogDir, fmt.Sprintf("pst-exporter-%s.log", time.Now().Format("20060102T150405")))
		file, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, cleanup, err
		}

		handler := slog.NewTextHandler(io.MultiWriter(os.Stdout, file), opts)
		cleanup = func() error {
			return file.Close()
		}
		return slog.New(handler), cleanup, nil
	}

	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler), cleanup, nil
}
