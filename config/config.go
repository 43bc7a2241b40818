package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// Export formats accepted by --format.
const (
	FormatEML  = "eml"
	FormatPDF  = "pdf"
	FormatBoth = "both"
)

// DefaultArchiveDir is where the scan subcommand looks for archives when
// no directory is given.
const DefaultArchiveDir = "pst_files"

// Config captures all command-line options required to run the exporter.
type Config struct {
	InputPath      string
	OutputDir      string
	Format         string
	DryRun         bool
	Verbose        bool
	LogLevel       string
	LogDir         string
	IncludeSubject []string
	IncludeFolder  []string
	IncludeBody    []string
	ExcludeSubject []string
	ExcludeFolder  []string
	ExcludeBody    []string
}

// WantEML reports whether EML output is requested.
func (c Config) WantEML() bool {
	return c.Format == FormatEML || c.Format == FormatBoth
}

// WantPDF reports whether PDF output is requested.
func (c Config) WantPDF() bool {
	return c.Format == FormatPDF || c.Format == FormatBoth
}

// RegisterFlags attaches all CLI flags to the provided command.
func RegisterFlags(cmd *cobra.Command) error {
	flags := cmd.Flags()
	flags.StringP("input", "i", "", "Path to the .pst/.ost file to export")
	flags.StringP("output", "o", "output", "Output directory for extracted emails")
	flags.StringP("format", "f", FormatEML, "Output format: eml, pdf or both")
	flags.Bool("dry-run", false, "Preview the files that would be created without writing anything")
	flags.BoolP("verbose", "v", false, "Enable verbose output (log level debug)")
	flags.String("log-level", "info", "Logging level: debug, info, warn, error")
	flags.String("log-dir", "", "Directory for log files (stdout only when empty)")
	flags.StringArray("include-subject", nil, "Regex allow-list applied to message subjects (mutually exclusive with exclude flags)")
	flags.StringArray("include-folder", nil, "Regex allow-list applied to folder paths (mutually exclusive with exclude flags)")
	flags.StringArray("include-body", nil, "Regex allow-list applied to message bodies (mutually exclusive with exclude flags)")
	flags.StringArray("exclude-subject", nil, "Regex block-list applied to message subjects (mutually exclusive with include flags)")
	flags.StringArray("exclude-folder", nil, "Regex block-list applied to folder paths (mutually exclusive with include flags)")
	flags.StringArray("exclude-body", nil, "Regex block-list applied to message bodies (mutually exclusive with include flags)")

	return cmd.MarkFlagRequired("input")
}

// LoadConfig converts the parsed Cobra flags into a Config struct with
// validation.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	inputPath, err := flags.GetString("input")
	if err != nil {
		return Config{}, err
	}
	outputDir, err := flags.GetString("output")
	if err != nil {
		return Config{}, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return Config{}, err
	}
	dryRun, err := flags.GetBool("dry-run")
	if err != nil {
		return Config{}, err
	}
	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return Config{}, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return Config{}, err
	}
	logDir, err := flags.GetString("log-dir")
	if err != nil {
		return Config{}, err
	}
	includeSubject, err := flags.GetStringArray("include-subject")
	if err != nil {
		return Config{}, err
	}
	includeFolder, err := flags.GetStringArray("include-folder")
	if err != nil {
		return Config{}, err
	}
	includeBody, err := flags.GetStringArray("include-body")
	if err != nil {
		return Config{}, err
	}
	excludeSubject, err := flags.GetStringArray("exclude-subject")
	if err != nil {
		return Config{}, err
	}
	excludeFolder, err := flags.GetStringArray("exclude-folder")
	if err != nil {
		return Config{}, err
	}
	excludeBody, err := flags.GetStringArray("exclude-body")
	if err != nil {
		return Config{}, err
	}

	logLevel = strings.ToLower(logLevel)
	if logLevel == "warning" {
		logLevel = "warn"
	}
	if verbose {
		logLevel = "debug"
	}

	cfg := Config{
		InputPath:      inputPath,
		OutputDir:      filepath.Clean(outputDir),
		Format:         strings.ToLower(format),
		DryRun:         dryRun,
		Verbose:        verbose,
		LogLevel:       logLevel,
		LogDir:         logDir,
		IncludeSubject: includeSubject,
		IncludeFolder:  includeFolder,
		IncludeBody:    includeBody,
		ExcludeSubject: excludeSubject,
		ExcludeFolder:  excludeFolder,
		ExcludeBody:    excludeBody,
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func validateConfig(cfg Config) error {
	if cfg.InputPath == "" {
		return fmt.Errorf("--input is required")
	}
	if err := ValidateArchivePath(cfg.InputPath); err != nil {
		return err
	}
	if cfg.OutputDir == "" {
		return fmt.Errorf("--output must not be empty")
	}

	switch cfg.Format {
	case FormatEML, FormatPDF, FormatBoth:
	default:
		return fmt.Errorf("invalid --format: %s (want eml, pdf or both)", cfg.Format)
	}

	includeActive := len(cfg.IncludeSubject) > 0 || len(cfg.IncludeFolder) > 0 || len(cfg.IncludeBody) > 0
	excludeActive := len(cfg.ExcludeSubject) > 0 || len(cfg.ExcludeFolder) > 0 || len(cfg.ExcludeBody) > 0
	if includeActive && excludeActive {
		return fmt.Errorf("include and exclude flags are mutually exclusive")
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid --log-level: %s", cfg.LogLevel)
	}

	return nil
}

// ValidateArchivePath checks that path exists and carries a .pst or .ost
// extension (case-insensitive). Both conditions are fatal setup errors.
func ValidateArchivePath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file %q: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pst", ".ost":
		return nil
	default:
		return fmt.Errorf("input file %q is not a .pst/.ost archive", path)
	}
}

// DiscoverArchives lists the .pst/.ost files under dir, sorted by path.
// A missing directory is created and yields an empty list.
func DiscoverArchives(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive directory %s: %w", dir, err)
		}
		return nil, nil
	}

	var archives []string
	for _, pattern := range []string{"*.pst", "*.ost"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		archives = append(archives, matches...)
	}
	sort.Strings(archives)
	return archives, nil
}
