package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/forensicFODs/registry-analysis-tools/hive/extract"
	"github.com/forensicFODs/registry-analysis-tools/internal/config"
	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
	cfgFile string

	cfg = config.Default()

	// appFs is where hive files are read from. Tests swap in a memory fs.
	appFs afero.Fs = afero.NewOsFs()

	out io.Writer = os.Stdout
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hivescan",
		Short: "Recover forensic artifacts from Windows registry hives",
		Long: `hivescan reads Windows registry hive files as raw bytes and recovers
forensic artifacts (execution traces, USB devices, user activity, autoruns
and more) by pattern matching, without walking the hive structure. Damaged
and partial hives are scanned the same way as intact ones.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr at debug level")
	root.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	root.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	root.PersistentFlags().
		StringVar(&cfgFile, "config", "", "Config file (default ~/.hivescan/config.yaml)")

	root.AddCommand(
		newDetectCmd(),
		newScanCmd(),
		newStringsCmd(),
		newAnalyzeCmd(),
		newTimelineCmd(),
		newNarrateCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// setup loads configuration and starts logging before any command runs.
func setup(cmd *cobra.Command, _ []string) error {
	// config init may be pointed at a file that does not exist yet.
	path, required := cfgFile, cfgFile != "" && cmd.Name() != "init"
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}

	loaded, err := config.Load(path, required)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	if err := logger.Init(logger.Options{
		Enabled: cfg.Log.Enabled || verbose,
		Stderr:  verbose,
		Dir:     logDir(path),
		Level:   level,
	}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	logger.Debug("command started", "command", cmd.CommandPath(), "config", path)
	return nil
}

// logDir is log.dir, or a logs directory next to the config file.
func logDir(configPath string) string {
	if cfg.Log.Dir != "" {
		return cfg.Log.Dir
	}
	return filepath.Join(filepath.Dir(configPath), "logs")
}

func scanOptions() extract.Options {
	return extract.Options{
		MaxSeeds: cfg.Scan.MaxSeeds,
		Workers:  cfg.Scan.Workers,
	}
}

// parseHiveArg splits an optional TYPE= prefix off a hive argument, so
// "NTUSER=case/jdoe.dat" forces the hive type instead of detecting it.
func parseHiveArg(arg string) (string, types.HiveType) {
	if i := strings.Index(arg, "="); i > 0 {
		if t := types.ParseHiveType(arg[:i]); t != types.HiveUnknown {
			return arg[i+1:], t
		}
	}
	return arg, types.HiveUnknown
}

func readHive(path string) ([]byte, error) {
	data, err := afero.ReadFile(appFs, path)
	if err != nil {
		return nil, types.Wrap(types.ErrKindLoad, "read "+path, err)
	}
	return data, nil
}

func baseName(path string) string {
	return filepath.Base(path)
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(out, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
