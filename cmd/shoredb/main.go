package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dyuri/shoredb/internal/config"
	"github.com/dyuri/shoredb/internal/logger"
	"github.com/dyuri/shoredb/internal/model"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	cfg    = config.Defaults()
	runLog = logrus.NewEntry(logger.L())
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "shoredb",
	Short: "Build, inspect, simplify and edit shoreline polygon databases",
	Long: `shoredb is a tool for working with binary shoreline polygon databases.

It dumps and extracts polygons as lon/lat text, simplifies whole files with
Douglas-Peucker, edits polygon levels and containment links, flags likely
duplicate polygons and validates stored areas, bounding boxes and winding.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default: $SHOREDB_CONFIG or ./shoredb.toml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output and debug logging")

	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(shrinkCmd)
	rootCmd.AddCommand(fixlevelCmd)
	rootCmd.AddCommand(reparentCmd)
	rootCmd.AddCommand(checkareaCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(segdumpCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads .env and the config file and configures logging.
func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("SHOREDB_CONFIG")
	}
	if path == "" {
		path = config.DefaultPath
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = c

	runLog = logger.Setup(cfg.Log.Level, cfg.Log.Format, verbose(cmd)).WithFields(logrus.Fields{
		"cmd": cmd.Name(),
		"run": uuid.NewString(),
	})
	runLog.WithField("config", path).Debug("configured")
	return nil
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}

// printer formats report numbers with digit grouping.
var printer = message.NewPrinter(language.English)

// exitCode maps an error to the process exit status. Zero is never returned.
func exitCode(err error) int {
	switch model.CodeOf(err) {
	case model.CodeNotFound:
		return 2
	case model.CodeInvalidArgument:
		return 3
	case model.CodeCorruptHeader, model.CodeTruncatedFile, model.CodeTruncatedPointArray:
		return 4
	case model.CodeIO:
		return 5
	case model.CodeInvariantViolation:
		return 6
	default:
		return 1
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shoredb version %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", commit)
		fmt.Fprintf(cmd.OutOrStdout(), "built: %s\n", date)
	},
}
