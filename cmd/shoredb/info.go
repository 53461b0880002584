package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyuri/shoredb/pkg/shoredb"
)

// info command
var infoCmd = &cobra.Command{
	Use:   "info <db.b>",
	Short: "Display database information",
	Long: `Display summary information about a polygon database: file size,
polygon and point counts per level and polygons crossing the antimeridian.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	infoCmd.Flags().Bool("json", false, "Output as JSON")
	infoCmd.Flags().Bool("brief", false, "Show only summary")
}

type levelStats struct {
	Level    int `json:"level"`
	Polygons int `json:"polygons"`
	Points   int `json:"points"`
}

type dbInfo struct {
	File       string       `json:"file"`
	FileSize   int64        `json:"fileSize"`
	Polygons   int          `json:"polygons"`
	Points     int          `json:"points"`
	Greenwich  int          `json:"greenwich"`
	Duplicates []int        `json:"duplicateIds,omitempty"`
	Levels     []levelStats `json:"levels"`
}

func collectInfo(db *shoredb.DB) *dbInfo {
	info := &dbInfo{File: db.Path, FileSize: db.Size(), Polygons: db.Len()}
	byLevel := make(map[int]*levelStats)
	for _, e := range db.Catalog().Entries {
		h := &e.Header
		info.Points += h.N
		if h.CrossesGreenwich() {
			info.Greenwich++
		}
		ls, ok := byLevel[h.Level]
		if !ok {
			ls = &levelStats{Level: h.Level}
			byLevel[h.Level] = ls
		}
		ls.Polygons++
		ls.Points += h.N
	}
	for _, ls := range byLevel {
		info.Levels = append(info.Levels, *ls)
	}
	sort.Slice(info.Levels, func(i, j int) bool { return info.Levels[i].Level < info.Levels[j].Level })
	info.Duplicates = db.Catalog().DuplicateIDs()
	return info
}

func runInfo(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	brief, _ := cmd.Flags().GetBool("brief")

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	info := collectInfo(db)
	out := cmd.OutOrStdout()

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	}
	outputInfoText(out, info, brief)
	return nil
}

func outputInfoText(w io.Writer, info *dbInfo, brief bool) {
	if brief {
		printer.Fprintf(w, "%s: Polygons=%d Points=%d Levels=%d\n", info.File, info.Polygons, info.Points, len(info.Levels))
		return
	}

	fmt.Fprintf(w, "Database: %s\n", info.File)
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)
	printer.Fprintf(w, "  Polygons:         %d\n", info.Polygons)
	printer.Fprintf(w, "  Points:           %d\n", info.Points)
	printer.Fprintf(w, "  Antimeridian:     %d polygons\n", info.Greenwich)
	if len(info.Duplicates) > 0 {
		fmt.Fprintf(w, "  Duplicate ids:    %v\n", info.Duplicates)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Levels:")
	for _, ls := range info.Levels {
		printer.Fprintf(w, "  %d: %d polygons, %d points\n", ls.Level, ls.Polygons, ls.Points)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "File Size:          %s (%d bytes)\n", formatBytes(info.FileSize), info.FileSize)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// list command
var listCmd = &cobra.Command{
	Use:   "list <db.b>",
	Short: "List catalog entries",
	Long: `Print one line per polygon in file order: id, point count, level,
bounding box, area, parent, ancestor and the byte offset of its points.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().Int("level", -1, "Only list polygons at this level")
}

func runList(cmd *cobra.Command, args []string) error {
	level, _ := cmd.Flags().GetInt("level")

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%8s %8s %5s %11s %11s %10s %10s %14s %8s %8s %10s\n",
		"id", "n", "level", "west", "east", "south", "north", "area", "parent", "ancestor", "offset")
	for _, e := range db.Catalog().Entries {
		h := &e.Header
		if level >= 0 && h.Level != level {
			continue
		}
		fmt.Fprintf(out, "%8d %8d %5d %11.6f %11.6f %10.6f %10.6f %14.3f %8d %8d %10d\n",
			h.ID, h.N, h.Level, h.West, h.East, h.South, h.North, h.Area, h.Parent, h.Ancestor, e.Offset)
	}
	return nil
}

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <db.b>",
	Short: "Validate database structure and geometry",
	Long: `Validate a polygon database.

Checks for duplicate ids, points outside the stored bounding box, winding
that contradicts the level, dangling parent/ancestor links and stored areas
that disagree with the recomputed area.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings (default from config)")
	validateCmd.Flags().Float64("area-tolerance", 0, "Relative area tolerance (default from config, 0.02)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	strict := cfg.Check.Strict
	if cmd.Flags().Changed("strict") {
		strict, _ = cmd.Flags().GetBool("strict")
	}
	tolerance := cfg.Check.AreaTolerance
	if cmd.Flags().Changed("area-tolerance") {
		tolerance, _ = cmd.Flags().GetFloat64("area-tolerance")
	}

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := shoredb.Validate(db, shoredb.ValidateOptions{AreaTolerance: tolerance})
	if err != nil {
		return err
	}

	printResults(cmd.OutOrStdout(), args[0], report, strict)
	return report.Err(strict)
}

func printResults(w io.Writer, file string, r *shoredb.Report, strict bool) {
	fmt.Fprintf(w, "Validating: %s\n", file)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(w, "✓ Valid database - no issues found")
		return
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(r.Errors))
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  ✗ %s\n", e)
		}
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(r.Warnings))
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(w)
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "Validation failed: %d error(s)", len(r.Errors))
		if len(r.Warnings) > 0 {
			fmt.Fprintf(w, ", %d warning(s)", len(r.Warnings))
		}
		fmt.Fprintln(w)
	} else if strict {
		fmt.Fprintf(w, "Validation failed: %d warning(s) in strict mode\n", len(r.Warnings))
		fmt.Fprintln(w, "(use without --strict to ignore warnings)")
	} else {
		fmt.Fprintf(w, "Validation passed with %d warning(s)\n", len(r.Warnings))
	}
}
