package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dyuri/shoredb/internal/dupcheck"
	"github.com/dyuri/shoredb/internal/model"
	"github.com/dyuri/shoredb/pkg/shoredb"
)

// checkarea command
var checkareaCmd = &cobra.Command{
	Use:   "checkarea <db.b> [start_id]",
	Short: "Report likely duplicate polygons",
	Long: `Compare every polygon with every later polygon whose bounding box
overlaps it and report pairs with similar area and nearby centroids.

Each report line names the suspect (dup) and the polygon treated as
authoritative (other): the lower level, or the first in the file when the
levels are equal. Nothing is changed; every pair needs a human decision.
With start_id the scan resumes at that polygon.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCheckarea,
}

func init() {
	checkareaCmd.Flags().Float64("min-ratio", 0, "Smallest area ratio reported (default from config, 0.5)")
}

// progressEvery is how often progress is logged at info level.
const progressEvery = 1000

func runCheckarea(cmd *cobra.Command, args []string) error {
	minRatio := cfg.Check.MinAreaRatio
	if cmd.Flags().Changed("min-ratio") {
		minRatio, _ = cmd.Flags().GetFloat64("min-ratio")
	}
	if minRatio <= 0 || minRatio > 1 {
		return model.Errorf(model.CodeInvalidArgument, nil, "min-ratio must be in (0, 1], got %v", minRatio)
	}

	opts := dupcheck.Options{MinRatio: minRatio}
	if len(args) == 2 {
		start, err := intArg(args[1], "start_id")
		if err != nil {
			return err
		}
		opts.Resume = true
		opts.StartID = start
	}
	opts.Progress = func(done, total, id int) {
		entry := runLog.WithFields(logrus.Fields{"id": id, "done": done, "total": total})
		if done%progressEvery == 0 {
			entry.Info("checking polygon")
		} else {
			entry.Debug("checking polygon")
		}
	}

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	cat := db.Catalog()
	for _, i := range cat.Spatial().Skipped() {
		h := &cat.Entries[i].Header
		runLog.WithFields(logrus.Fields{"id": h.ID, "west": h.West, "east": h.East, "south": h.South, "north": h.North}).
			Warn("inverted bounding box, polygon not checked")
	}

	pairs, err := dupcheck.New(cat, db.ReaderAt(), opts).Run()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	exact := 0
	for _, p := range pairs {
		if p.Class == dupcheck.Exact {
			exact++
		}
		fmt.Fprintf(out, "%s dup=%d other=%d ratio=%.4f n=%d/%d dist=%.0f\n",
			p.Class, p.Dup.ID, p.Other.ID, p.Ratio, p.Dup.N, p.Other.N, p.Distance)
		if verbose(cmd) {
			fmt.Fprintf(out, "  levels %d/%d, areas %.3f/%.3f km², radius %.0f m\n",
				p.Dup.Level, p.Other.Level, p.Dup.Area, p.Other.Area, p.Radius)
		}
	}
	printer.Fprintf(out, "%d pairs flagged (%d exact) among %d polygons\n", len(pairs), exact, db.Len())
	return nil
}
