package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyuri/shoredb/internal/model"
	"github.com/dyuri/shoredb/pkg/shoredb"
)

// line_shrink command
var shrinkCmd = &cobra.Command{
	Use:     "line_shrink <in.b> <tolerance_km|none> <out.b>",
	Aliases: []string{"shrink"},
	Short:   "Simplify every polygon with Douglas-Peucker",
	Long: `Simplify every polygon of a database and write the result to a new file.

Points within tolerance_km of the simplified outline are dropped. Polygons
reduced to a single point are dropped entirely and counted as lost. The
header of every written polygon gets its point count, bounding box, area
and area resolution recomputed. "none" copies all points unchanged.`,
	Args: cobra.ExactArgs(3),
	RunE: runShrink,
}

func runShrink(cmd *cobra.Command, args []string) error {
	tol, err := shoredb.ParseTolerance(args[1])
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	out, err := createFile(args[0], args[2])
	if err != nil {
		return err
	}
	defer out.Close()

	stdout := cmd.OutOrStdout()
	perPolygon := verbose(cmd)
	stats, err := shoredb.Shrink(in, out, tol, func(r shoredb.ShrinkResult) {
		switch {
		case r.Lost:
			runLog.WithField("id", r.ID).Debug("polygon lost")
			if perPolygon {
				fmt.Fprintf(stdout, "Polygon %d: %d points, lost\n", r.ID, r.Before)
			}
		case perPolygon:
			fmt.Fprintf(stdout, "Polygon %d: %d -> %d points (%.1f%% removed)\n", r.ID, r.Before, r.After, r.Reduction())
		}
	})
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return model.Errorf(model.CodeIO, err, "close output file")
	}

	printer.Fprintf(stdout, "%s: %d polygons, %d written, %d lost\n", tol, stats.Polygons, stats.Written, stats.Lost)
	printer.Fprintf(stdout, "Points: %d -> %d (%.1f%% removed)\n", stats.PointsIn, stats.PointsOut, stats.Reduction())
	return nil
}
