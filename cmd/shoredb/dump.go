package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dyuri/shoredb/internal/model"
	"github.com/dyuri/shoredb/internal/text"
	"github.com/dyuri/shoredb/pkg/shoredb"
)

// dump command
var dumpCmd = &cobra.Command{
	Use:   "dump <db.b> <level|all>",
	Short: "Print polygons of one level as lon/lat text",
	Long: `Print the points of every polygon at the given level as lon<TAB>lat
lines in degrees, unwrapped across the antimeridian.

With -M every polygon is preceded by a '>' header line; that output can be
read back with import.`,
	Args: cobra.ExactArgs(2),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().BoolP("multi", "M", false, "Multi-segment output with '>' headers")
	dumpCmd.Flags().Int("id", 0, "Dump only this polygon id")
	dumpCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
}

func runDump(cmd *cobra.Command, args []string) error {
	multi, _ := cmd.Flags().GetBool("multi")
	outputPath, _ := cmd.Flags().GetString("output")
	id, _ := cmd.Flags().GetInt("id")
	byID := cmd.Flags().Changed("id")

	level := -1
	if args[1] != "all" {
		l, err := intArg(args[1], "level")
		if err != nil {
			return err
		}
		level = l
	}

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	out, closeOut, err := createOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	w := text.NewWriter(out, multi)
	dumped := 0
	for i, e := range db.Catalog().Entries {
		if level >= 0 && e.Header.Level != level {
			continue
		}
		if byID && e.Header.ID != id {
			continue
		}
		p, err := db.PolygonAt(i)
		if err != nil {
			return err
		}
		if err := w.WritePolygon(p); err != nil {
			return err
		}
		dumped++
	}
	if err := w.Flush(); err != nil {
		return model.Errorf(model.CodeIO, err, "write output")
	}

	if byID && dumped == 0 {
		return model.Errorf(model.CodeNotFound, nil, "polygon %d not found at level %s", id, args[1])
	}
	runLog.WithField("polygons", dumped).Debug("dump finished")
	return nil
}

// extract command
var extractCmd = &cobra.Command{
	Use:   "extract <db.b> <id>...",
	Short: "Write selected polygons to one text file each",
	Long: `Write each requested polygon to <dir>/<id>.txt in multi-segment
lon/lat text. The first missing id aborts the run; files already written
are kept.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", ".", "Output directory")
}

func runExtract(cmd *cobra.Command, args []string) error {
	outputDir, _ := cmd.Flags().GetString("output")

	ids := make([]int, 0, len(args)-1)
	for _, a := range args[1:] {
		id, err := intArg(a, "id")
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return model.Errorf(model.CodeIO, err, "create output directory")
	}

	for _, id := range ids {
		p, err := db.Polygon(id)
		if err != nil {
			return err
		}
		path := filepath.Join(outputDir, strconv.Itoa(id)+".txt")
		if err := writeTextFile(path, p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%d points)\n", path, p.Header.N)
	}
	return nil
}

func writeTextFile(path string, p *shoredb.Polygon) error {
	f, err := os.Create(path)
	if err != nil {
		return model.Errorf(model.CodeIO, err, "create %s", path)
	}
	w := text.NewWriter(f, true)
	if err := w.WritePolygon(p); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return model.Errorf(model.CodeIO, err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return model.Errorf(model.CodeIO, err, "close %s", path)
	}
	return nil
}
