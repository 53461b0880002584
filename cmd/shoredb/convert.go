package main

import (
	"bufio"
	stdbinary "encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"github.com/dyuri/shoredb/internal/binary"
	"github.com/dyuri/shoredb/internal/geometry"
	"github.com/dyuri/shoredb/internal/model"
	"github.com/dyuri/shoredb/internal/text"
	"github.com/dyuri/shoredb/pkg/shoredb"
)

// import command
var importCmd = &cobra.Command{
	Use:   "import <input.txt>",
	Short: "Build a polygon database from lon/lat text",
	Long: `Convert multi-segment lon/lat text to a polygon database.

Every polygon starts with a '>' line of key=value pairs (id is required;
level, source, parent and ancestor are optional) followed by lon lat rows
in degrees. Bounding boxes, areas and antimeridian handling are computed;
rings are reversed where their winding does not match their level. Use "-"
to read stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringP("output", "o", "", "Output file (required)")
	importCmd.MarkFlagRequired("output")
}

func runImport(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")

	in, closeIn, err := openInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	out, err := createFile(args[0], outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := shoredb.ImportText(in, out)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return model.Errorf(model.CodeIO, err, "close output file")
	}
	printer.Fprintf(cmd.OutOrStdout(), "Imported %d polygons to %s\n", n, outputPath)
	return nil
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export <db.b>",
	Short: "Export polygons as GeoJSON",
	Long: `Export polygons as a GeoJSON FeatureCollection with header fields as
feature properties. Coordinates are unwrapped across the antimeridian.
Output names ending in .gz are gzip-compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	exportCmd.Flags().Int("level", -1, "Only export polygons at this level")
}

func runExport(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	level, _ := cmd.Flags().GetInt("level")

	db, err := shoredb.Open(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	fc := geojson.NewFeatureCollection()
	err = db.Each(func(p *shoredb.Polygon) error {
		if level >= 0 && p.Header.Level != level {
			return nil
		}
		fc.Append(polygonFeature(p))
		return nil
	})
	if err != nil {
		return err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal GeoJSON: %w", err)
	}

	out, closeOut, err := createOutput(outputPath, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut()

	w := out
	var zw *gzip.Writer
	if strings.HasSuffix(outputPath, ".gz") {
		zw = gzip.NewWriter(out)
		w = zw
	}
	if _, err := w.Write(data); err != nil {
		return model.Errorf(model.CodeIO, err, "write GeoJSON")
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return model.Errorf(model.CodeIO, err, "finish gzip stream")
		}
	}
	if err := closeOut(); err != nil {
		return model.Errorf(model.CodeIO, err, "close output file")
	}
	runLog.WithField("features", len(fc.Features)).Debug("export finished")
	return nil
}

// polygonFeature converts a polygon to a closed GeoJSON ring.
func polygonFeature(p *shoredb.Polygon) *geojson.Feature {
	ring := geometry.Ring(p.Header.Unwrap(p.Points))
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	f := geojson.NewFeature(orb.Polygon{ring})
	f.ID = p.Header.ID
	f.Properties["id"] = p.Header.ID
	f.Properties["level"] = p.Header.Level
	f.Properties["source"] = p.Header.Source
	f.Properties["parent"] = p.Header.Parent
	f.Properties["ancestor"] = p.Header.Ancestor
	f.Properties["area"] = p.Header.Area
	f.Properties["area_res"] = p.Header.AreaRes
	return f
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate <legacy.b>",
	Short: "Convert a legacy native-layout file",
	Long: `Convert a file in the legacy layout (no preamble, host byte order)
to the current format, or back with --to-legacy. Use --segments for raw
segment files.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringP("output", "o", "", "Output file (required)")
	migrateCmd.Flags().String("byte-order", "little", "Byte order of the legacy file: little, big")
	migrateCmd.Flags().Bool("segments", false, "Input holds raw segments instead of polygons")
	migrateCmd.Flags().Bool("to-legacy", false, "Convert a current file to the legacy layout")
	migrateCmd.MarkFlagRequired("output")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	orderName, _ := cmd.Flags().GetString("byte-order")
	segments, _ := cmd.Flags().GetBool("segments")
	toLegacy, _ := cmd.Flags().GetBool("to-legacy")

	var order stdbinary.ByteOrder
	switch orderName {
	case "little":
		order = stdbinary.LittleEndian
	case "big":
		order = stdbinary.BigEndian
	default:
		return model.Errorf(model.CodeInvalidArgument, nil, "unknown byte order %q", orderName)
	}
	kind := binary.KindPolygon
	if segments {
		kind = binary.KindSegment
	}

	in, closeIn, err := openInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	out, err := createFile(args[0], outputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	bw := bufio.NewWriter(out)

	var r *binary.Reader
	var w *binary.Writer
	if toLegacy {
		if r, err = binary.NewReader(bufio.NewReader(in)); err != nil {
			return err
		}
		if r.Kind() != kind {
			return model.Errorf(model.CodeInvalidArgument, nil, "input is a %s file, expected %s", r.Kind(), kind)
		}
		w = binary.NewLegacyWriter(bw, order, kind)
	} else {
		r = binary.NewLegacyReader(bufio.NewReader(in), order, kind)
		if w, err = binary.NewWriter(bw, kind); err != nil {
			return err
		}
	}

	n, err := copyRecords(r, w, kind)
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return model.Errorf(model.CodeIO, err, "flush output")
	}
	if err := out.Close(); err != nil {
		return model.Errorf(model.CodeIO, err, "close output file")
	}
	printer.Fprintf(cmd.OutOrStdout(), "Migrated %d %s records to %s\n", n, kind, outputPath)
	return nil
}

func copyRecords(r *binary.Reader, w *binary.Writer, kind binary.Kind) (int, error) {
	n := 0
	for {
		var err error
		if kind == binary.KindSegment {
			var s *model.Segment
			if s, err = r.ReadSegment(); err == nil {
				err = w.WriteSegment(s)
			}
		} else {
			var p *model.Polygon
			if p, err = r.ReadPolygon(); err == nil {
				err = w.WritePolygon(p)
			}
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("record %d at offset %d: %w", n, r.Offset(), err)
		}
		n++
	}
}

// segdump command
var segdumpCmd = &cobra.Command{
	Use:   "segdump <segments.b>",
	Short: "Print raw segments as lon/lat text",
	Long:  `Print every raw segment of a segment file, each preceded by a '>' line with its rank and point count.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSegdump,
}

func runSegdump(cmd *cobra.Command, args []string) error {
	in, closeIn, err := openInput(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	defer closeIn()

	w := text.NewWriter(cmd.OutOrStdout(), true)
	if err := shoredb.ReadSegments(bufio.NewReader(in), w.WriteSegment); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return model.Errorf(model.CodeIO, err, "write output")
	}
	return nil
}
