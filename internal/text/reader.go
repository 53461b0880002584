package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyuri/shoredb/internal/model"
)

// Record is one polygon read from text: header fields from its '>' line and
// (lon, lat) pairs in degrees.
type Record struct {
	Header model.Header
	Coords [][2]float64
	Line   int // Line number of the '>' header
}

// Reader parses multi-segment lon/lat text
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a new text reader
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{scanner: sc}
}

// Read parses the whole input. Every polygon starts with a '>' line of
// key=value pairs (id is required; level, source, parent and ancestor are
// optional); unknown keys are ignored. Blank lines and lines starting with
// '#' are skipped.
func (r *Reader) Read() ([]Record, error) {
	var records []Record
	var cur *Record

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, ">") {
			rec, err := r.readHeader(strings.TrimPrefix(line, ">"))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.line, err)
			}
			records = append(records, rec)
			cur = &records[len(records)-1]
			continue
		}

		if cur == nil {
			return nil, model.Errorf(model.CodeInvalidArgument, nil, "line %d: coordinates before the first '>' header", r.line)
		}
		c, err := parseCoord(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.line, err)
		}
		cur.Coords = append(cur.Coords, c)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return records, nil
}

func (r *Reader) readHeader(s string) (Record, error) {
	rec := Record{
		Header: model.Header{Parent: model.NoParent, Ancestor: model.NoParent},
		Line:   r.line,
	}
	hasID := false

	for _, field := range strings.Fields(s) {
		parts := strings.SplitN(field, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		var target *int
		switch key {
		case "id":
			target = &rec.Header.ID
			hasID = true
		case "level":
			target = &rec.Header.Level
		case "source":
			target = &rec.Header.Source
		case "parent":
			target = &rec.Header.Parent
		case "ancestor":
			target = &rec.Header.Ancestor
		default:
			continue
		}
		v, err := strconv.Atoi(value)
		if err != nil {
			return rec, model.Errorf(model.CodeInvalidArgument, err, "header field %s", key)
		}
		*target = v
	}

	if !hasID {
		return rec, model.Errorf(model.CodeInvalidArgument, nil, "header without id")
	}
	return rec, nil
}

func parseCoord(line string) ([2]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return [2]float64{}, model.Errorf(model.CodeInvalidArgument, nil, "want lon lat, got %q", line)
	}
	lon, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return [2]float64{}, model.Errorf(model.CodeInvalidArgument, err, "parse longitude")
	}
	lat, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return [2]float64{}, model.Errorf(model.CodeInvalidArgument, err, "parse latitude")
	}
	if lat < -90 || lat > 90 {
		return [2]float64{}, model.Errorf(model.CodeInvalidArgument, nil, "latitude %v out of range", lat)
	}
	return [2]float64{lon, lat}, nil
}
