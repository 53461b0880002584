package shoredb

import (
	"fmt"

	"github.com/dyuri/shoredb/internal/geometry"
	"github.com/dyuri/shoredb/internal/model"
)

// Severity of a validation issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError represents a validation issue found in a polygon file
type ValidationError struct {
	ID      int
	Level   Severity
	Code    Code
	Message string
}

func (v ValidationError) String() string {
	return fmt.Sprintf("polygon %d: %s", v.ID, v.Message)
}

// ValidateOptions tune Validate.
type ValidateOptions struct {
	AreaTolerance float64 // Relative; stored and recomputed areas may differ by this much
}

// Report holds the result of Validate.
type Report struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether the file passed. In strict mode warnings fail too.
func (r *Report) OK(strict bool) bool {
	return len(r.Errors) == 0 && (!strict || len(r.Warnings) == 0)
}

// Err returns an InvariantViolation error when the report did not pass.
func (r *Report) Err(strict bool) error {
	if r.OK(strict) {
		return nil
	}
	return model.Errorf(model.CodeInvariantViolation, nil, "validation failed: %d error(s), %d warning(s)", len(r.Errors), len(r.Warnings))
}

func (r *Report) add(sev Severity, code Code, id int, msg string, args ...interface{}) {
	v := ValidationError{ID: id, Level: sev, Code: code, Message: fmt.Sprintf(msg, args...)}
	if sev == SeverityError {
		r.Errors = append(r.Errors, v)
	} else {
		r.Warnings = append(r.Warnings, v)
	}
}

// Validate checks every polygon of db for structural and semantic errors:
// duplicate ids, inverted boxes, points outside the stored box, winding that
// contradicts the level, dangling parent or ancestor links and stored areas
// that disagree with the recomputed area.
func Validate(db *DB, opts ValidateOptions) (*Report, error) {
	r := &Report{}
	cat := db.Catalog()

	for _, id := range cat.DuplicateIDs() {
		r.add(SeverityError, model.CodeInvariantViolation, id, "duplicate id")
	}

	for i := range cat.Entries {
		h := &cat.Entries[i].Header
		pts, err := cat.Points(db.ReaderAt(), i)
		if err != nil {
			return nil, err
		}
		unwrapped := h.Unwrap(pts)

		if h.N < 3 {
			r.add(SeverityWarning, model.CodeInvariantViolation, h.ID, "only %d points", h.N)
		}
		switch {
		case h.West > h.East || h.South > h.North:
			r.add(SeverityError, model.CodeInvariantViolation, h.ID, "inverted bounding box [%g %g %g %g], left out of overlap checks", h.West, h.East, h.South, h.North)
		case !geometry.BBoxContains(h, unwrapped):
			r.add(SeverityError, model.CodeInvariantViolation, h.ID, "points outside bounding box [%g %g %g %g]", h.West, h.East, h.South, h.North)
		}

		area, sign := geometry.SignedArea(unwrapped)
		if sign != geometry.Degenerate && sign != geometry.RequiredOrientation(h.Level) {
			r.add(SeverityError, model.CodeInvariantViolation, h.ID, "winding does not match level %d", h.Level)
		}
		if !geometry.AreaAgrees(h.Area, area, opts.AreaTolerance) {
			r.add(SeverityWarning, model.CodeInvariantViolation, h.ID, "stored area %.3f km² differs from computed %.3f km²", h.Area, area)
		}

		if h.Parent != model.NoParent && !cat.Has(h.Parent) {
			r.add(SeverityWarning, model.CodeNotFound, h.ID, "parent %d not in file", h.Parent)
		}
		if h.Ancestor != model.NoParent && !cat.Has(h.Ancestor) {
			r.add(SeverityWarning, model.CodeNotFound, h.ID, "ancestor %d not in file", h.Ancestor)
		}
	}
	return r, nil
}
