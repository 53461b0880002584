package hierarchy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dyuri/shoredb/internal/catalog"
	"github.com/dyuri/shoredb/internal/model"
)

// Mode selects how edits reach the database file.
type Mode int

const (
	// Staged edits a temporary copy and renames it over the original.
	Staged Mode = iota
	// DryRun edits a temporary copy and discards it.
	DryRun
	// InPlace edits the original file directly.
	InPlace
)

func (m Mode) String() string {
	switch m {
	case Staged:
		return "staged"
	case DryRun:
		return "dry-run"
	case InPlace:
		return "in-place"
	default:
		return "unknown"
	}
}

// ParseMode parses the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for _, m := range []Mode{Staged, DryRun, InPlace} {
		if s == m.String() {
			return m, nil
		}
	}
	return Staged, model.Errorf(model.CodeInvalidArgument, nil, "unknown edit mode %q", s)
}

// Apply opens the database at path in the given mode, builds its catalog and
// runs edit. In Staged mode the original is replaced only after edit and a
// sync succeed; any failure leaves it untouched.
func Apply(path string, mode Mode, edit func(*Editor) error) error {
	if mode == InPlace {
		f, err := os.OpenFile(path, os.O_RDWR, 0)
		if err != nil {
			return openError(path, err)
		}
		if err := run(f, edit); err != nil {
			f.Close()
			return err
		}
		if err := f.Sync(); err != nil {
			f.Close()
			return model.Errorf(model.CodeIO, err, "sync %s", path)
		}
		return closeFile(f, path)
	}

	tmp, err := stageCopy(path)
	if err != nil {
		return err
	}
	name := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(name)
		}
	}()

	if err := run(tmp, edit); err != nil {
		return err
	}
	if mode == DryRun {
		return nil
	}
	if err := tmp.Sync(); err != nil {
		return model.Errorf(model.CodeIO, err, "sync %s", name)
	}
	if err := closeFile(tmp, name); err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		committed = true
		return model.Errorf(model.CodeIO, err, "replace %s", path)
	}
	committed = true
	return nil
}

func run(f *os.File, edit func(*Editor) error) error {
	stat, err := f.Stat()
	if err != nil {
		return model.Errorf(model.CodeIO, err, "stat %s", f.Name())
	}
	cat, err := catalog.Build(f, stat.Size())
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}
	return edit(NewEditor(f, cat))
}

// stageCopy copies path to a hidden temporary file in the same directory so
// the final rename stays on one filesystem.
func stageCopy(path string) (*os.File, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer src.Close()

	stat, err := src.Stat()
	if err != nil {
		return nil, model.Errorf(model.CodeIO, err, "stat %s", path)
	}

	name := filepath.Join(filepath.Dir(path), fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), uuid.NewString()))
	dst, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, stat.Mode().Perm())
	if err != nil {
		return nil, model.Errorf(model.CodeIO, err, "create staging copy")
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(name)
		return nil, model.Errorf(model.CodeIO, err, "copy %s to staging file", path)
	}
	return dst, nil
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return model.Errorf(model.CodeNotFound, err, "open %s", path)
	}
	return model.Errorf(model.CodeIO, err, "open %s", path)
}

func closeFile(f *os.File, name string) error {
	if err := f.Close(); err != nil {
		return model.Errorf(model.CodeIO, err, "close %s", name)
	}
	return nil
}
