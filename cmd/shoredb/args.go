package main

import (
	"io"
	"os"
	"strconv"

	"github.com/dyuri/shoredb/internal/model"
)

// intArg parses a positional integer argument.
func intArg(s, name string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, model.Errorf(model.CodeInvalidArgument, nil, "%s must be an integer, got %q", name, s)
	}
	return v, nil
}

// linkArg parses a parent or ancestor id. "none" stands for model.NoParent
// since a bare -1 would be taken for a flag.
func linkArg(s, name string) (int, error) {
	if s == "none" {
		return model.NoParent, nil
	}
	v, err := intArg(s, name)
	if err != nil {
		return 0, err
	}
	if v < model.NoParent {
		return 0, model.Errorf(model.CodeInvalidArgument, nil, "%s must be an id or none, got %d", name, v)
	}
	return v, nil
}

// createOutput opens path for writing, or returns stdout when path is empty
// or "-". The returned close func is always safe to call.
func createOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, model.Errorf(model.CodeIO, err, "create output file")
	}
	return f, f.Close, nil
}

// openInput opens path for reading, or returns stdin for "-".
func openInput(path string, stdin io.Reader) (io.Reader, func() error, error) {
	if path == "-" {
		return stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, model.Errorf(model.CodeNotFound, err, "open input file")
		}
		return nil, nil, model.Errorf(model.CodeIO, err, "open input file")
	}
	return f, f.Close, nil
}

// createFile creates outPath for writing, refusing to truncate the file the
// command reads from.
func createFile(inPath, outPath string) (*os.File, error) {
	if inPath != "-" {
		inInfo, inErr := os.Stat(inPath)
		outInfo, outErr := os.Stat(outPath)
		if inErr == nil && outErr == nil && os.SameFile(inInfo, outInfo) {
			return nil, model.Errorf(model.CodeInvalidArgument, nil, "output %s is the input file", outPath)
		}
	}
	f, err := os.Create(outPath)
	if err != nil {
		return nil, model.Errorf(model.CodeIO, err, "create output file")
	}
	return f, nil
}
