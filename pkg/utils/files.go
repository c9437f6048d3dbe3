package utils

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrCheckFailed is returned in check mode when a file is missing or stale.
var ErrCheckFailed = errors.New("check failed")

// WriteOptions controls WriteFile
type WriteOptions struct {
	// Check compares instead of writing and fails on any difference.
	Check bool
}

// WriteResult describes one generated file
type WriteResult struct {
	Path string
	Size int
	// Changed is false when the file already held the same content.
	Changed bool
}

// WriteFile writes data to path unless the file already holds exactly data.
// The write goes through a temporary file and a rename, so readers never see
// a partial file.
func WriteFile(path string, data []byte, opts WriteOptions) (WriteResult, error) {
	res := WriteResult{Path: path, Size: len(data)}

	existing, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		if bytes.Equal(existing, data) {
			return res, nil
		}
		if opts.Check {
			return res, fmt.Errorf("%w: %s differs", ErrCheckFailed, path)
		}
	case !os.IsNotExist(readErr):
		return res, fmt.Errorf("read existing: %w", readErr)
	case opts.Check:
		return res, fmt.Errorf("%w: %s would be written", ErrCheckFailed, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, fmt.Errorf("mkdir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return res, fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return res, fmt.Errorf("rename tmp: %w", err)
	}
	res.Changed = true
	return res, nil
}
