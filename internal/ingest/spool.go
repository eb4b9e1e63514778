package ingest

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
)

// Spool copies src into a new temp file under dir. The returned cleanup
// removes the file and is safe to call more than once; callers must defer it
// on every path, including when Spool itself fails after creating the file.
func Spool(dir, pattern string, src io.Reader, maxBytes int64) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", func() {}, fmt.Errorf("create temp file: %w", err)
	}
	path = f.Name()
	cleanup = func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("failed to remove upload temp file", "path", path, "error", err)
		}
	}

	n, err := io.Copy(f, io.LimitReader(src, maxBytes+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return path, cleanup, fmt.Errorf("write temp file: %w", err)
	}
	if n > maxBytes {
		return path, cleanup, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}
	return path, cleanup, nil
}
