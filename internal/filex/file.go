// Package filex contains filesystem helpers for request-scoped scratch files.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrLimitExceeded is returned by WriteLimited when the source holds more
// than the allowed number of bytes.
var ErrLimitExceeded = errors.New("size limit exceeded")

// EnsureSubdDir creates dirName (relative names are resolved against the
// working directory) and returns its absolute path.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// WriteLimited copies at most limit bytes from r into a new file at path.
// If r holds more, the partial file is removed and ErrLimitExceeded returned.
func WriteLimited(path string, r io.Reader, limit int64) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", path, err)
	}

	n, err := io.Copy(f, io.LimitReader(r, limit+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > limit {
		err = ErrLimitExceeded
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}

	return n, nil
}
