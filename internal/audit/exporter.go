// Package audit exports the login log to a local directory or to an
// S3-compatible bucket.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"

	"github.com/dmitrijs2005/tripti/internal/filex"
	"github.com/dmitrijs2005/tripti/internal/models"
)

// Exporter stores a named object and returns where it ended up.
type Exporter interface {
	Export(ctx context.Context, name string, r io.Reader) (location string, err error)
}

// FileExporter writes objects below Dir. Slashes in the name become
// subdirectories.
type FileExporter struct {
	Dir string
}

func (f *FileExporter) Export(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(f.Dir, filepath.FromSlash(path.Clean("/"+name)))
	dir, err := filex.EnsureDir(filepath.Dir(target))
	if err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}

	full := filepath.Join(dir, filepath.Base(target))
	if err := filex.WriteNew(full, r, 0o600); err != nil {
		return "", fmt.Errorf("export %s: %w", name, err)
	}
	return full, nil
}

// WriteLoginLogs encodes logs as JSON lines.
func WriteLoginLogs(w io.Writer, logs []models.LoginLog) error {
	enc := json.NewEncoder(w)
	for i := range logs {
		if err := enc.Encode(&logs[i]); err != nil {
			return fmt.Errorf("encode login log %s: %w", logs[i].ID, err)
		}
	}
	return nil
}
