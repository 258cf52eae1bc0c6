package compose

import (
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/gorewood/meme/internal/logging"
)

// DefaultExportName is the file name used when no destination is given.
const DefaultExportName = "meme.png"

// Export writes the current preview to w as PNG. It reports false and writes
// nothing when there is no preview yet.
func (c *Compositor) Export(w io.Writer) (bool, error) {
	preview := c.Preview()
	if preview == nil {
		return false, nil
	}
	if err := png.Encode(w, preview.Image); err != nil {
		return false, fmt.Errorf("encoding png: %w", err)
	}
	return true, nil
}

// ExportFile writes the current preview to path as PNG, replacing any
// existing file, and returns the path written. Without a preview it is a
// no-op returning "".
//
// The bytes go to a temporary file next to the destination. That handle is
// released exactly once on every path by the deferred release: closed, then
// renamed into place on success or removed on failure.
func (c *Compositor) ExportFile(path string) (written string, err error) {
	preview := c.Preview()
	if preview == nil {
		return "", nil
	}
	path = ResolveExportPath(path)

	tmp, err := os.CreateTemp(filepath.Dir(path), ".meme-*.png")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if err = release(tmp, path, err); err != nil {
			written = ""
			return
		}
		logging.Logger().Info("exported meme", "path", path)
	}()

	if err := png.Encode(tmp, preview.Image); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return path, nil
}

// release closes the temporary handle and either publishes it at path or
// removes it. It returns the first error seen.
func release(tmp *os.File, path string, encodeErr error) error {
	closeErr := tmp.Close()
	if encodeErr == nil && closeErr == nil {
		if err := os.Rename(tmp.Name(), path); err != nil {
			_ = os.Remove(tmp.Name())
			return fmt.Errorf("saving %s: %w", path, err)
		}
		return nil
	}
	_ = os.Remove(tmp.Name())
	if encodeErr != nil {
		return encodeErr
	}
	return fmt.Errorf("closing export file: %w", closeErr)
}

// ResolveExportPath applies the export naming rules: empty means
// DefaultExportName and an existing directory gets DefaultExportName inside.
func ResolveExportPath(path string) string {
	if path == "" {
		return DefaultExportName
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return filepath.Join(path, DefaultExportName)
	}
	return path
}
