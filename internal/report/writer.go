// Package report writes the run artifacts: the inventory document and the
// unreachable sidecar. Both are written to a temporary file in the target
// directory and renamed into place, so a failed run never leaves a partial
// artifact behind.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"siteinventory/internal/codec"
	"siteinventory/internal/domain"
	"siteinventory/internal/logger"
)

// Writer encodes and persists run artifacts
type Writer struct {
	exporter codec.Exporter
	sidecar  *codec.UnreachableCSV
	log      *logger.Logger
}

// NewWriter creates a writer for the given inventory exporter. The sidecar
// uses delimiter so it can be fed back as input.
func NewWriter(exporter codec.Exporter, delimiter rune, log *logger.Logger) *Writer {
	if exporter == nil {
		exporter = codec.NewAnsibleCodec()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Writer{
		exporter: exporter,
		sidecar:  codec.NewUnreachableCSV(delimiter),
		log:      log,
	}
}

// WriteInventory encodes inv in full and replaces path with the result
func (w *Writer) WriteInventory(path string, inv *domain.Inventory) error {
	var buf bytes.Buffer
	if err := w.exporter.Export(inv, &buf); err != nil {
		return err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	w.log.Info("inventory written", "path", path, "format", w.exporter.Format(),
		"groups", len(inv.Groups()), "hosts", inv.HostCount())
	return nil
}

// WriteUnreachable writes the sidecar and returns its path. With no records
// nothing is written, a sidecar left at path by an earlier run is removed,
// and the returned path is empty.
func (w *Writer) WriteUnreachable(path string, header []string, records []domain.UnreachableRecord) (string, error) {
	if len(records) == 0 {
		err := os.Remove(path)
		switch {
		case err == nil:
			w.log.Info("removed stale unreachable sidecar", "path", path)
		case !errors.Is(err, fs.ErrNotExist):
			return "", fmt.Errorf("remove stale sidecar: %w", err)
		}
		return "", nil
	}

	var buf bytes.Buffer
	if err := w.sidecar.Export(header, records, &buf); err != nil {
		return "", err
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	w.log.Info("unreachable sidecar written", "path", path, "rows", len(records))
	return path, nil
}

// writeFileAtomic writes data next to path and renames it over path
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
