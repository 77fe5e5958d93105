package generator

import (
	"bytes"
	"errors"
	"io/fs"
	"os"

	"github.com/google/renameio/v2"

	"github.com/eic/datamodel-glue/internal/codegen/common"
)

// writeFileAtomic replaces path with content through renameio, so readers
// never observe a partially written header. The file is left untouched (mtime
// included) when it already holds content.
func writeFileAtomic(path string, content []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}
	if err := renameio.WriteFile(path, content, 0o644); err != nil {
		return false, &common.IOError{Op: "write", Path: path, Err: err}
	}
	return true, nil
}

func checkFile(path string, want []byte) error {
	got, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &common.StaleError{Path: path, Reason: "file does not exist"}
	}
	if err != nil {
		return &common.IOError{Op: "read", Path: path, Err: err}
	}
	if !bytes.Equal(got, want) {
		return &common.StaleError{Path: path, Reason: "content differs from a fresh generation"}
	}
	return nil
}
