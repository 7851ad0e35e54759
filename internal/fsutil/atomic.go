// Package fsutil writes files so that readers of the destination path only
// ever see the previous complete contents or the new complete contents.
package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Error reports which step of an atomic write failed. The destination file
// is untouched whenever an Error is returned.
type Error struct {
	Op   string // "create", "write", "sync", "close" or "rename"
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("atomic write %s: %s: %v", e.Path, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WriteAtomic streams the output of write into a temporary file next to
// path, syncs it, and renames it over path. The temporary file lives in the
// same directory so the rename never crosses a filesystem. It is removed if
// any step fails.
func WriteAtomic(path string, perm os.FileMode, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &Error{Op: "create", Path: path, Err: err}
	}
	tmpName := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriter(tmp)
	if err := write(buf); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := buf.Flush(); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Chmod(perm); err != nil {
		return &Error{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return &Error{Op: "sync", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &Error{Op: "close", Path: path, Err: err}
	}

	if err := os.Rename(tmpName, path); err != nil {
		return &Error{Op: "rename", Path: path, Err: err}
	}
	renamed = true
	return nil
}

// WriteFile is WriteAtomic for data already in memory.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	return WriteAtomic(path, perm, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}
