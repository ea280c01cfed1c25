package fileops

import (
	"io/fs"
	"os"
	"syscall"
)

// Unlink removes a single link, typically a symlink left by a previous run.
// The link target is never touched. Directories are refused.
func Unlink(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &fs.PathError{Op: "unlink", Path: path, Err: syscall.EISDIR}
	}
	return os.Remove(path)
}
