// Package fileutil holds the small filesystem helpers the apply phase and
// the changeset store share: atomic writes (temp file + rename) and an
// advisory-locked variant for files another process may also touch.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// AtomicWrite writes data to path via a temp file in the same directory
// followed by a rename, so the file is either fully written or untouched.
// Parent directories are created as needed.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("failed to write temp file for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp file into %s: %w", path, err)
	}
	return nil
}

// LockedWrite performs an AtomicWrite under an advisory flock on
// "<path>.lock". Used for the changelog, which editors or a concurrent
// tool invocation may also be appending to.
func LockedWrite(path string, data []byte, perm os.FileMode) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock for %s: %w", path, err)
	}
	defer lock.Unlock()

	return AtomicWrite(path, data, perm)
}

// EnsureDir creates dir and any missing parents.
func EnsureDir(dir string) error {
	if PathExists(dir) {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// PathExists reports whether a file or directory exists at path.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
