package util

import (
	"fmt"
	"os"
)

// RequireRegularFile checks that path exists and is a regular file.
// Symlinks are followed.
func RequireRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrExpectedFile)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotRegularFile)
	}
	return nil
}

// RequireDirectory checks that path exists and is a directory.
func RequireDirectory(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrExpectedDirectory)
	}
	return nil
}
