package fileops

import (
	"os"

	"github.com/google/renameio"
)

// ReadFile returns the whole content of the file at path.
func ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ReadString returns the whole content of the file at path as text.
func ReadString(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteFile replaces the file at path with data. The new content is written
// to a temporary file first and renamed into place.
func WriteFile(path string, data []byte) error {
	return renameio.WriteFile(path, data, 0644)
}
