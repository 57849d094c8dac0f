// Package media stores uploaded files in a local directory.
package media

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrBadName is returned when a file name reduces to nothing usable.
var ErrBadName = errors.New("invalid file name")

// Storage writes files under Root and links them under BaseURL.
type Storage struct {
	Root        string
	BaseURL     string
	UniqueNames bool
}

func NewStorage(root, baseURL string, uniqueNames bool) *Storage {
	return &Storage{Root: root, BaseURL: strings.TrimRight(baseURL, "/"), UniqueNames: uniqueNames}
}

// Save writes r under the base name of name and returns the public URL.
// An existing file with the same name is replaced unless UniqueNames is set.
func (s *Storage) Save(name string, r io.Reader) (string, error) {
	base, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if s.UniqueNames {
		base = uuid.NewString() + "_" + base
	}

	if err := os.MkdirAll(s.Root, 0o755); err != nil {
		return "", fmt.Errorf("create media root: %w", err)
	}

	dst := filepath.Join(s.Root, base)
	tmp, err := os.CreateTemp(s.Root, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	return s.URL(base), nil
}

// URL returns the public address of a stored file.
func (s *Storage) URL(name string) string {
	return s.BaseURL + "/" + url.PathEscape(name)
}

// cleanName drops any directory part, including Windows-style ones.
func cleanName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == ".." || base == "/" || base == "" || strings.HasPrefix(base, ".upload-") {
		return "", ErrBadName
	}
	return base, nil
}

// ServesLocally reports whether BaseURL is a path this process should serve.
func (s *Storage) ServesLocally() bool {
	return strings.HasPrefix(s.BaseURL, "/")
}
