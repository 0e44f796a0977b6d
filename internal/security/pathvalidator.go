package security

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrPathEscapes  = errors.New("path escapes working directory")
	ErrAbsolutePath = errors.New("absolute paths are not allowed")
	ErrEmptyPath    = errors.New("empty path not allowed")
)

// ExportFilePerm keeps export files private to the owner
const ExportFilePerm = 0600

// PathValidator confines import and export files to one directory
// using the os.Root API.
type PathValidator struct {
	root *os.Root
	dir  string
}

// NewPathValidator opens dir as the root for all file operations
func NewPathValidator(dir string) (*PathValidator, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open working directory: %w", err)
	}

	return &PathValidator{root: root, dir: absPath}, nil
}

// Close releases the root handle
func (pv *PathValidator) Close() error {
	if pv.root != nil {
		return pv.root.Close()
	}
	return nil
}

// Dir returns the absolute directory the validator is rooted at
func (pv *PathValidator) Dir() string {
	return pv.dir
}

// Normalize validates a user-provided path and returns it relative to the
// root with forward slashes. It rejects empty, absolute and escaping paths.
func (pv *PathValidator) Normalize(userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}

	// An absolute path inside the root is accepted and made relative
	if filepath.IsAbs(userPath) {
		rel, err := filepath.Rel(pv.dir, userPath)
		if err != nil || !filepath.IsLocal(rel) {
			return "", fmt.Errorf("%w: %s", ErrAbsolutePath, userPath)
		}
		userPath = rel
	}

	if !filepath.IsLocal(userPath) {
		return "", fmt.Errorf("%w: %s", ErrPathEscapes, userPath)
	}

	return filepath.ToSlash(filepath.Clean(userPath)), nil
}

// WriteFile writes data inside the root, creating parent directories
func (pv *PathValidator) WriteFile(path string, data []byte) error {
	rel, err := pv.Normalize(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	platformPath := filepath.FromSlash(rel)
	if err := pv.mkdirParents(platformPath); err != nil {
		return err
	}

	f, err := pv.root.OpenFile(platformPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, ExportFilePerm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a file inside the root
func (pv *PathValidator) ReadFile(path string) ([]byte, error) {
	rel, err := pv.Normalize(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	f, err := pv.root.Open(filepath.FromSlash(rel))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// mkdirParents creates each missing parent directory of path inside the root
func (pv *PathValidator) mkdirParents(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}

	var current string
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if err := pv.root.Mkdir(current, 0700); err != nil && !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("failed to create %s: %w", current, err)
		}
	}
	return nil
}
