package utils

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

var (
	ErrEmptyPath    = errors.New("path cannot be empty")
	ErrEmptySegment = errors.New("path segment cannot be empty")
	ErrDotSegment   = errors.New("path segment cannot be '.' or '..'")
	ErrSeparator    = errors.New("path segment cannot contain a path separator")
	ErrControlChar  = errors.New("path segment cannot contain control characters")
)

// ResolvePath expands a leading `~` and returns a cleaned absolute path.
func ResolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrEmptyPath
	}

	if path == "~" || strings.HasPrefix(path, "~/") || strings.HasPrefix(path, `~\`) {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("failed to retrieve home directory")
		}
		path = filepath.Join(homeDir, path[1:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return filepath.Clean(absPath), nil
}

func EnsureParent(path string) error {
	return EnsureDir(filepath.Dir(path))
}

func EnsureDir(path string) error {
	if DirExists(path) {
		return nil
	}
	return os.MkdirAll(path, 0o755)
}

func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ValidateSegment reports whether s can be used as exactly one component of
// a slash-joined remote path without escaping its parent.
func ValidateSegment(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptySegment
	}
	if s == "." || s == ".." {
		return ErrDotSegment
	}
	if strings.ContainsAny(s, `/\`) {
		return ErrSeparator
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return ErrControlChar
		}
	}
	return nil
}
