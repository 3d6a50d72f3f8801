package report

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/chronicle-hq/chronicle/internal/utils"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// DefaultDir is used when no report directory preference is set, or when the
// preferred directory can neither be found nor created.
func DefaultDir() string {
	return filepath.Join(xdg.UserDirs.Documents, "Chronicle", "日报")
}

// Store keeps one Markdown file per day inside a report directory.
type Store struct {
	fs         billy.Filesystem
	defaultDir string
}

func NewStore(fs billy.Filesystem, defaultDir string) *Store {
	return &Store{
		fs:         fs,
		defaultDir: defaultDir,
	}
}

// NewOSStore returns a Store backed by the host filesystem. Directories
// handed to it are absolute, so the filesystem is rooted at "/".
func NewOSStore() *Store {
	return NewStore(osfs.New("/", osfs.WithBoundOS()), DefaultDir())
}

// ResolveOutputDir returns preferred when it exists as a directory or can be
// created, and the default directory otherwise.
func (s *Store) ResolveOutputDir(preferred string) string {
	if preferred == "" {
		return s.defaultDir
	}

	dir, err := utils.ResolvePath(preferred)
	if err != nil {
		slog.Warn("report dir preference ignored", "path", preferred, "error", err)
		return s.defaultDir
	}

	info, err := s.fs.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		return dir
	case err == nil:
		slog.Warn("report dir preference is not a directory", "path", dir)
		return s.defaultDir
	case !errors.Is(err, os.ErrNotExist):
		slog.Warn("report dir preference ignored", "path", dir, "error", err)
		return s.defaultDir
	}

	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		slog.Warn("report dir preference cannot be created", "path", dir, "error", err)
		return s.defaultDir
	}

	slog.Debug("report dir created", "path", dir)
	return dir
}

// Path is where the report for date lives inside dir.
func (s *Store) Path(dir string, date Date) string {
	return s.fs.Join(dir, date.Filename())
}

// Persist writes content to `<dir>/<dotted-date>.md`, creating dir if needed
// and replacing any existing file.
func (s *Store) Persist(dir string, date Date, content string) (string, error) {
	if err := s.fs.MkdirAll(dir, dirPerm); err != nil {
		return "", &LocalWriteError{Op: "mkdir", Path: dir, Err: err}
	}

	path := s.Path(dir, date)
	if err := util.WriteFile(s.fs, path, []byte(content), filePerm); err != nil {
		return "", &LocalWriteError{Op: "write", Path: path, Err: err}
	}

	slog.Debug("report saved", "path", path, "bytes", len(content))
	return path, nil
}

// Read returns the stored report for date.
func (s *Store) Read(dir string, date Date) (string, error) {
	path := s.Path(dir, date)
	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		return "", &LocalWriteError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}
