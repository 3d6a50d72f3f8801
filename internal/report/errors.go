package report

import "fmt"

// LocalWriteError is returned when the report directory or file cannot be
// created or written. Err carries the underlying OS error.
type LocalWriteError struct {
	Op   string // "mkdir", "write", "read"
	Path string
	Err  error
}

func (e *LocalWriteError) Error() string {
	return fmt.Sprintf("local %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LocalWriteError) Unwrap() error {
	return e.Err
}
