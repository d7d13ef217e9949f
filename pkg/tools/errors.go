package tools

import (
	"errors"
	"fmt"
)

// ErrToolNotFound is returned by the registry for unknown tool names.
var ErrToolNotFound = errors.New("tool not found")

// ErrExactMatchNotFound is returned by replace_code when old_code is absent
// from the target file.
var ErrExactMatchNotFound = errors.New("old_code not found, must be an exact match")

// ErrCommandRejected is returned by run_command for commands off the
// allow-list.
var ErrCommandRejected = errors.New("command not allowed for security reasons")

// OutOfBoundsError reports an insert_at_line line number outside the file.
type OutOfBoundsError struct {
	Line  int
	Lines int // line count of the file
	File  string
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("line number %d is out of bounds for file %q which has %d lines (valid range: 1 to %d)",
		e.Line, e.File, e.Lines, e.Lines+1)
}

// PathError reports a missing file, permission problem, or other filesystem
// failure from a tool.
type PathError struct {
	Op   string
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}
