package walker

import (
	"errors"
	"fmt"
)

// ErrCleanExit marks a clean command that ran but exited non-zero. It is a
// reported, non-fatal failure, distinct from a command that could not be
// spawned at all.
var ErrCleanExit = errors.New("clean command exited with non-zero status")

// NotADirectoryError reports a scan root that exists but is not a directory.
type NotADirectoryError struct {
	Path string
}

func (e *NotADirectoryError) Error() string {
	return fmt.Sprintf("not a directory: %s", e.Path)
}
