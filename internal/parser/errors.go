package parser

import (
	"errors"
	"fmt"
)

// ErrUnsupported indicates a format no decoder recognizes.
var ErrUnsupported = errors.New("unsupported file format")

// DependencyError indicates a required decoder is not registered for a
// format the tool otherwise understands. It must be reported to the
// caller, never silently degraded.
type DependencyError struct {
	Format string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("no decoder registered for %s files", e.Format)
}

// IsDependencyMissing reports whether err is a DependencyError.
func IsDependencyMissing(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
