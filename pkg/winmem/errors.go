package winmem

import (
	"errors"
	"fmt"
)

// ErrUnsupported is returned by the native primitives on platforms other than Windows.
var ErrUnsupported = errors.New("winmem: memory telemetry is only available on windows")

// FatalCollectionError reports that a whole operation failed: the process list
// could not be obtained or a snapshot primitive failed. No partial result
// accompanies it.
type FatalCollectionError struct {
	// Op is the public operation that failed, e.g. "GetProcessMemory".
	Op    string
	Cause error
}

func (e *FatalCollectionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *FatalCollectionError) Unwrap() error { return e.Cause }

// ProcessQueryError reports that a single process could not be opened or
// queried. It never escapes the aggregator; its message becomes the entry's
// error description.
type ProcessQueryError struct {
	PID  uint32
	Name string
	// Op is the failing primitive, e.g. "OpenProcess".
	Op    string
	Cause error
}

func (e *ProcessQueryError) Error() string {
	return fmt.Sprintf("%s failed for %s (pid %d): %v", e.Op, e.Name, e.PID, e.Cause)
}

func (e *ProcessQueryError) Unwrap() error { return e.Cause }

// IsFatal reports whether err carries a FatalCollectionError.
func IsFatal(err error) bool {
	var fatal *FatalCollectionError
	return errors.As(err, &fatal)
}

func fatal(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *FatalCollectionError
	if errors.As(err, &existing) {
		return err
	}
	return &FatalCollectionError{Op: op, Cause: err}
}
