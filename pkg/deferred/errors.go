package deferred

import "errors"

var (
	errNotSettled   = errors.New("deferred: callback returned without reporting a result")
	errNilRejection = errors.New("deferred: rejected without a reason")
)

// IsNotSettled reports whether err means the work finished without ever
// reporting an outcome.
func IsNotSettled(err error) bool {
	return errors.Is(err, errNotSettled)
}
