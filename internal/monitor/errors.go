package monitor

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Subscribe after Close.
var ErrClosed = errors.New("monitor closed")

// subscriptionFailure signals that the camera could not be acquired for a new subscriber.
type subscriptionFailure struct {
	id  string
	err error
}

func (e subscriptionFailure) Error() string {
	return fmt.Sprintf("subscribe %s: %v", e.id, e.err)
}

func (e subscriptionFailure) Unwrap() error { return e.err }

// ErrSubscriptionFailure constructs a subscriptionFailure.
func ErrSubscriptionFailure(id string, err error) error {
	return subscriptionFailure{id: id, err: err}
}

// IsSubscriptionFailure reports whether err came from a failed Subscribe.
func IsSubscriptionFailure(err error) bool {
	var e subscriptionFailure
	return errors.As(err, &e)
}
