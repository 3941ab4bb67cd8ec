package subscription

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrCancelReasonRequired    = errors.New("cancel reason is required")
	// ErrVersionConflict is returned by repositories when another writer updated the row first.
	ErrVersionConflict = errors.New("subscription version conflict")
)

func ErrInvalidTransition(from, to string) error {
	return fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, from, to)
}
