package expense

import "errors"

var (
	ErrCreditNotFound = errors.New("petrol credit not found")

	// ErrNotVisible is returned when the actor targets a user outside
	// their visibility set.
	ErrNotVisible = errors.New("user not visible to actor")

	ErrBadTransportMode = errors.New("unknown transport mode")

	ErrUserNotFound = errors.New("user not found")
)
