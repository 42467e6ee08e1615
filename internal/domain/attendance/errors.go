package attendance

import "errors"

var (
	// ErrRecordNotFound is returned when no attendance row matches the key.
	ErrRecordNotFound = errors.New("attendance record not found")

	// ErrNotLoggedIn is returned by logout when no Present record exists
	// for the day.
	ErrNotLoggedIn = errors.New("no present record for today")
)
