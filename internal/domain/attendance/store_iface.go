package attendance

import (
	"context"
	"time"
)

// StoreAPI is what the service needs from persistence.
type StoreAPI interface {
	Get(ctx context.Context, id string) (Record, error)
	GetByDay(ctx context.Context, userID string, day time.Time) (Record, error)
	HasRecord(ctx context.Context, userID string, date time.Time) (bool, error)
	CreatePresent(ctx context.Context, userID string, day time.Time, isHoliday bool, stamp GeoStamp) (Record, error)
	StampLogout(ctx context.Context, recordID string, isHoliday bool, stamp GeoStamp) (Record, error)
	List(ctx context.Context, f ListFilter) ([]Record, error)
	MarkAbsentNoLogout(ctx context.Context, day time.Time) ([]string, error)
}

// Visibility scopes listings to the users the actor may see. Satisfied by
// the access resolver.
type Visibility interface {
	VisibleList(ctx context.Context, actingUserID string) ([]string, error)
}

// HolidayAPI answers whether a date is a holiday and which calendar
// entries make it one.
type HolidayAPI interface {
	IsHolidayOn(ctx context.Context, date time.Time) (bool, []string, error)
}
