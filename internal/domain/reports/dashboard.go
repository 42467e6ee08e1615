package reports

import (
	"context"
	"time"
)

// HeadcountAPI reports directory totals. Satisfied by the users store.
type HeadcountAPI interface {
	CountByStatus(ctx context.Context) (total, active int, err error)
}

// PresenceCountAPI counts one day's presence records. Satisfied by the
// attendance store.
type PresenceCountAPI interface {
	CountPresentOn(ctx context.Context, day time.Time) (int, error)
}

// DashboardStats is the admin landing-page summary.
type DashboardStats struct {
	TotalEmployees    int `json:"totalEmployees"`
	ActiveEmployees   int `json:"activeEmployees"`
	InactiveEmployees int `json:"inactiveEmployees"`
	PresentToday      int `json:"presentToday"`
	AbsentToday       int `json:"absentToday"`
}

// Dashboard aggregates headcount and today's presence into one summary.
type Dashboard struct {
	Users      HeadcountAPI
	Attendance PresenceCountAPI
	Now        func() time.Time
}

func NewDashboard(users HeadcountAPI, att PresenceCountAPI) *Dashboard {
	return &Dashboard{Users: users, Attendance: att, Now: time.Now}
}

// Stats computes the summary for today. An active employee with no
// presence record yet counts as absent so far, so AbsentToday shrinks
// over the course of the morning.
func (d *Dashboard) Stats(ctx context.Context) (DashboardStats, error) {
	total, active, err := d.Users.CountByStatus(ctx)
	if err != nil {
		return DashboardStats{}, err
	}

	now := d.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	present, err := d.Attendance.CountPresentOn(ctx, today)
	if err != nil {
		return DashboardStats{}, err
	}

	absent := active - present
	if absent < 0 {
		absent = 0
	}
	return DashboardStats{
		TotalEmployees:    total,
		ActiveEmployees:   active,
		InactiveEmployees: total - active,
		PresentToday:      present,
		AbsentToday:       absent,
	}, nil
}
