package holiday

import "time"

// Recurrence kinds. A rule carries either an exact date or a recurrence,
// never both.
const (
	KindWeekly     = "weekly"
	KindAnnual     = "annual-fixed"
	KindNthWeekday = "nth-weekday-monthly"
)

// Rule is one calendar entry. ExactDate is "YYYY-MM-DD"; StartMMDD is
// "MM-DD" for annual-fixed recurrences. Weekdays use time.Weekday
// numbering (Sunday = 0), Months use time.Month numbering (January = 1),
// Nths count occurrences within the month starting at 1.
type Rule struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	ExactDate    string       `json:"date,omitempty"`
	Kind         string       `json:"kind,omitempty"`
	Weekdays     []int        `json:"weekdays,omitempty"`
	Months       []time.Month `json:"months,omitempty"`
	Nths         []int        `json:"nths,omitempty"`
	StartMMDD    string       `json:"startDate,omitempty"`
	Color        string       `json:"color"`
	IsGovernment bool         `json:"isGovernment"`
	IsEnabled    bool         `json:"isEnabled"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Summary is the per-hit payload returned by date checks.
type Summary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Color        string `json:"color"`
	IsGovernment bool   `json:"isGovernment"`
}

// Info answers "is this date a holiday, and why".
type Info struct {
	IsHoliday bool      `json:"isHoliday"`
	Holidays  []Summary `json:"holidays"`
}

// MonthOccurrences lists the holiday dates of one calendar month.
type MonthOccurrences struct {
	Dates []string `json:"dates"`
}
