package attendance

import "time"

// Day record kinds. Leave day records carry the leave label itself (for
// example "Sick Leave") so one table holds both presence and leave state.
const (
	TypePresent = "Present"
	TypeAbsent  = "Absent"
	TypeLOP     = "LOP"
)

// GeoStamp is one login or logout event with the device position at the
// time it was recorded.
type GeoStamp struct {
	At  time.Time `json:"at"`
	Lat float64   `json:"lat"`
	Lon float64   `json:"lon"`
}

// Record is one attendance day for one user. At most one row exists per
// (UserID, Date). Approved stays NULL until a manager decides; presence
// records never get a decision and keep it NULL forever.
type Record struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	EmpID     string    `json:"empId,omitempty"`
	Date      time.Time `json:"date"`
	Type      string    `json:"attendanceType"`
	Reason    string    `json:"reason,omitempty"`
	Approved  *bool     `json:"approved"`
	Remarks   string    `json:"remarks,omitempty"`
	IsHoliday bool      `json:"isHoliday"`
	Login     *GeoStamp `json:"login,omitempty"`
	Logout    *GeoStamp `json:"logout,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TodayStatus answers the "have I clocked in" probe together with the
// holiday calendar for the day.
type TodayStatus struct {
	Marked    bool     `json:"marked"`
	IsHoliday bool     `json:"isHoliday"`
	Holidays  []string `json:"holidays,omitempty"`
}

// ListFilter narrows the scoped listings.
type ListFilter struct {
	Types   []string
	From    time.Time
	To      time.Time
	Pending bool // approved IS NULL
	UserIDs []string
}
