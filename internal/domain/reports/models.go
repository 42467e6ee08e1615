package reports

import "time"

// Shift is a working window in local wall-clock terms.
type Shift struct {
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

// ShiftConfig holds the standard shift plus an optional shorter Saturday
// shift.
type ShiftConfig struct {
	Default Shift  `json:"default"`
	Weekend *Shift `json:"weekend,omitempty"`
}

// DefaultShifts mirrors the deployed rota: 09:30-18:30 weekdays, a half day
// on Saturdays.
func DefaultShifts() ShiftConfig {
	return ShiftConfig{
		Default: Shift{StartHour: 9, StartMinute: 30, EndHour: 18, EndMinute: 30},
		Weekend: &Shift{StartHour: 10, StartMinute: 0, EndHour: 14, EndMinute: 0},
	}
}

// Row is one classified report line. Type carries the post-classification
// value: a Present record whose stamps miss the shift window comes out as
// LOP with the reason spelled out.
type Row struct {
	UserID    string     `json:"userId"`
	UserName  string     `json:"userName"`
	EmpID     string     `json:"empId"`
	Date      time.Time  `json:"date"`
	Type      string     `json:"attendanceType"`
	Approved  *bool      `json:"approved"`
	IsHoliday bool       `json:"isHoliday"`
	Remarks   string     `json:"remarks,omitempty"`
	Reason    string     `json:"reasonForApplying,omitempty"`
	LOPReason string     `json:"reasonForLOP,omitempty"`
	LoginAt   *time.Time `json:"loginAt,omitempty"`
	LogoutAt  *time.Time `json:"logoutAt,omitempty"`
}
