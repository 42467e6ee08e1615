package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"hrms/internal/domain/attendance"
	"hrms/internal/domain/leave"
)

// AttendanceAPI is the attendance surface the report builder consumes.
// Both methods are already visibility-scoped to the acting user.
type AttendanceAPI interface {
	DailyReport(ctx context.Context, actingUserID string) ([]attendance.Record, error)
	MonthlyReport(ctx context.Context, actingUserID string, year int, month time.Month) ([]attendance.Record, error)
}

type Service struct {
	Attendance AttendanceAPI
	Shifts     ShiftConfig
}

func NewService(att AttendanceAPI, shifts ShiftConfig) *Service {
	return &Service{Attendance: att, Shifts: shifts}
}

func (s *Service) shiftFor(date time.Time) Shift {
	if date.Weekday() == time.Saturday && s.Shifts.Weekend != nil {
		return *s.Shifts.Weekend
	}
	return s.Shifts.Default
}

// Classify turns a raw attendance record into a report row. Present is
// only honored when both stamps exist and cover the whole shift window;
// otherwise the day counts as loss of pay with the shortfall named.
func (s *Service) Classify(rec attendance.Record) Row {
	row := Row{
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		EmpID:     rec.EmpID,
		Date:      rec.Date,
		Type:      rec.Type,
		Approved:  rec.Approved,
		IsHoliday: rec.IsHoliday,
		Remarks:   rec.Remarks,
	}
	if isLeaveType(rec.Type) {
		row.Reason = rec.Reason
		if row.Reason == "" {
			row.Reason = "-"
		}
		return row
	}
	if rec.Type != attendance.TypePresent {
		return row
	}

	if rec.Login == nil || rec.Logout == nil {
		row.Type = attendance.TypeLOP
		row.LOPReason = "Missing login or logout record"
		return row
	}
	row.LoginAt = &rec.Login.At
	row.LogoutAt = &rec.Logout.At

	shift := s.shiftFor(rec.Date)
	shiftStart := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(),
		shift.StartHour, shift.StartMinute, 0, 0, rec.Date.Location())
	shiftEnd := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(),
		shift.EndHour, shift.EndMinute, 0, 0, rec.Date.Location())

	if !rec.Login.At.After(shiftStart) && !rec.Logout.At.Before(shiftEnd) {
		return row
	}

	row.Type = attendance.TypeLOP
	if rec.Login.At.After(shiftStart) {
		row.LOPReason = fmt.Sprintf("Late login at %s", rec.Login.At.Format("15:04:05"))
	}
	if rec.Logout.At.Before(shiftEnd) {
		if row.LOPReason != "" {
			row.LOPReason += "; "
		}
		row.LOPReason += fmt.Sprintf("Early logout at %s", rec.Logout.At.Format("15:04:05"))
	}
	return row
}

func isLeaveType(t string) bool {
	for _, label := range leave.Labels() {
		if string(label) == t {
			return true
		}
	}
	return false
}

func (s *Service) Daily(ctx context.Context, actingUserID string) ([]Row, error) {
	records, err := s.Attendance.DailyReport(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(records), nil
}

func (s *Service) Monthly(ctx context.Context, actingUserID string, year int, month time.Month) ([]Row, error) {
	records, err := s.Attendance.MonthlyReport(ctx, actingUserID, year, month)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(records), nil
}

func (s *Service) classifyAll(records []attendance.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, s.Classify(rec))
	}
	return rows
}

var exportHeader = []any{
	"Emp ID", "Name", "Date", "Type", "Approved", "Holiday",
	"Login", "Logout", "Reason", "LOP Reason", "Remarks",
}

// ExportMonthlyXLSX renders the classified month as a spreadsheet.
func (s *Service) ExportMonthlyXLSX(ctx context.Context, actingUserID string, year int, month time.Month) ([]byte, error) {
	rows, err := s.Monthly(ctx, actingUserID, year, month)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	if err := f.SetSheetRow(sheet, "A1", &exportHeader); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		login, logout := "", ""
		if row.LoginAt != nil {
			login = row.LoginAt.Format("15:04:05")
		}
		if row.LogoutAt != nil {
			logout = row.LogoutAt.Format("15:04:05")
		}
		approved := ""
		if row.Approved != nil {
			approved = fmt.Sprintf("%t", *row.Approved)
		}
		values := []any{
			row.EmpID, row.UserName, row.Date.Format("2006-01-02"), row.Type,
			approved, row.IsHoliday, login, logout, row.Reason, row.LOPReason, row.Remarks,
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
