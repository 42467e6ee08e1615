package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hrms/internal/domain/leave"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func leaveTypeStrings() []string {
	labels := leave.Labels()
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

const recordSelect = `
  SELECT a.id, a.user_id, COALESCE(u.name, ''), COALESCE(u.emp_id, ''),
         a.date, a.attendance_type, a.reason, a.approved, a.remarks, a.is_holiday,
         a.login_at, a.login_lat, a.login_lon,
         a.logout_at, a.logout_lat, a.logout_lon,
         a.created_at
  FROM attendance a
  LEFT JOIN users u ON u.id = a.user_id
`

func scanRecord(row pgx.Row) (Record, error) {
	var (
		rec                  Record
		loginAt, logoutAt    *time.Time
		loginLat, loginLon   *float64
		logoutLat, logoutLon *float64
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.UserName, &rec.EmpID,
		&rec.Date, &rec.Type, &rec.Reason, &rec.Approved, &rec.Remarks, &rec.IsHoliday,
		&loginAt, &loginLat, &loginLon,
		&logoutAt, &logoutLat, &logoutLon,
		&rec.CreatedAt); err != nil {
		return Record{}, err
	}
	if loginAt != nil {
		rec.Login = &GeoStamp{At: *loginAt}
		if loginLat != nil {
			rec.Login.Lat = *loginLat
		}
		if loginLon != nil {
			rec.Login.Lon = *loginLon
		}
	}
	if logoutAt != nil {
		rec.Logout = &GeoStamp{At: *logoutAt}
		if logoutLat != nil {
			rec.Logout.Lat = *logoutLat
		}
		if logoutLon != nil {
			rec.Logout.Lon = *logoutLon
		}
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx, recordSelect+` WHERE a.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

func (s *Store) GetByDay(ctx context.Context, userID string, day time.Time) (Record, error) {
	rec, err := scanRecord(s.DB.QueryRow(ctx,
		recordSelect+` WHERE a.user_id = $1 AND a.date = $2`, userID, day))
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	return rec, err
}

// HasRecord reports whether any record exists for the user on the day.
func (s *Store) HasRecord(ctx context.Context, userID string, date time.Time) (bool, error) {
	var exists bool
	err := s.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM attendance WHERE user_id = $1 AND date = $2)
  `, userID, date).Scan(&exists)
	return exists, err
}

// CountPresentOn counts the day's presence records across all users.
func (s *Store) CountPresentOn(ctx context.Context, day time.Time) (int, error) {
	var n int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(*) FROM attendance WHERE date = $1 AND attendance_type = $2
  `, day, TypePresent).Scan(&n)
	return n, err
}

// CreateLeaveRecord inserts one leave day. The unique (user_id, date)
// constraint makes concurrent double-booking of a day impossible.
func (s *Store) CreateLeaveRecord(ctx context.Context, userID string, date time.Time, label leave.Label, reason string) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (user_id, date, attendance_type, reason)
    VALUES ($1, $2, $3, $4)
    RETURNING id
  `, userID, date, string(label), reason).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

// GetRecord adapts Get to the narrow view the leave workflow consumes.
func (s *Store) GetRecord(ctx context.Context, recordID string) (leave.DayRecord, error) {
	rec, err := s.Get(ctx, recordID)
	if errors.Is(err, ErrRecordNotFound) {
		return leave.DayRecord{}, leave.ErrRecordNotFound
	}
	if err != nil {
		return leave.DayRecord{}, err
	}
	return leave.DayRecord{
		ID:       rec.ID,
		UserID:   rec.UserID,
		Date:     rec.Date,
		Type:     rec.Type,
		Approved: rec.Approved,
	}, nil
}

// SetApproval writes the terminal decision onto a day record.
func (s *Store) SetApproval(ctx context.Context, recordID string, approved bool, remarks string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance SET approved = $1, remarks = $2, updated_at = now()
    WHERE id = $3
  `, approved, remarks, recordID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrRecordNotFound
	}
	return nil
}

func (s *Store) CreatePresent(ctx context.Context, userID string, day time.Time, isHoliday bool, stamp GeoStamp) (Record, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO attendance (user_id, date, attendance_type, is_holiday, login_at, login_lat, login_lon)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, userID, day, TypePresent, isHoliday, stamp.At, stamp.Lat, stamp.Lon).Scan(&id); err != nil {
		return Record{}, err
	}
	return s.Get(ctx, id)
}

func (s *Store) StampLogout(ctx context.Context, recordID string, isHoliday bool, stamp GeoStamp) (Record, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE attendance
    SET logout_at = $1, logout_lat = $2, logout_lon = $3, is_holiday = $4, updated_at = now()
    WHERE id = $5
  `, stamp.At, stamp.Lat, stamp.Lon, isHoliday, recordID)
	if err != nil {
		return Record{}, err
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrRecordNotFound
	}
	return s.Get(ctx, recordID)
}

// List runs a filtered, newest-first listing. An empty UserIDs filter with
// Pending or Types set still scopes correctly because the caller always
// passes the visibility set for scoped listings.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(f.Types) > 0 {
		where = append(where, "a.attendance_type = ANY("+arg(f.Types)+")")
	}
	if f.Pending {
		where = append(where, "a.approved IS NULL")
	}
	if !f.From.IsZero() {
		where = append(where, "a.date >= "+arg(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "a.date <= "+arg(f.To))
	}
	if f.UserIDs != nil {
		where = append(where, "a.user_id = ANY("+arg(f.UserIDs)+")")
	}

	q := recordSelect
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY a.date DESC"

	rows, err := s.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkAbsentNoLogout flips today's Present records that never logged out
// to Absent. Returns the affected user IDs.
func (s *Store) MarkAbsentNoLogout(ctx context.Context, day time.Time) ([]string, error) {
	rows, err := s.DB.Query(ctx, `
    UPDATE attendance
    SET attendance_type = $1, remarks = 'Auto-marked Absent (No logout)', updated_at = now()
    WHERE date = $2 AND attendance_type = $3
      AND login_at IS NOT NULL AND logout_at IS NULL
    RETURNING user_id
  `, TypeAbsent, day, TypePresent)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, id)
	}
	return userIDs, rows.Err()
}
