package attendance

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Service implements the clock-in/clock-out flow and the scoped listings.
// Leave day records are created by the leave workflow, not here.
type Service struct {
	Store      StoreAPI
	Visibility Visibility
	Holidays   HolidayAPI
	Logger     *slog.Logger

	// Now is swappable in tests.
	Now func() time.Time
}

func NewService(store StoreAPI, visibility Visibility, holidays HolidayAPI, logger *slog.Logger) *Service {
	return &Service{
		Store:      store,
		Visibility: visibility,
		Holidays:   holidays,
		Logger:     logger,
		Now:        time.Now,
	}
}

func (s *Service) today() time.Time {
	now := s.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) holidayOn(ctx context.Context, day time.Time) (bool, []string) {
	if s.Holidays == nil {
		return false, nil
	}
	isHoliday, names, err := s.Holidays.IsHolidayOn(ctx, day)
	if err != nil {
		// A broken calendar must not block clocking in.
		s.Logger.Warn("holiday lookup failed", "error", err)
		return false, nil
	}
	return isHoliday, names
}

// PresentLogin marks the user present for today with a geo stamp. Calling
// it again on the same day returns the existing record untouched.
func (s *Service) PresentLogin(ctx context.Context, userID string, lat, lon float64) (Record, error) {
	day := s.today()

	existing, err := s.Store.GetByDay(ctx, userID, day)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrRecordNotFound) {
		return Record{}, err
	}

	isHoliday, _ := s.holidayOn(ctx, day)
	rec, err := s.Store.CreatePresent(ctx, userID, day, isHoliday, GeoStamp{At: s.Now().UTC(), Lat: lat, Lon: lon})
	if err != nil {
		return Record{}, err
	}
	s.Logger.Info("attendance login", "user_id", userID, "holiday", isHoliday)
	return rec, nil
}

// PresentLogout stamps the logout side of today's Present record.
func (s *Service) PresentLogout(ctx context.Context, userID string, lat, lon float64) (Record, error) {
	day := s.today()

	rec, err := s.Store.GetByDay(ctx, userID, day)
	if errors.Is(err, ErrRecordNotFound) {
		return Record{}, ErrNotLoggedIn
	}
	if err != nil {
		return Record{}, err
	}
	if rec.Type != TypePresent {
		return Record{}, ErrNotLoggedIn
	}

	isHoliday, _ := s.holidayOn(ctx, day)
	return s.Store.StampLogout(ctx, rec.ID, isHoliday, GeoStamp{At: s.Now().UTC(), Lat: lat, Lon: lon})
}

// CheckToday reports whether the user already has a Present record today,
// plus the holiday calendar for the day.
func (s *Service) CheckToday(ctx context.Context, userID string) (TodayStatus, error) {
	day := s.today()

	marked := false
	rec, err := s.Store.GetByDay(ctx, userID, day)
	switch {
	case err == nil:
		marked = rec.Type == TypePresent
	case !errors.Is(err, ErrRecordNotFound):
		return TodayStatus{}, err
	}

	isHoliday, names := s.holidayOn(ctx, day)
	return TodayStatus{Marked: marked, IsHoliday: isHoliday, Holidays: names}, nil
}

// PendingApprovals lists undecided leave day records for the users visible
// to the actor.
func (s *Service) PendingApprovals(ctx context.Context, actingUserID string) ([]Record, error) {
	visible, err := s.Visibility.VisibleList(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	return s.Store.List(ctx, ListFilter{
		Types:   leaveTypeStrings(),
		Pending: true,
		UserIDs: visible,
	})
}

// DailyReport lists today's presence records for the visible users.
func (s *Service) DailyReport(ctx context.Context, actingUserID string) ([]Record, error) {
	visible, err := s.Visibility.VisibleList(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	day := s.today()
	return s.Store.List(ctx, ListFilter{
		Types:   []string{TypePresent, TypeAbsent, TypeLOP},
		From:    day,
		To:      day,
		UserIDs: visible,
	})
}

// MonthlyReport lists a calendar month of presence records for the
// visible users.
func (s *Service) MonthlyReport(ctx context.Context, actingUserID string, year int, month time.Month) ([]Record, error) {
	visible, err := s.Visibility.VisibleList(ctx, actingUserID)
	if err != nil {
		return nil, err
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return s.Store.List(ctx, ListFilter{
		Types:   []string{TypePresent, TypeAbsent, TypeLOP},
		From:    from,
		To:      to,
		UserIDs: visible,
	})
}

// MyAttendance lists the user's own undecided presence records.
func (s *Service) MyAttendance(ctx context.Context, userID string) ([]Record, error) {
	return s.Store.List(ctx, ListFilter{
		Types:   []string{TypePresent, TypeAbsent, TypeLOP},
		Pending: true,
		UserIDs: []string{userID},
	})
}

// LeaveHistory lists the user's leave day records up to the end of the
// current year.
func (s *Service) LeaveHistory(ctx context.Context, userID string) ([]Record, error) {
	endOfYear := time.Date(s.Now().UTC().Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	return s.Store.List(ctx, ListFilter{
		Types:   leaveTypeStrings(),
		To:      endOfYear,
		UserIDs: []string{userID},
	})
}

// SweepNoLogout is the end-of-day job body: today's Present records with a
// login stamp but no logout become Absent.
func (s *Service) SweepNoLogout(ctx context.Context) (int, error) {
	userIDs, err := s.Store.MarkAbsentNoLogout(ctx, s.today())
	if err != nil {
		return 0, err
	}
	for _, id := range userIDs {
		s.Logger.Info("auto-marked absent, no logout", "user_id", id)
	}
	return len(userIDs), nil
}
