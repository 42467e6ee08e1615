package holiday

import (
	"context"
	"fmt"
	"time"
)

// StoreAPI is what the service needs from persistence.
type StoreAPI interface {
	Get(ctx context.Context, id string) (Rule, error)
	List(ctx context.Context) ([]Rule, error)
	ListEnabled(ctx context.Context) ([]Rule, error)
	Create(ctx context.Context, rule Rule) (string, error)
	Delete(ctx context.Context, id string) error
	SetEnabled(ctx context.Context, id string, enabled bool) error
}

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

// Check evaluates every enabled rule against the date.
func (s *Service) Check(ctx context.Context, date time.Time) (Info, error) {
	rules, err := s.Store.ListEnabled(ctx)
	if err != nil {
		return Info{}, err
	}

	var info Info
	for _, rule := range rules {
		if !Matches(rule, date) {
			continue
		}
		info.Holidays = append(info.Holidays, Summary{
			ID:           rule.ID,
			Name:         rule.Name,
			Color:        rule.Color,
			IsGovernment: rule.IsGovernment,
		})
	}
	info.IsHoliday = len(info.Holidays) > 0
	return info, nil
}

// IsHolidayOn is the narrow view the attendance service consumes.
func (s *Service) IsHolidayOn(ctx context.Context, date time.Time) (bool, []string, error) {
	info, err := s.Check(ctx, date)
	if err != nil {
		return false, nil, err
	}
	names := make([]string, len(info.Holidays))
	for i, h := range info.Holidays {
		names[i] = h.Name
	}
	return info.IsHoliday, names, nil
}

// Month lists every holiday date of one calendar month.
func (s *Service) Month(ctx context.Context, year int, month time.Month) (MonthOccurrences, error) {
	rules, err := s.Store.ListEnabled(ctx)
	if err != nil {
		return MonthOccurrences{}, err
	}

	var out MonthOccurrences
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		for _, rule := range rules {
			if Matches(rule, d) {
				out.Dates = append(out.Dates, d.Format("2006-01-02"))
				break
			}
		}
	}
	return out, nil
}

// ImportGovernment bulk-creates exact-date government holidays.
func (s *Service) ImportGovernment(ctx context.Context, rules []Rule) (int, error) {
	count := 0
	for _, rule := range rules {
		if rule.Name == "" || rule.ExactDate == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", rule.ExactDate); err != nil {
			return count, fmt.Errorf("bad date %q: %w", rule.ExactDate, err)
		}
		rule.Kind = ""
		rule.IsGovernment = true
		rule.IsEnabled = true
		if rule.Color == "" {
			rule.Color = "#22d3ee"
		}
		if _, err := s.Store.Create(ctx, rule); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
