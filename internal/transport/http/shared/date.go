package shared

import "time"

// ParseDate accepts RFC3339, YYYY-MM-DD or DD/MM/YYYY. Returned times are
// normalized to UTC midnight so they compare cleanly with stored day keys.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "02/01/2006"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Parse("2006-01-02", value)
}

// FormatDate renders a day key the way clients expect it back.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
