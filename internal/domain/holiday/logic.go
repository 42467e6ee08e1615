package holiday

import "time"

// Matches reports whether the rule fires on the given date.
func Matches(rule Rule, date time.Time) bool {
	if rule.ExactDate != "" {
		return rule.ExactDate == date.Format("2006-01-02")
	}

	switch rule.Kind {
	case KindWeekly:
		return containsInt(rule.Weekdays, int(date.Weekday()))
	case KindAnnual:
		return rule.StartMMDD == date.Format("01-02")
	case KindNthWeekday:
		months := rule.Months
		if len(months) == 0 {
			// unset month list means every month
			for m := time.January; m <= time.December; m++ {
				months = append(months, m)
			}
		}
		if !containsMonth(months, date.Month()) {
			return false
		}
		if !containsInt(rule.Weekdays, int(date.Weekday())) {
			return false
		}
		return containsInt(rule.Nths, nthOfMonth(date))
	}
	return false
}

// nthOfMonth returns which occurrence of its weekday the date is within
// its month, starting at 1.
func nthOfMonth(date time.Time) int {
	return (date.Day()-1)/7 + 1
}

func containsInt(haystack []int, needle int) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}

func containsMonth(haystack []time.Month, needle time.Month) bool {
	for _, v := range haystack {
		if v == needle {
			return true
		}
	}
	return false
}
