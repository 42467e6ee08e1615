package holiday

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchesExactDate(t *testing.T) {
	rule := Rule{Name: "Republic Day", ExactDate: "2025-01-26"}

	assert.True(t, Matches(rule, time.Date(2025, time.January, 26, 0, 0, 0, 0, time.UTC)))
	assert.False(t, Matches(rule, time.Date(2025, time.January, 27, 0, 0, 0, 0, time.UTC)))
	assert.False(t, Matches(rule, time.Date(2026, time.January, 26, 0, 0, 0, 0, time.UTC)), "exact dates are year-bound")
}

func TestMatchesWeekly(t *testing.T) {
	rule := Rule{Name: "Weekend", Kind: KindWeekly, Weekdays: []int{0, 6}} // Sun, Sat

	assert.True(t, Matches(rule, time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)), "Saturday")
	assert.True(t, Matches(rule, time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)), "Sunday")
	assert.False(t, Matches(rule, time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC)), "Monday")
}

func TestMatchesAnnualFixed(t *testing.T) {
	rule := Rule{Name: "Independence Day", Kind: KindAnnual, StartMMDD: "08-15"}

	assert.True(t, Matches(rule, time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)))
	assert.True(t, Matches(rule, time.Date(2030, time.August, 15, 0, 0, 0, 0, time.UTC)), "recurs every year")
	assert.False(t, Matches(rule, time.Date(2025, time.August, 14, 0, 0, 0, 0, time.UTC)))
}

func TestMatchesNthWeekdayMonthly(t *testing.T) {
	// 2nd and 4th Saturday, every month.
	rule := Rule{Name: "Bank Saturday", Kind: KindNthWeekday, Weekdays: []int{6}, Nths: []int{2, 4}}

	assert.True(t, Matches(rule, time.Date(2025, time.June, 14, 0, 0, 0, 0, time.UTC)), "2nd Saturday")
	assert.True(t, Matches(rule, time.Date(2025, time.June, 28, 0, 0, 0, 0, time.UTC)), "4th Saturday")
	assert.False(t, Matches(rule, time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)), "1st Saturday")
	assert.False(t, Matches(rule, time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC)), "3rd Saturday")
	assert.False(t, Matches(rule, time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)), "Sunday")
}

func TestMatchesNthWeekdayRestrictedMonths(t *testing.T) {
	rule := Rule{Name: "Q-start Monday", Kind: KindNthWeekday, Weekdays: []int{1}, Nths: []int{1},
		Months: []time.Month{time.January, time.April}}

	assert.True(t, Matches(rule, time.Date(2025, time.April, 7, 0, 0, 0, 0, time.UTC)), "1st Monday of April")
	assert.False(t, Matches(rule, time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)), "June excluded")
}

func TestNthOfMonth(t *testing.T) {
	assert.Equal(t, 1, nthOfMonth(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, nthOfMonth(time.Date(2025, time.June, 7, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 2, nthOfMonth(time.Date(2025, time.June, 8, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 5, nthOfMonth(time.Date(2025, time.June, 29, 0, 0, 0, 0, time.UTC)))
}

type fakeRuleStore struct {
	rules  []Rule
	nextID int
}

func (f *fakeRuleStore) Get(_ context.Context, id string) (Rule, error) {
	for _, r := range f.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, ErrRuleNotFound
}

func (f *fakeRuleStore) List(_ context.Context) ([]Rule, error) {
	return append([]Rule(nil), f.rules...), nil
}

func (f *fakeRuleStore) ListEnabled(_ context.Context) ([]Rule, error) {
	var out []Rule
	for _, r := range f.rules {
		if r.IsEnabled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRuleStore) Create(_ context.Context, rule Rule) (string, error) {
	f.nextID++
	rule.ID = fmt.Sprintf("rule-%d", f.nextID)
	f.rules = append(f.rules, rule)
	return rule.ID, nil
}

func (f *fakeRuleStore) Delete(_ context.Context, id string) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return ErrRuleNotFound
}

func (f *fakeRuleStore) SetEnabled(_ context.Context, id string, enabled bool) error {
	for i, r := range f.rules {
		if r.ID == id {
			f.rules[i].IsEnabled = enabled
			return nil
		}
	}
	return ErrRuleNotFound
}

func TestCheckSkipsDisabledRules(t *testing.T) {
	store := &fakeRuleStore{}
	svc := NewService(store)

	_, err := store.Create(context.Background(), Rule{Name: "On", ExactDate: "2025-06-10", IsEnabled: true})
	require.NoError(t, err)
	id, err := store.Create(context.Background(), Rule{Name: "Off", ExactDate: "2025-06-10", IsEnabled: true})
	require.NoError(t, err)
	require.NoError(t, store.SetEnabled(context.Background(), id, false))

	info, err := svc.Check(context.Background(), time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, info.IsHoliday)
	require.Len(t, info.Holidays, 1)
	assert.Equal(t, "On", info.Holidays[0].Name)
}

func TestMonthCollectsEachDateOnce(t *testing.T) {
	store := &fakeRuleStore{}
	svc := NewService(store)

	_, err := store.Create(context.Background(), Rule{Name: "Weekend", Kind: KindWeekly, Weekdays: []int{0, 6}, IsEnabled: true})
	require.NoError(t, err)
	// overlaps the weekly rule on Saturday June 14
	_, err = store.Create(context.Background(), Rule{Name: "Founders", ExactDate: "2025-06-14", IsEnabled: true})
	require.NoError(t, err)

	out, err := svc.Month(context.Background(), 2025, time.June)
	require.NoError(t, err)
	assert.Len(t, out.Dates, 9, "June 2025 has 4 Saturdays + 5 Sundays, no duplicates")
	assert.Contains(t, out.Dates, "2025-06-14")
}

func TestImportGovernment(t *testing.T) {
	store := &fakeRuleStore{}
	svc := NewService(store)

	count, err := svc.ImportGovernment(context.Background(), []Rule{
		{Name: "Republic Day", ExactDate: "2025-01-26"},
		{Name: "", ExactDate: "2025-03-01"},     // skipped: no name
		{Name: "No date"},                       // skipped: no date
		{Name: "Gandhi Jayanti", ExactDate: "2025-10-02", Color: "#f59e0b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, r := range store.rules {
		assert.True(t, r.IsGovernment)
		assert.True(t, r.IsEnabled)
		assert.NotEmpty(t, r.Color)
	}
}
