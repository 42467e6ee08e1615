package leave

import (
	"strings"
	"time"
)

// Label identifies a leave type. The set is closed; policies or requests
// referencing anything else are rejected.
type Label string

const (
	LabelSick      Label = "Sick Leave"
	LabelCasual    Label = "Casual Leave"
	LabelPlanned   Label = "Planned Leave"
	LabelMaternity Label = "Maternity Leave"
	LabelPaternity Label = "Paternity Leave"
	LabelCompoff   Label = "Compoff Leave"
)

var allLabels = []Label{LabelSick, LabelCasual, LabelPlanned, LabelMaternity, LabelPaternity, LabelCompoff}

// Labels returns the closed set of leave labels.
func Labels() []Label {
	return append([]Label(nil), allLabels...)
}

// NormalizeLabel maps free-form policy labels onto the closed enum.
// Unknown labels return false and are skipped by the accrual engine.
func NormalizeLabel(raw string) (Label, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(key, "sick"):
		return LabelSick, true
	case strings.Contains(key, "casual"):
		return LabelCasual, true
	case strings.Contains(key, "planned"):
		return LabelPlanned, true
	case strings.Contains(key, "maternity"):
		return LabelMaternity, true
	case strings.Contains(key, "paternity"):
		return LabelPaternity, true
	case strings.Contains(key, "comp"):
		return LabelCompoff, true
	}
	return "", false
}

// AccrualType is the policy for how entitlement is granted.
type AccrualType string

const (
	AccrualMonthly AccrualType = "monthly"
	AccrualAnnual  AccrualType = "annual"
	AccrualFixed   AccrualType = "fixed"
)

// Bucket is one calendar year of entitlement: twelve month slots plus the
// annual running value used by annual-accrual ledgers.
type Bucket struct {
	Year        int     `json:"year"`
	Months      [12]int `json:"months"`
	AnnualValue int     `json:"annualValue"`
}

// Ledger is the per-user, per-label entitlement record. Value caches the
// available total; Buckets hold the per-year breakdown keyed by year for
// O(1) lookup. Version backs the optimistic-concurrency write path.
type Ledger struct {
	ID      string          `json:"id"`
	UserID  string          `json:"userId"`
	Label   Label           `json:"label"`
	Accrual AccrualType     `json:"accrualType"`
	Amount  int             `json:"amount"`
	Value   int             `json:"value"`
	DOJ     time.Time       `json:"doj"`
	Version int64           `json:"-"`
	Buckets map[int]*Bucket `json:"buckets"`
}

func (l *Ledger) Bucket(year int) (*Bucket, bool) {
	b, ok := l.Buckets[year]
	return b, ok
}

// Policy is a (role, label) entitlement rule administered by HR.
type Policy struct {
	ID       string      `json:"id"`
	RoleName string      `json:"role"`
	Label    string      `json:"label"`
	Amount   int         `json:"amount"`
	Accrual  AccrualType `json:"accrualType"`
	Active   bool        `json:"active"`
}

// DefaultPolicies is the built-in fallback installed when no policies have
// been configured yet, so a fresh system stays usable before HR sets any.
func DefaultPolicies() []Policy {
	return []Policy{
		{RoleName: "", Label: string(LabelSick), Amount: 1, Accrual: AccrualMonthly, Active: true},
		{RoleName: "", Label: string(LabelCasual), Amount: 1, Accrual: AccrualMonthly, Active: true},
		{RoleName: "", Label: string(LabelPlanned), Amount: 7, Accrual: AccrualAnnual, Active: true},
		{RoleName: "", Label: string(LabelCompoff), Amount: 0, Accrual: AccrualFixed, Active: false},
		{RoleName: "", Label: string(LabelMaternity), Amount: 15, Accrual: AccrualFixed, Active: true},
		{RoleName: "", Label: string(LabelPaternity), Amount: 0, Accrual: AccrualAnnual, Active: true},
	}
}
