package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Engine seeds per-user ledgers from role policies and extends ledgers into
// new calendar years. It never re-grants inside a year: monthly-accrual
// types are seeded once at provisioning, not replenished by a recurring
// job.
type Engine struct {
	Store StoreAPI
}

func NewEngine(store StoreAPI) *Engine {
	return &Engine{Store: store}
}

// SeedLedgers creates one ledger per active policy label for a newly
// provisioned user, pro-rated by joining date. When no policies are
// configured at all, the built-in defaults are installed first; that is a
// deliberate fallback so the system works before an administrator sets
// policies, and it is logged at warn level rather than applied silently.
func (e *Engine) SeedLedgers(ctx context.Context, userID, roleName string, doj time.Time) ([]Ledger, error) {
	policies, err := e.Store.ListActivePolicies(ctx, roleName)
	if err != nil {
		return nil, fmt.Errorf("list leave policies: %w", err)
	}

	if len(policies) == 0 {
		slog.Warn("no leave policies configured, installing defaults", "role", roleName)
		if err := e.Store.InsertPolicies(ctx, DefaultPolicies()); err != nil {
			return nil, fmt.Errorf("install default policies: %w", err)
		}
		policies, err = e.Store.ListActivePolicies(ctx, roleName)
		if err != nil {
			return nil, err
		}
	}

	if doj.IsZero() {
		doj = time.Now().UTC()
	}

	ledgers := make([]Ledger, 0, len(policies))
	for _, policy := range policies {
		if !policy.Active {
			continue
		}
		label, ok := NormalizeLabel(policy.Label)
		if !ok {
			slog.Warn("skipping policy with unknown label", "label", policy.Label)
			continue
		}

		bucket, initial := seedBucket(policy, doj)
		ledgers = append(ledgers, Ledger{
			UserID:  userID,
			Label:   label,
			Accrual: policy.Accrual,
			Amount:  policy.Amount,
			Value:   initial,
			DOJ:     midnight(doj),
			Buckets: map[int]*Bucket{bucket.Year: &bucket},
		})
	}

	if len(ledgers) == 0 {
		return nil, nil
	}
	if err := e.Store.CreateLedgers(ctx, ledgers); err != nil {
		return nil, fmt.Errorf("create ledgers: %w", err)
	}
	return ledgers, nil
}

// seedBucket computes the join-year bucket and the initial available total
// for one policy.
func seedBucket(policy Policy, doj time.Time) (Bucket, int) {
	bucket := Bucket{Year: doj.Year()}
	joinIdx := monthIndex(doj.Month())
	amount := policy.Amount
	if amount < 0 {
		amount = 0
	}

	switch policy.Accrual {
	case AccrualMonthly:
		// Each month slot carries the per-month entitlement; consumption is
		// checked against the slot of the month the day falls in.
		for i := range bucket.Months {
			bucket.Months[i] = amount
		}
		return bucket, amount

	case AccrualAnnual:
		remaining := 12 - joinIdx
		initial := amount * remaining / 12
		if initial < 0 {
			initial = 0
		}
		share := initial / remaining
		for i := joinIdx; i < 12; i++ {
			bucket.Months[i] = share
		}
		// Remainder days land in December.
		bucket.Months[11] += initial - share*remaining
		bucket.AnnualValue = initial
		return bucket, initial

	default: // AccrualFixed
		bucket.Months[joinIdx] = amount
		return bucket, amount
	}
}

// EnsureYearBucket lazily appends a bucket for year, accruing fresh
// entitlement according to the ledger's type. Past-year buckets are
// immutable history and are never recomputed. Returns the bucket and
// whether the ledger was modified.
func EnsureYearBucket(ledger *Ledger, year int) (*Bucket, bool) {
	if b, ok := ledger.Buckets[year]; ok {
		return b, false
	}

	bucket := &Bucket{Year: year}
	granted := 0
	switch ledger.Accrual {
	case AccrualMonthly:
		for i := range bucket.Months {
			bucket.Months[i] = ledger.Amount
		}
		granted = ledger.Amount
	case AccrualAnnual:
		share := ledger.Amount / 12
		for i := range bucket.Months {
			bucket.Months[i] = share
		}
		bucket.Months[11] += ledger.Amount - share*12
		bucket.AnnualValue = ledger.Amount
		granted = ledger.Amount
	default:
		// Fixed grants are one-time; later years start empty.
	}

	if ledger.Buckets == nil {
		ledger.Buckets = map[int]*Bucket{}
	}
	ledger.Buckets[year] = bucket
	ledger.Value += granted
	return bucket, true
}
