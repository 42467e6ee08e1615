package leave

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// casRetries bounds the optimistic-concurrency retry loop on ledger writes.
const casRetries = 3

// Service orchestrates leave application and approval over the ledger,
// attendance and notification collaborators.
type Service struct {
	Store      StoreAPI
	Attendance AttendanceAPI
	Engine     *Engine
	Notifier   Notifier
}

func NewService(store StoreAPI, attendance AttendanceAPI, notifier Notifier) *Service {
	return &Service{
		Store:      store,
		Attendance: attendance,
		Engine:     NewEngine(store),
		Notifier:   notifier,
	}
}

// ApplyResult reports what a leave application did. AlreadyApplied means
// every day in the range was recorded before the call: a no-op success, not
// an error.
type ApplyResult struct {
	Applied        bool     `json:"applied"`
	AlreadyApplied bool     `json:"alreadyApplied"`
	RequestedDays  int      `json:"requestedDays"`
	DeductedDays   int      `json:"deductedDays"`
	RecordIDs      []string `json:"recordIds,omitempty"`
}

// ApplyLeave applies for leave over an inclusive date range. The balance
// check and the deduction are split across the month each day falls in
// (annual ledgers check the annual value instead). The read-check-deduct
// sequence runs under a compare-and-swap on the ledger version so two
// concurrent applications cannot both spend the same balance.
func (s *Service) ApplyLeave(ctx context.Context, userID string, label Label, from, to time.Time, reason string) (ApplyResult, error) {
	requested, err := InclusiveDays(from, to)
	if err != nil {
		return ApplyResult{}, err
	}

	var result ApplyResult
	for attempt := 0; attempt < casRetries; attempt++ {
		result, err = s.applyOnce(ctx, userID, label, from, to, reason, requested)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return result, err
	}
	return ApplyResult{}, ErrServerBusy
}

func (s *Service) applyOnce(ctx context.Context, userID string, label Label, from, to time.Time, reason string, requested int) (ApplyResult, error) {
	ledger, err := s.Store.GetLedger(ctx, userID, label)
	if err != nil {
		return ApplyResult{}, err
	}

	if _, ok := ledger.Bucket(from.Year()); !ok {
		return ApplyResult{}, fmt.Errorf("%w: %d", ErrNoBucketForYear, from.Year())
	}

	// Days already recorded are skipped so re-applying the same range
	// cannot double-book or double-deduct.
	var newDays []time.Time
	var deductSpans []monthSpan
	for d := midnight(from); !d.After(midnight(to)); d = d.AddDate(0, 0, 1) {
		exists, err := s.Attendance.HasRecord(ctx, userID, d)
		if err != nil {
			return ApplyResult{}, err
		}
		if exists {
			continue
		}
		newDays = append(newDays, d)
		deductSpans = addDay(deductSpans, d)
	}

	if len(newDays) == 0 {
		return ApplyResult{AlreadyApplied: true, RequestedDays: requested}, nil
	}

	deducted := len(newDays)
	if err := checkBalance(ledger, deductSpans, deducted); err != nil {
		return ApplyResult{}, err
	}
	if err := deduct(ledger, deductSpans, deducted); err != nil {
		return ApplyResult{}, err
	}

	// The versioned save is the serialization point: the balance is spent
	// before any day record exists, so a conflicting writer retries against
	// a clean slate instead of finding half-booked days.
	if err := s.Store.SaveLedger(ctx, ledger); err != nil {
		return ApplyResult{}, err
	}

	created := make([]string, 0, len(newDays))
	for _, d := range newDays {
		id, err := s.Attendance.CreateLeaveRecord(ctx, userID, d, label, reason)
		if err != nil {
			// The day was booked concurrently after our probe; hand its
			// deduction back before surfacing the error.
			if rerr := s.restoreDay(ctx, userID, label, d); rerr != nil {
				return ApplyResult{}, rerr
			}
			return ApplyResult{}, err
		}
		created = append(created, id)
	}

	return ApplyResult{
		Applied:       true,
		RequestedDays: requested,
		DeductedDays:  deducted,
		RecordIDs:     created,
	}, nil
}

// checkBalance verifies every month span fits its slot (or the annual
// value, or the join-month slot for fixed grants) before anything is
// written.
func checkBalance(ledger *Ledger, spans []monthSpan, requested int) error {
	switch ledger.Accrual {
	case AccrualAnnual:
		bucket, ok := ledger.Bucket(spans[0].Year)
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoBucketForYear, spans[0].Year)
		}
		available := bucket.AnnualValue
		if available == 0 {
			available = ledger.Value
		}
		if requested > available {
			return ErrInsufficientBalance
		}
	case AccrualFixed:
		bucket, ok := ledger.Bucket(spans[0].Year)
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoBucketForYear, spans[0].Year)
		}
		if requested > bucket.Months[monthIndex(ledger.DOJ.Month())] {
			return ErrInsufficientBalance
		}
	default: // monthly: each month slot must cover the days falling in it
		for _, span := range spans {
			bucket, ok := ledger.Bucket(span.Year)
			if !ok {
				return fmt.Errorf("%w: %d", ErrNoBucketForYear, span.Year)
			}
			if span.Days > bucket.Months[monthIndex(span.Month)] {
				return ErrInsufficientBalance
			}
		}
	}
	return nil
}

// deduct applies the spans to the ledger in memory. checkBalance ran
// against the same spans, so a successful deduction can never push a
// slot below zero.
func deduct(ledger *Ledger, spans []monthSpan, total int) error {
	switch ledger.Accrual {
	case AccrualAnnual:
		bucket, ok := ledger.Bucket(spans[0].Year)
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoBucketForYear, spans[0].Year)
		}
		bucket.AnnualValue -= total
	case AccrualFixed:
		bucket, ok := ledger.Bucket(spans[0].Year)
		if !ok {
			return fmt.Errorf("%w: %d", ErrNoBucketForYear, spans[0].Year)
		}
		bucket.Months[monthIndex(ledger.DOJ.Month())] -= total
	default:
		for _, span := range spans {
			bucket, ok := ledger.Bucket(span.Year)
			if !ok {
				return fmt.Errorf("%w: %d", ErrNoBucketForYear, span.Year)
			}
			bucket.Months[monthIndex(span.Month)] -= span.Days
		}
	}
	ledger.Value -= total
	return nil
}

// SetApproval moves one day record to its terminal state. Rejection
// restores exactly one day into the bucket located by the record's own
// date; approval leaves the ledger untouched since the deduction already
// happened at application time. A record carries at most one decision;
// repeat calls fail with ErrAlreadyDecided so a replayed rejection cannot
// restore the same day twice. The notification side effect fires after
// the ledger write and never fails the operation.
func (s *Service) SetApproval(ctx context.Context, recordID string, approved bool, approverName string) (DayRecord, error) {
	record, err := s.Attendance.GetRecord(ctx, recordID)
	if err != nil {
		return DayRecord{}, err
	}
	if record.Approved != nil {
		return DayRecord{}, fmt.Errorf("%w: %s", ErrAlreadyDecided, recordID)
	}

	if !approved {
		label, ok := NormalizeLabel(record.Type)
		if !ok {
			return DayRecord{}, fmt.Errorf("record %s is not a leave day", recordID)
		}
		if err := s.restoreDay(ctx, record.UserID, label, record.Date); err != nil {
			return DayRecord{}, err
		}
	}

	remarks := "By " + approverName
	if err := s.Attendance.SetApproval(ctx, recordID, approved, remarks); err != nil {
		return DayRecord{}, err
	}

	if s.Notifier != nil {
		if label, ok := NormalizeLabel(record.Type); ok {
			s.Notifier.LeaveDecision(ctx, record.UserID, label, record.Date, approved)
		}
	}

	record.Approved = &approved
	return record, nil
}

// restoreDay credits one day back, under the same CAS loop as deduction.
func (s *Service) restoreDay(ctx context.Context, userID string, label Label, date time.Time) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		ledger, err := s.Store.GetLedger(ctx, userID, label)
		if err != nil {
			return err
		}

		bucket, _ := EnsureYearBucket(ledger, date.Year())
		switch ledger.Accrual {
		case AccrualAnnual:
			bucket.AnnualValue++
		case AccrualFixed:
			bucket.Months[monthIndex(ledger.DOJ.Month())]++
		default:
			bucket.Months[monthIndex(date.Month())]++
		}
		ledger.Value++

		err = s.Store.SaveLedger(ctx, ledger)
		if errors.Is(err, ErrVersionConflict) {
			continue
		}
		return err
	}
	return ErrServerBusy
}

// Balances lists the user's ledgers, lazily extending each into the
// current calendar year on first access. Prior years are never touched.
func (s *Service) Balances(ctx context.Context, userID string) ([]*Ledger, error) {
	ledgers, err := s.Store.ListLedgers(ctx, userID)
	if err != nil {
		return nil, err
	}
	year := time.Now().UTC().Year()
	for _, ledger := range ledgers {
		if _, changed := EnsureYearBucket(ledger, year); !changed {
			continue
		}
		if err := s.Store.SaveLedger(ctx, ledger); err != nil && !errors.Is(err, ErrVersionConflict) {
			return nil, err
		}
	}
	return ledgers, nil
}
