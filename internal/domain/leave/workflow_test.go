package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLedgerStore is an in-memory StoreAPI with real CAS semantics so the
// retry path can be exercised.
type fakeLedgerStore struct {
	ledgers           map[string]*Ledger // key userID|label
	policies          []Policy
	policiesInstalled bool

	// conflictNext forces the next n SaveLedger calls to fail with
	// ErrVersionConflict.
	conflictNext int
	saves        int
}

func newFakeLedgerStore() *fakeLedgerStore {
	return &fakeLedgerStore{ledgers: map[string]*Ledger{}}
}

func ledgerKey(userID string, label Label) string { return userID + "|" + string(label) }

func cloneLedger(l *Ledger) *Ledger {
	out := *l
	out.Buckets = make(map[int]*Bucket, len(l.Buckets))
	for year, bucket := range l.Buckets {
		b := *bucket
		out.Buckets[year] = &b
	}
	return &out
}

func (f *fakeLedgerStore) GetLedger(_ context.Context, userID string, label Label) (*Ledger, error) {
	ledger, ok := f.ledgers[ledgerKey(userID, label)]
	if !ok {
		return nil, ErrLeaveTypeNotConfigured
	}
	return cloneLedger(ledger), nil
}

func (f *fakeLedgerStore) ListLedgers(_ context.Context, userID string) ([]*Ledger, error) {
	var out []*Ledger
	for _, ledger := range f.ledgers {
		if ledger.UserID == userID {
			out = append(out, cloneLedger(ledger))
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) CreateLedgers(_ context.Context, ledgers []Ledger) error {
	for i := range ledgers {
		ledger := ledgers[i]
		ledger.ID = fmt.Sprintf("ledger-%d", len(f.ledgers)+1)
		f.ledgers[ledgerKey(ledger.UserID, ledger.Label)] = cloneLedger(&ledger)
	}
	return nil
}

func (f *fakeLedgerStore) SaveLedger(_ context.Context, ledger *Ledger) error {
	f.saves++
	if f.conflictNext > 0 {
		f.conflictNext--
		return ErrVersionConflict
	}
	current, ok := f.ledgers[ledgerKey(ledger.UserID, ledger.Label)]
	if !ok {
		return ErrLeaveTypeNotConfigured
	}
	if current.Version != ledger.Version {
		return ErrVersionConflict
	}
	ledger.Version++
	f.ledgers[ledgerKey(ledger.UserID, ledger.Label)] = cloneLedger(ledger)
	return nil
}

func (f *fakeLedgerStore) ListActivePolicies(_ context.Context, roleName string) ([]Policy, error) {
	var out []Policy
	for _, p := range f.policies {
		if p.Active && (p.RoleName == "" || p.RoleName == roleName) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLedgerStore) InsertPolicies(_ context.Context, policies []Policy) error {
	f.policies = append(f.policies, policies...)
	f.policiesInstalled = true
	return nil
}

// fakeAttendance records day records in memory with the same
// one-per-(user, day) uniqueness as the real store.
type fakeAttendance struct {
	records map[string]*DayRecord // key recordID
	byDay   map[string]string     // userID|date -> recordID
	nextID  int
}

func newFakeAttendance() *fakeAttendance {
	return &fakeAttendance{records: map[string]*DayRecord{}, byDay: map[string]string{}}
}

func dayKey(userID string, date time.Time) string {
	return userID + "|" + date.Format("2006-01-02")
}

func (f *fakeAttendance) HasRecord(_ context.Context, userID string, date time.Time) (bool, error) {
	_, ok := f.byDay[dayKey(userID, date)]
	return ok, nil
}

func (f *fakeAttendance) CreateLeaveRecord(_ context.Context, userID string, date time.Time, label Label, _ string) (string, error) {
	key := dayKey(userID, date)
	if _, ok := f.byDay[key]; ok {
		return "", fmt.Errorf("duplicate record for %s", key)
	}
	f.nextID++
	id := fmt.Sprintf("rec-%d", f.nextID)
	f.records[id] = &DayRecord{ID: id, UserID: userID, Date: date, Type: string(label)}
	f.byDay[key] = id
	return id, nil
}

func (f *fakeAttendance) GetRecord(_ context.Context, recordID string) (DayRecord, error) {
	rec, ok := f.records[recordID]
	if !ok {
		return DayRecord{}, ErrRecordNotFound
	}
	return *rec, nil
}

func (f *fakeAttendance) SetApproval(_ context.Context, recordID string, approved bool, _ string) error {
	rec, ok := f.records[recordID]
	if !ok {
		return ErrRecordNotFound
	}
	rec.Approved = &approved
	return nil
}

type captureNotifier struct {
	decisions []bool
}

func (c *captureNotifier) LeaveDecision(_ context.Context, _ string, _ Label, _ time.Time, approved bool) {
	c.decisions = append(c.decisions, approved)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func seedMonthlyLedger(store *fakeLedgerStore, userID string, label Label, perMonth int, doj time.Time) {
	bucket := Bucket{Year: doj.Year()}
	for i := range bucket.Months {
		bucket.Months[i] = perMonth
	}
	_ = store.CreateLedgers(context.Background(), []Ledger{{
		UserID:  userID,
		Label:   label,
		Accrual: AccrualMonthly,
		Amount:  perMonth,
		Value:   perMonth,
		DOJ:     doj,
		Buckets: map[int]*Bucket{doj.Year(): &bucket},
	}})
}

func seedAnnualLedger(store *fakeLedgerStore, userID string, label Label, annual int, doj time.Time) {
	bucket := Bucket{Year: doj.Year(), AnnualValue: annual}
	_ = store.CreateLedgers(context.Background(), []Ledger{{
		UserID:  userID,
		Label:   label,
		Accrual: AccrualAnnual,
		Amount:  annual,
		Value:   annual,
		DOJ:     doj,
		Buckets: map[int]*Bucket{doj.Year(): &bucket},
	}})
}

func TestApplyLeaveDeductsAcrossMonthBoundary(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	doj := day(2025, time.January, 1)
	seedMonthlyLedger(store, "u1", LabelSick, 2, doj)

	// Jan 30, Jan 31, Feb 1: two days in January, one in February.
	result, err := svc.ApplyLeave(context.Background(), "u1", LabelSick, day(2025, time.January, 30), day(2025, time.February, 1), "flu")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, 3, result.RequestedDays)
	assert.Equal(t, 3, result.DeductedDays)
	assert.Len(t, result.RecordIDs, 3)

	ledger, err := store.GetLedger(context.Background(), "u1", LabelSick)
	require.NoError(t, err)
	bucket := ledger.Buckets[2025]
	assert.Equal(t, 0, bucket.Months[0], "January slot 2 - 2")
	assert.Equal(t, 1, bucket.Months[1], "February slot 2 - 1")
}

func TestApplyLeaveInsufficientInOneMonthRejectsWholeRequest(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	seedMonthlyLedger(store, "u1", LabelSick, 1, day(2025, time.January, 1))

	// Two January days against a one-per-month slot: reject, write nothing.
	_, err := svc.ApplyLeave(context.Background(), "u1", LabelSick, day(2025, time.January, 30), day(2025, time.February, 1), "flu")
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Empty(t, atd.records, "no attendance records on rejection")

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelSick)
	assert.Equal(t, 1, ledger.Value, "balance untouched")
}

func TestApplyLeaveIdempotentOnRepeat(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	seedAnnualLedger(store, "u1", LabelPlanned, 10, day(2025, time.January, 1))

	from, to := day(2025, time.March, 3), day(2025, time.March, 5)
	first, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, from, to, "trip")
	require.NoError(t, err)
	assert.True(t, first.Applied)
	assert.Equal(t, 3, first.DeductedDays)

	second, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, from, to, "trip")
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.True(t, second.AlreadyApplied)
	assert.Zero(t, second.DeductedDays)

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelPlanned)
	assert.Equal(t, 7, ledger.Value, "deducted exactly once")
	assert.Len(t, atd.records, 3, "records created exactly once")
}

func TestApplyLeavePartialOverlapDeductsOnlyNewDays(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	seedAnnualLedger(store, "u1", LabelPlanned, 10, day(2025, time.January, 1))

	_, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, day(2025, time.March, 3), day(2025, time.March, 4), "trip")
	require.NoError(t, err)

	// Overlapping re-application covering one already-booked day.
	result, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, day(2025, time.March, 4), day(2025, time.March, 6), "trip")
	require.NoError(t, err)
	assert.Equal(t, 3, result.RequestedDays)
	assert.Equal(t, 2, result.DeductedDays, "only the newly booked days deduct")

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelPlanned)
	assert.Equal(t, 6, ledger.Value)
}

func TestApplyLeaveErrors(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	ctx := context.Background()
	_, err := svc.ApplyLeave(ctx, "nobody", LabelSick, day(2025, time.March, 3), day(2025, time.March, 3), "")
	assert.ErrorIs(t, err, ErrLeaveTypeNotConfigured)

	seedMonthlyLedger(store, "u1", LabelSick, 1, day(2025, time.January, 1))
	_, err = svc.ApplyLeave(ctx, "u1", LabelSick, day(2026, time.March, 3), day(2026, time.March, 3), "")
	assert.ErrorIs(t, err, ErrNoBucketForYear)

	_, err = svc.ApplyLeave(ctx, "u1", LabelSick, day(2025, time.March, 3), day(2025, time.March, 1), "")
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestApplyLeaveRetriesOnVersionConflict(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	seedAnnualLedger(store, "u1", LabelPlanned, 10, day(2025, time.January, 1))
	store.conflictNext = 1

	result, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, day(2025, time.March, 3), day(2025, time.March, 3), "trip")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.GreaterOrEqual(t, store.saves, 2, "first save conflicts, retry succeeds")
}

func TestApplyLeaveGivesUpAfterBoundedRetries(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	seedAnnualLedger(store, "u1", LabelPlanned, 10, day(2025, time.January, 1))
	store.conflictNext = casRetries + 1

	_, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, day(2025, time.April, 1), day(2025, time.April, 1), "trip")
	assert.ErrorIs(t, err, ErrServerBusy)
}

func TestRejectionRestoresOneDayPerRecord(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	notifier := &captureNotifier{}
	svc := NewService(store, atd, notifier)

	seedMonthlyLedger(store, "u1", LabelSick, 2, day(2025, time.January, 1))

	result, err := svc.ApplyLeave(context.Background(), "u1", LabelSick, day(2025, time.January, 30), day(2025, time.February, 1), "flu")
	require.NoError(t, err)
	require.Len(t, result.RecordIDs, 3)

	// Reject every record: three days restored, each into the month the
	// record's own date falls in.
	for _, id := range result.RecordIDs {
		_, err := svc.SetApproval(context.Background(), id, false, "MANAGER")
		require.NoError(t, err)
	}

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelSick)
	bucket := ledger.Buckets[2025]
	assert.Equal(t, 2, bucket.Months[0], "January restored to 2")
	assert.Equal(t, 2, bucket.Months[1], "February restored to 2")
	assert.Equal(t, 2, ledger.Value)
	assert.Equal(t, []bool{false, false, false}, notifier.decisions)
}

func TestRepeatedDecisionDoesNotRestoreTwice(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	notifier := &captureNotifier{}
	svc := NewService(store, atd, notifier)

	seedMonthlyLedger(store, "u1", LabelSick, 2, day(2025, time.January, 1))

	result, err := svc.ApplyLeave(context.Background(), "u1", LabelSick, day(2025, time.March, 3), day(2025, time.March, 3), "flu")
	require.NoError(t, err)
	require.Len(t, result.RecordIDs, 1)

	_, err = svc.SetApproval(context.Background(), result.RecordIDs[0], false, "MANAGER")
	require.NoError(t, err)

	// A replayed rejection must not credit a second day, and a later
	// approval must not flip the decided record either.
	_, err = svc.SetApproval(context.Background(), result.RecordIDs[0], false, "MANAGER")
	require.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = svc.SetApproval(context.Background(), result.RecordIDs[0], true, "MANAGER")
	require.ErrorIs(t, err, ErrAlreadyDecided)

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelSick)
	assert.Equal(t, 2, ledger.Value, "single restore only")
	assert.Equal(t, 2, ledger.Buckets[2025].Months[2])

	record, err := atd.GetRecord(context.Background(), result.RecordIDs[0])
	require.NoError(t, err)
	require.NotNil(t, record.Approved)
	assert.False(t, *record.Approved)
	assert.Equal(t, []bool{false}, notifier.decisions, "one notification for one decision")
}

func TestApprovalDoesNotTouchLedger(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	notifier := &captureNotifier{}
	svc := NewService(store, atd, notifier)

	seedAnnualLedger(store, "u1", LabelPlanned, 10, day(2025, time.January, 1))

	result, err := svc.ApplyLeave(context.Background(), "u1", LabelPlanned, day(2025, time.May, 5), day(2025, time.May, 5), "trip")
	require.NoError(t, err)

	record, err := svc.SetApproval(context.Background(), result.RecordIDs[0], true, "MANAGER")
	require.NoError(t, err)
	require.NotNil(t, record.Approved)
	assert.True(t, *record.Approved)

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelPlanned)
	assert.Equal(t, 9, ledger.Value, "approval keeps the deduction from application time")
	assert.Equal(t, []bool{true}, notifier.decisions)
}

func TestRejectionRestoresFixedIntoJoinMonth(t *testing.T) {
	store := newFakeLedgerStore()
	atd := newFakeAttendance()
	svc := NewService(store, atd, nil)

	doj := day(2025, time.September, 1)
	bucket := Bucket{Year: 2025}
	bucket.Months[8] = 15
	require.NoError(t, store.CreateLedgers(context.Background(), []Ledger{{
		UserID: "u1", Label: LabelMaternity, Accrual: AccrualFixed, Amount: 15, Value: 15, DOJ: doj,
		Buckets: map[int]*Bucket{2025: &bucket},
	}}))

	result, err := svc.ApplyLeave(context.Background(), "u1", LabelMaternity, day(2025, time.November, 10), day(2025, time.November, 11), "")
	require.NoError(t, err)

	ledger, _ := store.GetLedger(context.Background(), "u1", LabelMaternity)
	assert.Equal(t, 13, ledger.Buckets[2025].Months[8], "fixed deducts from the join-month slot")

	_, err = svc.SetApproval(context.Background(), result.RecordIDs[0], false, "HR")
	require.NoError(t, err)

	ledger, _ = store.GetLedger(context.Background(), "u1", LabelMaternity)
	assert.Equal(t, 14, ledger.Buckets[2025].Months[8], "restore lands back in the join month")
	assert.Equal(t, 14, ledger.Value)
}

func TestBalancesExtendsIntoCurrentYear(t *testing.T) {
	store := newFakeLedgerStore()
	svc := NewService(store, newFakeAttendance(), nil)

	doj := day(2020, time.January, 1)
	seedMonthlyLedger(store, "u1", LabelSick, 1, doj)

	ledgers, err := svc.Balances(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, ledgers, 1)

	year := time.Now().UTC().Year()
	_, ok := ledgers[0].Buckets[year]
	assert.True(t, ok, "current-year bucket lazily appended")
	_, ok = ledgers[0].Buckets[2020]
	assert.True(t, ok, "seed year kept")
}

func TestInclusiveDays(t *testing.T) {
	one, err := InclusiveDays(day(2025, time.January, 10), day(2025, time.January, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, one)

	three, err := InclusiveDays(day(2025, time.January, 10), day(2025, time.January, 12))
	require.NoError(t, err)
	assert.Equal(t, 3, three)

	_, err = InclusiveDays(day(2025, time.February, 10), day(2025, time.February, 9))
	assert.ErrorIs(t, err, ErrInvalidRange)
}
