package expense

import (
	"context"
	"math"
	"time"
)

// StoreAPI is what the service needs from persistence.
type StoreAPI interface {
	Get(ctx context.Context, id string) (Credit, error)
	Create(ctx context.Context, c Credit) (Credit, error)
	Delete(ctx context.Context, id string) error
	SetApproval(ctx context.Context, id string, approved bool, approvedBy, remarks string) error
	ApproveAllPending(ctx context.Context, userID, approvedBy, remarks string) (int, error)
	List(ctx context.Context, f ListFilter) ([]Credit, error)
	ApprovedTotal(ctx context.Context, userID string, from, to time.Time) (MonthTotal, error)
	UserKmsCharge(ctx context.Context, userID string) (float64, error)
}

// Visibility scopes actions to the users the actor may see. Satisfied by
// the access resolver.
type Visibility interface {
	VisibleList(ctx context.Context, actingUserID string) ([]string, error)
}

type Service struct {
	Store      StoreAPI
	Visibility Visibility

	Now func() time.Time
}

func NewService(store StoreAPI, visibility Visibility) *Service {
	return &Service{Store: store, Visibility: visibility, Now: time.Now}
}

func (s *Service) visibleTo(ctx context.Context, actorID, targetID string) (bool, error) {
	if actorID == targetID {
		return true, nil
	}
	visible, err := s.Visibility.VisibleList(ctx, actorID)
	if err != nil {
		return false, err
	}
	for _, id := range visible {
		if id == targetID {
			return true, nil
		}
	}
	return false, nil
}

// Submit files a claim. The payout amount is always derived from the
// claimant's per-km rate; any client-sent amount is ignored.
func (s *Service) Submit(ctx context.Context, c Credit) (Credit, error) {
	if c.Mode != "" && !validMode(c.Mode) {
		return Credit{}, ErrBadTransportMode
	}
	charge, err := s.Store.UserKmsCharge(ctx, c.UserID)
	if err != nil {
		return Credit{}, err
	}
	c.Amount = math.Round(c.Kms*charge*100) / 100
	if c.TravelDate.IsZero() {
		c.TravelDate = s.Now().UTC().Truncate(24 * time.Hour)
	}
	return s.Store.Create(ctx, c)
}

func validMode(mode string) bool {
	for _, m := range TransportModes {
		if m == mode {
			return true
		}
	}
	return false
}

// Approve decides one claim, requiring the claimant to be visible to the
// approver.
func (s *Service) Approve(ctx context.Context, actorID, creditID string, approved bool, approverName, remarks string) (Credit, error) {
	credit, err := s.Store.Get(ctx, creditID)
	if err != nil {
		return Credit{}, err
	}
	ok, err := s.visibleTo(ctx, actorID, credit.UserID)
	if err != nil {
		return Credit{}, err
	}
	if !ok {
		return Credit{}, ErrNotVisible
	}
	if remarks == "" {
		remarks = "By " + approverName
	}
	if err := s.Store.SetApproval(ctx, creditID, approved, approverName, remarks); err != nil {
		return Credit{}, err
	}
	return s.Store.Get(ctx, creditID)
}

// ApproveAll approves every undecided claim of one visible user.
func (s *Service) ApproveAll(ctx context.Context, actorID, userID, approverName, remarks string) (int, error) {
	ok, err := s.visibleTo(ctx, actorID, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrNotVisible
	}
	if remarks == "" {
		remarks = "Approved in bulk"
	}
	return s.Store.ApproveAllPending(ctx, userID, approverName, remarks)
}

// ListForApproval lists claims of every visible user, optionally filtered.
func (s *Service) ListForApproval(ctx context.Context, actorID string, f ListFilter) ([]Credit, error) {
	visible, err := s.Visibility.VisibleList(ctx, actorID)
	if err != nil {
		return nil, err
	}
	f.UserIDs = visible
	return s.Store.List(ctx, f)
}

// MyCredits lists the target user's claims for the current month. The
// target must be the actor or visible to them.
func (s *Service) MyCredits(ctx context.Context, actorID, userID string) ([]Credit, error) {
	ok, err := s.visibleTo(ctx, actorID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotVisible
	}
	from, to := s.currentMonth()
	return s.Store.List(ctx, ListFilter{UserIDs: []string{userID}, From: from, To: to})
}

// ApprovedThisMonth totals the user's approved claims for the current
// month.
func (s *Service) ApprovedThisMonth(ctx context.Context, actorID, userID string) (MonthTotal, error) {
	ok, err := s.visibleTo(ctx, actorID, userID)
	if err != nil {
		return MonthTotal{}, err
	}
	if !ok {
		return MonthTotal{}, ErrNotVisible
	}
	from, to := s.currentMonth()
	return s.Store.ApprovedTotal(ctx, userID, from, to)
}

func (s *Service) currentMonth() (time.Time, time.Time) {
	now := s.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, -1)
}
