package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hrms/internal/domain/leave"
)

// Mailer delivers one mail. Implementations live in platform/email; a
// noop mailer stands in when delivery is disabled.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// StoreAPI is what the service needs from persistence.
type StoreAPI interface {
	Create(ctx context.Context, n Notification) (string, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	Recipient(ctx context.Context, userID string) (name, email string, err error)
}

// Service persists in-app notifications and mirrors the important ones to
// mail. Everything here is best-effort: callers never see delivery
// failures, only the log does.
type Service struct {
	Store       StoreAPI
	Mailer      Mailer
	Logger      *slog.Logger
	CompanyName string

	// SendTimeout bounds the detached mail delivery.
	SendTimeout time.Duration
}

func NewService(store StoreAPI, mailer Mailer, logger *slog.Logger, companyName string) *Service {
	return &Service{
		Store:       store,
		Mailer:      mailer,
		Logger:      logger,
		CompanyName: companyName,
		SendTimeout: 15 * time.Second,
	}
}

// LeaveDecision records the decision as an in-app notification and mails
// the employee. Called by the leave workflow after the ledger write
// committed, so nothing here can undo the decision.
func (s *Service) LeaveDecision(ctx context.Context, userID string, label leave.Label, date time.Time, approved bool) {
	name, email, err := s.Store.Recipient(ctx, userID)
	if err != nil {
		s.Logger.Warn("leave decision recipient lookup failed", "user_id", userID, "error", err)
		return
	}

	verdict := TypeLeaveRejected
	title := fmt.Sprintf("Leave rejected: %s on %s", label, date.Format("2006-01-02"))
	if approved {
		verdict = TypeLeaveApproved
		title = fmt.Sprintf("Leave approved: %s on %s", label, date.Format("2006-01-02"))
	}

	if _, err := s.Store.Create(ctx, Notification{
		UserID: userID,
		Type:   verdict,
		Title:  title,
	}); err != nil {
		s.Logger.Warn("notification insert failed", "user_id", userID, "error", err)
	}

	if email == "" {
		return
	}
	subject, body, err := RenderLeaveMail(approved, LeaveMailVars{
		Name:        name,
		LeaveType:   string(label),
		Date:        date.Format("2006-01-02"),
		CompanyName: s.CompanyName,
	})
	if err != nil {
		s.Logger.Warn("leave mail render failed", "error", err)
		return
	}

	// Detach from the request so a slow relay cannot hold the caller.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), s.SendTimeout)
		defer cancel()
		if err := s.Mailer.Send(sendCtx, email, subject, body); err != nil {
			s.Logger.Warn("leave mail send failed", "to", email, "error", err)
		}
	}()
}

// Notify persists a plain in-app notification.
func (s *Service) Notify(ctx context.Context, userID, ntype, title, body string) error {
	_, err := s.Store.Create(ctx, Notification{UserID: userID, Type: ntype, Title: title, Body: body})
	return err
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]Notification, error) {
	return s.Store.ListForUser(ctx, userID, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.Store.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return s.Store.MarkAllRead(ctx, userID)
}
