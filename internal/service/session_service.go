package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dinu-sreekumar/studentms/internal/models"
	"github.com/dinu-sreekumar/studentms/internal/repository"
	appErrors "github.com/dinu-sreekumar/studentms/pkg/errors"
)

type rosterClearer interface {
	ClearAll(ctx context.Context) error
}

// ClearTicket is handed out when a clear-all is requested. The clear only
// executes when the same token comes back on a confirm call before ExpiresAt.
type ClearTicket struct {
	Token     string    `json:"token"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionService owns the two-step confirmation state machine for the
// destructive roster clear: Idle -> PendingConfirm -> Executed/Cancelled.
type SessionService struct {
	store      repository.SessionStore
	roster     rosterClearer
	confirmTTL time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

// NewSessionService constructs the session service.
func NewSessionService(store repository.SessionStore, roster rosterClearer, confirmTTL time.Duration, logger *zap.Logger) *SessionService {
	if confirmTTL <= 0 {
		confirmTTL = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		store:      store,
		roster:     roster,
		confirmTTL: confirmTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestClear transitions to PendingConfirm and returns the ticket the
// caller must echo back to confirm or cancel.
func (s *SessionService) RequestClear(ctx context.Context) (*ClearTicket, error) {
	token := uuid.NewString()
	if err := s.store.PutPendingClear(ctx, token, s.confirmTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record pending clear")
	}
	return &ClearTicket{
		Token:     token,
		State:     models.ClearStatePending,
		ExpiresAt: s.now().UTC().Add(s.confirmTTL),
	}, nil
}

// ConfirmClear consumes the token and executes the clear exactly once.
func (s *SessionService) ConfirmClear(ctx context.Context, token string) (*ClearTicket, error) {
	ok, err := s.takeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown or expired confirmation token")
	}
	if err := s.roster.ClearAll(ctx); err != nil {
		return nil, err
	}
	s.logger.Warn("roster clear confirmed", zap.String("token", token))
	return &ClearTicket{Token: token, State: models.ClearStateExecuted}, nil
}

// CancelClear consumes the token without touching the roster.
func (s *SessionService) CancelClear(ctx context.Context, token string) (*ClearTicket, error) {
	ok, err := s.takeToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown or expired confirmation token")
	}
	return &ClearTicket{Token: token, State: models.ClearStateCancelled}, nil
}

func (s *SessionService) takeToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	ok, err := s.store.TakePendingClear(ctx, token)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check confirmation token")
	}
	return ok, nil
}
