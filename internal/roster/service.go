package roster

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/internal/domain"
)

var (
	ErrUnknownUser     = errors.New("user not registered")
	ErrAlreadyOperator = errors.New("user is already an operator")
	ErrNotOperator     = errors.New("user is not an operator")
	ErrInitialOperator = errors.New("the initial operator cannot be demoted")
)

// Service manages users and the operator roster. Operator status is checked
// fresh on every privileged action rather than cached in a session.
type Service struct {
	repo            Repository
	initialOperator int64
}

func NewService(r Repository, initialOperator int64) *Service {
	return &Service{repo: r, initialOperator: initialOperator}
}

// Register records a user on first contact. Repeat calls refresh the profile
// fields and are otherwise no-ops.
func (s *Service) Register(ctx context.Context, u domain.User) error {
	if u.JoinedAt.IsZero() {
		u.JoinedAt = time.Now().UTC()
	}
	if u.Status == "" {
		u.Status = domain.UserActive
	}
	if err := s.repo.UpsertUser(ctx, &u); err != nil {
		return err
	}
	logger.SVCRoster.Debug("user registered",
		slog.String("event", "roster.register"),
		slog.Int64("user_id", u.ID),
	)
	return nil
}

// GetUserByTelegramID resolves a registered user by id.
func (s *Service) GetUserByTelegramID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// IsOperator reports whether the identity holds operator privileges right now.
func (s *Service) IsOperator(ctx context.Context, id int64) (bool, error) {
	if id == s.initialOperator {
		return true, nil
	}
	return s.repo.IsOperator(ctx, id)
}

// Promote grants operator privileges to a registered user.
func (s *Service) Promote(ctx context.Context, id int64) error {
	if _, err := s.repo.GetUser(ctx, id); err != nil {
		return err
	}
	added, err := s.repo.AddOperator(ctx, id)
	if err != nil {
		return err
	}
	if !added {
		return ErrAlreadyOperator
	}
	logger.SVCRoster.Info("operator added",
		slog.String("event", "roster.promote"),
		slog.Int64("user_id", id),
	)
	return nil
}

// Demote revokes operator privileges. The initial operator is protected.
func (s *Service) Demote(ctx context.Context, id int64) error {
	if id == s.initialOperator {
		return ErrInitialOperator
	}
	removed, err := s.repo.RemoveOperator(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotOperator
	}
	logger.SVCRoster.Info("operator removed",
		slog.String("event", "roster.demote"),
		slog.Int64("user_id", id),
	)
	return nil
}

// Operators lists every privileged identity including the initial operator.
func (s *Service) Operators(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListOperators(ctx)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if id == s.initialOperator {
			return ids, nil
		}
	}
	return append([]int64{s.initialOperator}, ids...), nil
}

// Users lists every registered user.
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return s.repo.ListUsers(ctx)
}

// ActiveUserIDs lists recipients eligible for broadcasts.
func (s *Service) ActiveUserIDs(ctx context.Context) ([]int64, error) {
	return s.repo.ListActiveUserIDs(ctx)
}

// CountUsers reports the total number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.repo.CountUsers(ctx)
}
