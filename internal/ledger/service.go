package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/internal/domain"
)

var (
	ErrOrderNotFound    = errors.New("order not found")
	ErrAlreadyModerated = errors.New("order already moderated")
	ErrReasonRequired   = errors.New("rejection reason is required")
	ErrMissingProof     = errors.New("order submission requires a proof")
)

// Notifier delivers order events to interested parties. Delivery is
// best-effort: a failed notification never rolls back a ledger write.
type Notifier interface {
	// OrderSubmitted announces a new pending order to operators.
	OrderSubmitted(ctx context.Context, o *domain.Order)
	// OrderModerated informs the order's owner about the decision.
	OrderModerated(ctx context.Context, o *domain.Order)
}

// Service owns the order lifecycle: creation at proof submission and the
// one-shot pending -> approved/rejected moderation transition.
type Service struct {
	repo     Repository
	notifier Notifier
}

func NewService(r Repository, n Notifier) *Service {
	return &Service{repo: r, notifier: n}
}

// Submit captures the service price for the chosen method, writes the order
// and its proof atomically, and announces the pending order to operators.
func (s *Service) Submit(ctx context.Context, userID int64, svc *domain.Service, method domain.PaymentMethod, proof domain.Proof) (*domain.Order, error) {
	if proof.FileID == "" {
		return nil, ErrMissingProof
	}
	price, ok := svc.Price(method)
	if !ok && !method.OperatorSettled() {
		return nil, fmt.Errorf("service %d has no %s price", svc.ID, method)
	}

	now := time.Now().UTC()
	o := &domain.Order{
		UserID:      userID,
		ServiceID:   svc.ID,
		ServiceName: svc.Name,
		Method:      method,
		PricePaid:   price,
		Status:      domain.StatusPendingPayment,
		CreatedAt:   now,
	}
	proof.Status = "uploaded"
	proof.UploadedAt = now

	id, err := s.repo.CreateOrder(ctx, o, &proof)
	if err != nil {
		logger.SVCLedger.Error("order create failed",
			slog.String("event", "ledger.create"),
			slog.Int64("user_id", userID),
			slog.Int64("service_id", svc.ID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("create order: %w", err)
	}
	o.ID = id
	proof.OrderID = id
	o.Proof = &proof

	logger.SVCLedger.Info("order created",
		slog.String("event", "ledger.create"),
		slog.Int64("order_id", id),
		slog.Int64("user_id", userID),
		slog.Int64("service_id", svc.ID),
		slog.String("method", string(method)),
	)

	if s.notifier != nil {
		s.notifier.OrderSubmitted(ctx, o)
	}
	return o, nil
}

// Approve moves a pending order to approved. Deciding an already-terminal
// order returns ErrAlreadyModerated and changes nothing.
func (s *Service) Approve(ctx context.Context, orderID int64) (*domain.Order, error) {
	return s.moderate(ctx, orderID, domain.StatusApproved, nil)
}

// Reject moves a pending order to rejected, storing the operator's reason
// verbatim. An empty reason is refused before any ledger write.
func (s *Service) Reject(ctx context.Context, orderID int64, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	return s.moderate(ctx, orderID, domain.StatusRejected, &reason)
}

func (s *Service) moderate(ctx context.Context, orderID int64, status domain.OrderStatus, comment *string) (*domain.Order, error) {
	moved, err := s.repo.SetStatus(ctx, orderID, status, comment)
	if err != nil {
		return nil, fmt.Errorf("moderate order %d: %w", orderID, err)
	}

	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !moved {
		logger.SVCLedger.Warn("moderation conflict",
			slog.String("event", "ledger.moderate"),
			slog.Int64("order_id", orderID),
			slog.String("status", string(o.Status)),
		)
		return o, ErrAlreadyModerated
	}

	logger.SVCLedger.Info("order moderated",
		slog.String("event", "ledger.moderate"),
		slog.Int64("order_id", orderID),
		slog.String("status", string(status)),
	)

	if s.notifier != nil {
		s.notifier.OrderModerated(ctx, o)
	}
	return o, nil
}

// Order returns one order with its latest proof.
func (s *Service) Order(ctx context.Context, id int64) (*domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// UserOrders lists a user's orders, newest first.
func (s *Service) UserOrders(ctx context.Context, userID int64) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// AllOrders lists every order, newest first.
func (s *Service) AllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListAll(ctx)
}

// PendingOrders lists orders awaiting a decision.
func (s *Service) PendingOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListPending(ctx)
}

// CountOrders reports the total number of orders ever created.
func (s *Service) CountOrders(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}
