package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rootzsu/orderbot/internal/domain"
)

// Repository is the persistence contract for the order ledger. Orders are
// append-only: there is no delete operation.
type Repository interface {
	// CreateOrder inserts the order and its proof in one transaction and
	// returns the assigned order id.
	CreateOrder(ctx context.Context, o *domain.Order, p *domain.Proof) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	ListPending(ctx context.Context) ([]domain.Order, error)
	Count(ctx context.Context) (int64, error)
	// SetStatus transitions a pending order to a terminal status. It returns
	// false without modifying anything when the order is already terminal.
	SetStatus(ctx context.Context, id int64, status domain.OrderStatus, comment *string) (bool, error)
}

type pgRepository struct {
	db *sqlx.DB
}

// NewRepository builds a Postgres-backed ledger repository.
func NewRepository(db *sqlx.DB) Repository {
	return &pgRepository{db: db}
}

const orderColumns = `order_id, user_id, service_id, service_name, payment_method, price_paid, status, operator_comment, creation_date`

func (r *pgRepository) CreateOrder(ctx context.Context, o *domain.Order, p *domain.Proof) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var orderID int64
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO orders (user_id, service_id, service_name, payment_method, price_paid, status, creation_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING order_id`,
		o.UserID, o.ServiceID, o.ServiceName, o.Method, o.PricePaid, o.Status, o.CreatedAt,
	).Scan(&orderID)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO payment_proofs (order_id, file_id, file_type, status, upload_date)
		 VALUES ($1, $2, $3, $4, $5)`,
		orderID, p.FileID, p.FileType, p.Status, p.UploadedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert proof: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit order tx: %w", err)
	}
	return orderID, nil
}

func (r *pgRepository) Get(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	var p domain.Proof
	err = r.db.GetContext(ctx, &p,
		`SELECT proof_id, order_id, file_id, file_type, status, upload_date
		 FROM payment_proofs WHERE order_id = $1
		 ORDER BY proof_id DESC LIMIT 1`, id)
	switch {
	case err == nil:
		o.Proof = &p
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, err
	}
	return &o, nil
}

func (r *pgRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY order_id DESC`, userID)
	return out, err
}

func (r *pgRepository) ListAll(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+orderColumns+` FROM orders ORDER BY order_id DESC`)
	return out, err
}

func (r *pgRepository) ListPending(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY order_id`,
		domain.StatusPendingPayment)
	return out, err
}

func (r *pgRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

// SetStatus is the serialization point for concurrent moderation: the
// conditional UPDATE lets exactly one decision win on a pending order.
func (r *pgRepository) SetStatus(ctx context.Context, id int64, status domain.OrderStatus, comment *string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin moderation tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, operator_comment = $3
		 WHERE order_id = $1 AND status = $4`,
		id, status, comment, domain.StatusPendingPayment)
	if err != nil {
		return false, fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE payment_proofs SET status = $2, admin_comment = $3
		 WHERE proof_id = (SELECT MAX(proof_id) FROM payment_proofs WHERE order_id = $1)`,
		id, status, comment)
	if err != nil {
		return false, fmt.Errorf("update proof status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit moderation tx: %w", err)
	}
	return true, nil
}
