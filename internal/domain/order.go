package domain

import "time"

// OrderStatus tracks an order through its moderation lifecycle.
type OrderStatus string

const (
	// StatusPendingPayment is the initial status of every order.
	StatusPendingPayment OrderStatus = "pending_payment"
	// StatusApproved is terminal.
	StatusApproved OrderStatus = "approved"
	// StatusRejected is terminal.
	StatusRejected OrderStatus = "rejected"
)

// Terminal reports whether the status permits no further transitions.
func (s OrderStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ProofTypePhoto tags photo proofs; document proofs carry their mime type.
const ProofTypePhoto = "photo"

// Proof is user-submitted evidence of payment attached to an order.
// FileID is an opaque handle understood by the messaging transport.
type Proof struct {
	ID         int64     `db:"proof_id"`
	OrderID    int64     `db:"order_id"`
	FileID     string    `db:"file_id"`
	FileType   string    `db:"file_type"`
	Status     string    `db:"status"`
	UploadedAt time.Time `db:"upload_date"`
}

// Order is a single durable order record. The price is captured from the
// catalog at creation time and never recomputed.
type Order struct {
	ID          int64         `db:"order_id"`
	UserID      int64         `db:"user_id"`
	ServiceID   int64         `db:"service_id"`
	ServiceName string        `db:"service_name"`
	Method      PaymentMethod `db:"payment_method"`
	PricePaid   float64       `db:"price_paid"`
	Status      OrderStatus   `db:"status"`
	Comment     *string       `db:"operator_comment"`
	CreatedAt   time.Time     `db:"creation_date"`

	// Proof is the latest proof attached to the order, if loaded.
	Proof *Proof `db:"-"`
}
