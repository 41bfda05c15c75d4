package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootzsu/orderbot/internal/domain"
)

// memRepo mimics the conditional-update semantics of the SQL repository:
// SetStatus succeeds only while the order is still pending.
type memRepo struct {
	orders map[int64]*domain.Order
	proofs map[int64]*domain.Proof
	nextID int64

	failCreate error
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders: make(map[int64]*domain.Order),
		proofs: make(map[int64]*domain.Proof),
		nextID: 1,
	}
}

func (m *memRepo) CreateOrder(_ context.Context, o *domain.Order, p *domain.Proof) (int64, error) {
	if m.failCreate != nil {
		return 0, m.failCreate
	}
	id := m.nextID
	m.nextID++
	stored := *o
	stored.ID = id
	m.orders[id] = &stored
	proof := *p
	proof.OrderID = id
	m.proofs[id] = &proof
	return id, nil
}

func (m *memRepo) Get(_ context.Context, id int64) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	cp := *o
	if p, ok := m.proofs[id]; ok {
		proof := *p
		cp.Proof = &proof
	}
	return &cp, nil
}

func (m *memRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memRepo) ListAll(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memRepo) ListPending(context.Context) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range m.orders {
		if o.Status == domain.StatusPendingPayment {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *memRepo) Count(context.Context) (int64, error) {
	return int64(len(m.orders)), nil
}

func (m *memRepo) SetStatus(_ context.Context, id int64, status domain.OrderStatus, comment *string) (bool, error) {
	o, ok := m.orders[id]
	if !ok || o.Status != domain.StatusPendingPayment {
		return false, nil
	}
	o.Status = status
	o.Comment = comment
	return true, nil
}

type notifyLog struct {
	submitted []int64
	moderated []domain.OrderStatus
}

func (n *notifyLog) OrderSubmitted(_ context.Context, o *domain.Order) {
	n.submitted = append(n.submitted, o.ID)
}

func (n *notifyLog) OrderModerated(_ context.Context, o *domain.Order) {
	n.moderated = append(n.moderated, o.Status)
}

func svcWithUSD(price float64) *domain.Service {
	return &domain.Service{ID: 3, Name: "Basic package", PriceUSD: &price, Active: true}
}

func photoProof() domain.Proof {
	return domain.Proof{FileID: "file-abc", FileType: domain.ProofTypePhoto}
}

func TestSubmitCreatesPendingOrderWithProof(t *testing.T) {
	repo := newMemRepo()
	notes := &notifyLog{}
	s := NewService(repo, notes)

	o, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, photoProof())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingPayment, o.Status)
	assert.Equal(t, 16.0, o.PricePaid)
	assert.Equal(t, "Basic package", o.ServiceName)
	require.NotNil(t, o.Proof)
	assert.Equal(t, "file-abc", o.Proof.FileID)
	assert.Equal(t, o.ID, o.Proof.OrderID)

	stored, err := s.Order(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)
	require.NotNil(t, stored.Proof)
	assert.Equal(t, "file-abc", stored.Proof.FileID)

	assert.Equal(t, []int64{o.ID}, notes.submitted)
}

func TestSubmitRequiresProof(t *testing.T) {
	s := NewService(newMemRepo(), nil)

	_, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, domain.Proof{})
	assert.ErrorIs(t, err, ErrMissingProof)
}

func TestSubmitRejectsUnpricedMethod(t *testing.T) {
	s := NewService(newMemRepo(), nil)

	_, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyBTC, photoProof())
	assert.Error(t, err)
}

func TestSubmitAllowsOperatorSettledWithoutPrice(t *testing.T) {
	s := NewService(newMemRepo(), nil)

	o, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyStars, photoProof())
	require.NoError(t, err)
	assert.Zero(t, o.PricePaid)
	assert.Equal(t, domain.CurrencyStars, o.Method)
}

func TestSubmitDoesNotNotifyOnFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failCreate = errors.New("disk full")
	notes := &notifyLog{}
	s := NewService(repo, notes)

	_, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, photoProof())
	require.Error(t, err)
	assert.Empty(t, notes.submitted)
}

func TestApproveIsOneShot(t *testing.T) {
	repo := newMemRepo()
	notes := &notifyLog{}
	s := NewService(repo, notes)

	o, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, photoProof())
	require.NoError(t, err)

	approved, err := s.Approve(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	// Second decision of either kind hits the terminal guard.
	again, err := s.Approve(context.Background(), o.ID)
	assert.ErrorIs(t, err, ErrAlreadyModerated)
	assert.Equal(t, domain.StatusApproved, again.Status)

	rejected, err := s.Reject(context.Background(), o.ID, "too late")
	assert.ErrorIs(t, err, ErrAlreadyModerated)
	assert.Equal(t, domain.StatusApproved, rejected.Status)

	assert.Equal(t, []domain.OrderStatus{domain.StatusApproved}, notes.moderated)
}

func TestRejectStoresReasonVerbatim(t *testing.T) {
	repo := newMemRepo()
	notes := &notifyLog{}
	s := NewService(repo, notes)

	o, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, photoProof())
	require.NoError(t, err)

	rejected, err := s.Reject(context.Background(), o.ID, "blurry receipt")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.Comment)
	assert.Equal(t, "blurry receipt", *rejected.Comment)

	stored, err := s.Order(context.Background(), o.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Comment)
	assert.Equal(t, "blurry receipt", *stored.Comment)

	assert.Equal(t, []domain.OrderStatus{domain.StatusRejected}, notes.moderated)
}

func TestRejectRequiresReason(t *testing.T) {
	repo := newMemRepo()
	s := NewService(repo, nil)

	o, err := s.Submit(context.Background(), 42, svcWithUSD(16), domain.CurrencyUSD, photoProof())
	require.NoError(t, err)

	_, err = s.Reject(context.Background(), o.ID, "   ")
	assert.ErrorIs(t, err, ErrReasonRequired)

	stored, err := s.Order(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingPayment, stored.Status)
}

func TestModerateUnknownOrder(t *testing.T) {
	s := NewService(newMemRepo(), nil)

	_, err := s.Approve(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}
