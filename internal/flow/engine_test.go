package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rootzsu/orderbot/internal/catalog"
	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/ledger"
)

type fakeCatalog struct {
	activeFn    func(ctx context.Context) ([]domain.Service, error)
	allFn       func(ctx context.Context) ([]domain.Service, error)
	getFn       func(ctx context.Context, id int64) (*domain.Service, error)
	addFn       func(ctx context.Context, svc *domain.Service) (int64, error)
	removeFn    func(ctx context.Context, id int64) error
	setActiveFn func(ctx context.Context, id int64, active bool) error
}

func (f *fakeCatalog) ActiveServices(ctx context.Context) ([]domain.Service, error) {
	if f.activeFn != nil {
		return f.activeFn(ctx)
	}
	return nil, nil
}

func (f *fakeCatalog) AllServices(ctx context.Context) ([]domain.Service, error) {
	if f.allFn != nil {
		return f.allFn(ctx)
	}
	return nil, nil
}

func (f *fakeCatalog) ActiveService(ctx context.Context, id int64) (*domain.Service, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return nil, catalog.ErrServiceNotFound
}

func (f *fakeCatalog) AddService(ctx context.Context, svc *domain.Service) (int64, error) {
	if f.addFn != nil {
		return f.addFn(ctx, svc)
	}
	return 0, nil
}

func (f *fakeCatalog) RemoveService(ctx context.Context, id int64) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, id)
	}
	return nil
}

func (f *fakeCatalog) SetActive(ctx context.Context, id int64, active bool) error {
	if f.setActiveFn != nil {
		return f.setActiveFn(ctx, id, active)
	}
	return nil
}

type fakeLedger struct {
	submitFn  func(ctx context.Context, userID int64, svc *domain.Service, method domain.PaymentMethod, proof domain.Proof) (*domain.Order, error)
	approveFn func(ctx context.Context, orderID int64) (*domain.Order, error)
	rejectFn  func(ctx context.Context, orderID int64, reason string) (*domain.Order, error)
	orderFn   func(ctx context.Context, id int64) (*domain.Order, error)
}

func (f *fakeLedger) Submit(ctx context.Context, userID int64, svc *domain.Service, method domain.PaymentMethod, proof domain.Proof) (*domain.Order, error) {
	if f.submitFn != nil {
		return f.submitFn(ctx, userID, svc, method, proof)
	}
	return &domain.Order{ID: 1}, nil
}

func (f *fakeLedger) Approve(ctx context.Context, orderID int64) (*domain.Order, error) {
	if f.approveFn != nil {
		return f.approveFn(ctx, orderID)
	}
	return &domain.Order{ID: orderID, Status: domain.StatusApproved}, nil
}

func (f *fakeLedger) Reject(ctx context.Context, orderID int64, reason string) (*domain.Order, error) {
	if f.rejectFn != nil {
		return f.rejectFn(ctx, orderID, reason)
	}
	return &domain.Order{ID: orderID, Status: domain.StatusRejected}, nil
}

func (f *fakeLedger) Order(ctx context.Context, id int64) (*domain.Order, error) {
	if f.orderFn != nil {
		return f.orderFn(ctx, id)
	}
	return &domain.Order{ID: id, Status: domain.StatusPendingPayment}, nil
}

func (f *fakeLedger) UserOrders(context.Context, int64) ([]domain.Order, error) { return nil, nil }
func (f *fakeLedger) AllOrders(context.Context) ([]domain.Order, error)        { return nil, nil }
func (f *fakeLedger) PendingOrders(context.Context) ([]domain.Order, error)    { return nil, nil }
func (f *fakeLedger) CountOrders(context.Context) (int64, error)               { return 0, nil }

type fakeRoster struct {
	operatorFn func(ctx context.Context, id int64) (bool, error)
	promoteFn  func(ctx context.Context, id int64) error
	demoteFn   func(ctx context.Context, id int64) error
}

func (f *fakeRoster) Register(context.Context, domain.User) error { return nil }

func (f *fakeRoster) IsOperator(ctx context.Context, id int64) (bool, error) {
	if f.operatorFn != nil {
		return f.operatorFn(ctx, id)
	}
	return false, nil
}

func (f *fakeRoster) Promote(ctx context.Context, id int64) error {
	if f.promoteFn != nil {
		return f.promoteFn(ctx, id)
	}
	return nil
}

func (f *fakeRoster) Demote(ctx context.Context, id int64) error {
	if f.demoteFn != nil {
		return f.demoteFn(ctx, id)
	}
	return nil
}

func (f *fakeRoster) Operators(context.Context) ([]int64, error)   { return nil, nil }
func (f *fakeRoster) Users(context.Context) ([]domain.User, error) { return nil, nil }
func (f *fakeRoster) CountUsers(context.Context) (int64, error)    { return 0, nil }

type fakeWallets map[domain.Currency]string

func (f fakeWallets) Wallet(c domain.Currency) (string, bool) {
	w, ok := f[c]
	return w, ok
}

type fakeBroadcaster struct {
	texts []string
}

func (f *fakeBroadcaster) Go(_ int64, text string) { f.texts = append(f.texts, text) }

// recorder collects everything the engine tried to say.
type recorder struct {
	prompts []Prompt
	relayed []string
	fail    bool
}

func (r *recorder) Prompt(_ context.Context, _ int64, p Prompt) error {
	r.prompts = append(r.prompts, p)
	return nil
}

func (r *recorder) Relay(_ context.Context, _ domain.User, text string) error {
	if r.fail {
		return assert.AnError
	}
	r.relayed = append(r.relayed, text)
	return nil
}

func (r *recorder) last() Prompt {
	if len(r.prompts) == 0 {
		return Prompt{}
	}
	return r.prompts[len(r.prompts)-1]
}

func price(v float64) *float64 { return &v }

func testService() *domain.Service {
	return &domain.Service{
		ID:       1,
		Name:     "Basic package",
		PriceUSD: price(16),
		Active:   true,
	}
}

type fixture struct {
	engine   *Engine
	store    *Store
	catalog  *fakeCatalog
	ledger   *fakeLedger
	roster   *fakeRoster
	announce *fakeBroadcaster
	out      *recorder
}

func newFixture() *fixture {
	f := &fixture{
		store:    NewStore(),
		catalog:  &fakeCatalog{},
		ledger:   &fakeLedger{},
		roster:   &fakeRoster{},
		announce: &fakeBroadcaster{},
		out:      &recorder{},
	}
	f.catalog.activeFn = func(context.Context) ([]domain.Service, error) {
		return []domain.Service{*testService()}, nil
	}
	f.catalog.getFn = func(_ context.Context, id int64) (*domain.Service, error) {
		if id == 1 {
			return testService(), nil
		}
		return nil, catalog.ErrServiceNotFound
	}
	wallets := fakeWallets{domain.CurrencyUSD: "wallet-usd"}
	f.engine = NewEngine(f.store, f.catalog, f.ledger, f.roster, wallets, f.announce, f.out)
	return f
}

func (f *fixture) press(t *testing.T, userID int64, key, payload string) {
	t.Helper()
	err := f.engine.Handle(context.Background(), Event{
		From:    domain.User{ID: userID},
		Kind:    KindButton,
		Button:  key,
		Payload: payload,
	})
	require.NoError(t, err)
}

func (f *fixture) say(t *testing.T, userID int64, text string) {
	t.Helper()
	err := f.engine.Handle(context.Background(), Event{
		From: domain.User{ID: userID},
		Kind: KindText,
		Text: text,
	})
	require.NoError(t, err)
}

const userID = int64(42)

func TestOrderHappyPath(t *testing.T) {
	f := newFixture()

	var got struct {
		userID int64
		svcID  int64
		method domain.PaymentMethod
		proof  domain.Proof
	}
	calls := 0
	f.ledger.submitFn = func(_ context.Context, uid int64, svc *domain.Service, m domain.PaymentMethod, p domain.Proof) (*domain.Order, error) {
		calls++
		got.userID, got.svcID, got.method, got.proof = uid, svc.ID, m, p
		return &domain.Order{ID: 7, UserID: uid, ServiceID: svc.ID, Method: m, PricePaid: 16, Status: domain.StatusPendingPayment}, nil
	}

	require.NoError(t, f.engine.Start(context.Background(), domain.User{ID: userID, FirstName: "Ann"}))
	f.press(t, userID, BtnOrderStart, "")
	assert.Equal(t, StateSelectingService, f.store.StateOf(userID))

	f.press(t, userID, BtnSelectService, "1")
	assert.Equal(t, StateSelectingPayment, f.store.StateOf(userID))

	f.press(t, userID, BtnPay, "usd")
	assert.Equal(t, StateAwaitingProof, f.store.StateOf(userID))
	assert.Contains(t, f.out.last().Text, "wallet-usd")
	assert.Contains(t, f.out.last().Text, "16.00 USD")

	err := f.engine.Handle(context.Background(), Event{
		From:       domain.User{ID: userID},
		Kind:       KindPhoto,
		Attachment: &Attachment{FileID: "file-1", TypeTag: domain.ProofTypePhoto},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, userID, got.userID)
	assert.Equal(t, int64(1), got.svcID)
	assert.Equal(t, domain.CurrencyUSD, got.method)
	assert.Equal(t, "file-1", got.proof.FileID)
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
	assert.Contains(t, f.out.last().Text, "Order #7")
}

func TestDeactivatedServiceRejectedAtSelection(t *testing.T) {
	f := newFixture()
	f.catalog.getFn = func(context.Context, int64) (*domain.Service, error) {
		return nil, catalog.ErrServiceInactive
	}

	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")

	assert.Equal(t, StateSelectingService, f.store.StateOf(userID))
	assert.Contains(t, f.out.last().Text, "no longer available")
	f.store.Do(userID, func(s *Session) error {
		assert.Nil(t, s.Selection.Service)
		return nil
	})
}

func TestUnsupportedMethodKeepsState(t *testing.T) {
	f := newFixture()
	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")

	f.press(t, userID, BtnPay, "btc") // no BTC price on the test service
	assert.Equal(t, StateSelectingPayment, f.store.StateOf(userID))
	assert.Equal(t, msgMethodGone, f.out.last().Text)
}

func TestTextWhileAwaitingProofDoesNotSubmit(t *testing.T) {
	f := newFixture()
	calls := 0
	f.ledger.submitFn = func(context.Context, int64, *domain.Service, domain.PaymentMethod, domain.Proof) (*domain.Order, error) {
		calls++
		return &domain.Order{ID: 1}, nil
	}

	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")
	f.press(t, userID, BtnPay, "usd")
	f.say(t, userID, "i paid, trust me")

	assert.Zero(t, calls)
	assert.Equal(t, StateAwaitingProof, f.store.StateOf(userID))
	assert.Equal(t, msgNeedProof, f.out.last().Text)
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	f := newFixture()
	f.ledger.submitFn = func(context.Context, int64, *domain.Service, domain.PaymentMethod, domain.Proof) (*domain.Order, error) {
		return nil, assert.AnError
	}

	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")
	f.press(t, userID, BtnPay, "usd")

	err := f.engine.Handle(context.Background(), Event{
		From:       domain.User{ID: userID},
		Kind:       KindPhoto,
		Attachment: &Attachment{FileID: "file-1", TypeTag: domain.ProofTypePhoto},
	})
	require.Error(t, err)

	assert.Equal(t, StateAwaitingProof, f.store.StateOf(userID))
	assert.Equal(t, msgSubmitFailed, f.out.last().Text)
	f.store.Do(userID, func(s *Session) error {
		require.NotNil(t, s.Selection.Service)
		assert.Equal(t, int64(1), s.Selection.Service.ID)
		return nil
	})
}

func TestCancelResetsAndIsIdempotent(t *testing.T) {
	f := newFixture()
	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")

	require.NoError(t, f.engine.Cancel(context.Background(), userID))
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
	assert.Equal(t, msgCancelled, f.out.last().Text)

	require.NoError(t, f.engine.Cancel(context.Background(), userID))
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
	assert.Equal(t, msgMenu, f.out.last().Text)
}

func TestSupportChatRelays(t *testing.T) {
	f := newFixture()
	f.press(t, userID, BtnContactOperator, "")
	assert.Equal(t, StateInOperatorChat, f.store.StateOf(userID))

	f.say(t, userID, "where is my order?")
	require.Len(t, f.out.relayed, 1)
	assert.Equal(t, "where is my order?", f.out.relayed[0])

	f.press(t, userID, BtnMainMenu, "")
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestAdminPanelRequiresOperator(t *testing.T) {
	f := newFixture()
	f.press(t, userID, BtnAdminPanel, "")

	assert.Equal(t, msgNotOperator, f.out.last().Text)
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestRejectAsksForReasonAndUsesItVerbatim(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return true, nil }

	var gotID int64
	var gotReason string
	f.ledger.rejectFn = func(_ context.Context, id int64, reason string) (*domain.Order, error) {
		gotID, gotReason = id, reason
		return &domain.Order{ID: id, Status: domain.StatusRejected, Comment: &reason}, nil
	}

	f.press(t, userID, BtnReject, "9")
	assert.Equal(t, StateAwaitingRejectReason, f.store.StateOf(userID))
	assert.Equal(t, msgAskReason, f.out.last().Text)

	f.say(t, userID, "blurry receipt")
	assert.Equal(t, int64(9), gotID)
	assert.Equal(t, "blurry receipt", gotReason)
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestApproveConflictReportsFinalStatus(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return true, nil }
	f.ledger.approveFn = func(_ context.Context, id int64) (*domain.Order, error) {
		return &domain.Order{ID: id, Status: domain.StatusRejected}, ledger.ErrAlreadyModerated
	}

	f.press(t, userID, BtnApprove, "9")
	assert.Contains(t, f.out.last().Text, "already moderated")
	assert.Contains(t, f.out.last().Text, "rejected")
}

func TestModerationButtonsGated(t *testing.T) {
	f := newFixture()
	calls := 0
	f.ledger.approveFn = func(_ context.Context, id int64) (*domain.Order, error) {
		calls++
		return &domain.Order{ID: id, Status: domain.StatusApproved}, nil
	}

	f.press(t, userID, BtnApprove, "9")
	assert.Zero(t, calls)
	assert.Equal(t, msgNotOperator, f.out.last().Text)
}

func TestBroadcastFlow(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return true, nil }

	f.press(t, userID, BtnBroadcast, "")
	assert.Equal(t, StateAwaitingBroadcast, f.store.StateOf(userID))

	f.say(t, userID, "maintenance tonight")
	require.Len(t, f.announce.texts, 1)
	assert.Equal(t, "maintenance tonight", f.announce.texts[0])
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestDemotionBlocksPendingBroadcast(t *testing.T) {
	f := newFixture()
	operator := true
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return operator, nil }

	f.press(t, userID, BtnBroadcast, "")
	require.Equal(t, StateAwaitingBroadcast, f.store.StateOf(userID))

	operator = false
	f.say(t, userID, "evil broadcast")
	assert.Empty(t, f.announce.texts)
	assert.Equal(t, msgNotOperator, f.out.last().Text)
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestDemotionBlocksPendingRejectReason(t *testing.T) {
	f := newFixture()
	operator := true
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return operator, nil }

	rejects := 0
	f.ledger.rejectFn = func(_ context.Context, id int64, reason string) (*domain.Order, error) {
		rejects++
		return &domain.Order{ID: id, Status: domain.StatusRejected}, nil
	}

	f.press(t, userID, BtnReject, "9")
	require.Equal(t, StateAwaitingRejectReason, f.store.StateOf(userID))

	operator = false
	f.say(t, userID, "too late")
	assert.Zero(t, rejects)
	assert.Equal(t, msgNotOperator, f.out.last().Text)
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestServiceToggleSwitchesOff(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return true, nil }
	f.catalog.allFn = func(context.Context) ([]domain.Service, error) {
		return []domain.Service{*testService()}, nil
	}

	var gotID int64
	var gotActive bool
	f.catalog.setActiveFn = func(_ context.Context, id int64, active bool) error {
		gotID, gotActive = id, active
		return nil
	}

	f.press(t, userID, BtnServiceToggle, "")
	require.Equal(t, StateAwaitingServiceToggleID, f.store.StateOf(userID))

	f.say(t, userID, "1")
	assert.Equal(t, int64(1), gotID)
	assert.False(t, gotActive)
	assert.Contains(t, f.out.last().Text, "switched off")
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
}

func TestServiceToggleUnknownIDReprompts(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return true, nil }
	f.catalog.allFn = func(context.Context) ([]domain.Service, error) {
		return []domain.Service{*testService()}, nil
	}
	calls := 0
	f.catalog.setActiveFn = func(context.Context, int64, bool) error {
		calls++
		return nil
	}

	f.press(t, userID, BtnServiceToggle, "")
	f.say(t, userID, "5")
	assert.Zero(t, calls)
	assert.Contains(t, f.out.last().Text, "does not exist")
	assert.Equal(t, StateAwaitingServiceToggleID, f.store.StateOf(userID))
}

func TestMenuRendersWhenRosterLookupFails(t *testing.T) {
	f := newFixture()
	f.roster.operatorFn = func(context.Context, int64) (bool, error) { return false, assert.AnError }

	require.NoError(t, f.engine.Start(context.Background(), domain.User{ID: userID}))
	menu := f.out.last()
	assert.Equal(t, msgMenu, menu.Text)
	for _, row := range menu.Choices {
		for _, c := range row {
			assert.NotEqual(t, BtnAdminPanel, c.Key)
		}
	}
}

func TestStartResetsMidConversation(t *testing.T) {
	f := newFixture()
	f.press(t, userID, BtnOrderStart, "")
	f.press(t, userID, BtnSelectService, "1")
	require.Equal(t, StateSelectingPayment, f.store.StateOf(userID))

	require.NoError(t, f.engine.Start(context.Background(), domain.User{ID: userID}))
	assert.Equal(t, StateMainMenu, f.store.StateOf(userID))
	f.store.Do(userID, func(s *Session) error {
		assert.Nil(t, s.Selection.Service)
		return nil
	})
}
