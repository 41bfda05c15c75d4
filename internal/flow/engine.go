package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/internal/catalog"
	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/ledger"
	"github.com/rootzsu/orderbot/internal/roster"
)

// Catalog is the slice of the catalog service the engine needs.
type Catalog interface {
	ActiveServices(ctx context.Context) ([]domain.Service, error)
	AllServices(ctx context.Context) ([]domain.Service, error)
	ActiveService(ctx context.Context, id int64) (*domain.Service, error)
	AddService(ctx context.Context, svc *domain.Service) (int64, error)
	RemoveService(ctx context.Context, id int64) error
	SetActive(ctx context.Context, id int64, active bool) error
}

// Ledger is the slice of the order ledger the engine needs.
type Ledger interface {
	Submit(ctx context.Context, userID int64, svc *domain.Service, method domain.PaymentMethod, proof domain.Proof) (*domain.Order, error)
	Approve(ctx context.Context, orderID int64) (*domain.Order, error)
	Reject(ctx context.Context, orderID int64, reason string) (*domain.Order, error)
	Order(ctx context.Context, id int64) (*domain.Order, error)
	UserOrders(ctx context.Context, userID int64) ([]domain.Order, error)
	AllOrders(ctx context.Context) ([]domain.Order, error)
	PendingOrders(ctx context.Context) ([]domain.Order, error)
	CountOrders(ctx context.Context) (int64, error)
}

// Roster is the slice of the user roster the engine needs.
type Roster interface {
	Register(ctx context.Context, u domain.User) error
	IsOperator(ctx context.Context, id int64) (bool, error)
	Promote(ctx context.Context, id int64) error
	Demote(ctx context.Context, id int64) error
	Operators(ctx context.Context) ([]int64, error)
	Users(ctx context.Context) ([]domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Wallets resolves the published wallet address for a currency.
type Wallets interface {
	Wallet(c domain.Currency) (string, bool)
}

// Broadcaster fans a message out to all users in the background.
type Broadcaster interface {
	Go(fromID int64, text string)
}

type handlerFunc func(ctx context.Context, s *Session, ev Event) error

// Engine is the conversation state machine. Every event for one user runs
// under that user's session lock, so handlers never race on a session.
// Guards run before any session mutation: a failed validation leaves the
// state exactly where it was.
type Engine struct {
	sessions *Store
	catalog  Catalog
	orders   Ledger
	roster   Roster
	wallets  Wallets
	announce Broadcaster
	resp     Responder

	handlers map[State]map[Kind]handlerFunc
}

func NewEngine(st *Store, c Catalog, l Ledger, r Roster, w Wallets, b Broadcaster, resp Responder) *Engine {
	e := &Engine{
		sessions: st,
		catalog:  c,
		orders:   l,
		roster:   r,
		wallets:  w,
		announce: b,
		resp:     resp,
	}
	e.handlers = map[State]map[Kind]handlerFunc{
		StateMainMenu: {
			KindButton: e.onMenuButton,
		},
		StateSelectingService: {
			KindButton: e.onServicePick,
		},
		StateSelectingPayment: {
			KindButton: e.onPaymentPick,
		},
		StateAwaitingProof: {
			KindPhoto:    e.onProof,
			KindDocument: e.onProof,
			KindText:     e.onProofText,
			KindButton:   e.onOrderCancelButton,
		},
		StateInOperatorChat: {
			KindText: e.onChatText,
		},
		StateAwaitingOperatorAddID: {
			KindText: e.operatorOnly(e.onOperatorAddID),
		},
		StateAwaitingOperatorRemoveID: {
			KindText: e.operatorOnly(e.onOperatorRemoveID),
		},
		StateAwaitingBroadcast: {
			KindText: e.operatorOnly(e.onBroadcastText),
		},
		StateAwaitingServiceInput: {
			KindText: e.operatorOnly(e.onServiceInput),
		},
		StateAwaitingServiceDeleteID: {
			KindText: e.operatorOnly(e.onServiceDeleteID),
		},
		StateAwaitingServiceToggleID: {
			KindText: e.operatorOnly(e.onServiceToggleID),
		},
		StateAwaitingRejectReason: {
			KindText: e.operatorOnly(e.onRejectReason),
		},
	}
	return e
}

// InProgress reports whether the user is mid-conversation, away from the
// main menu.
func (e *Engine) InProgress(userID int64) bool {
	return e.sessions.StateOf(userID) != StateMainMenu
}

// Start resets the user's conversation and shows the main menu. It also
// registers the user, refreshing a stale profile.
func (e *Engine) Start(ctx context.Context, u domain.User) error {
	if err := e.roster.Register(ctx, u); err != nil {
		logger.Flow.Error("user registration failed",
			slog.String("event", "flow.register.error"),
			slog.Int64("user_id", u.ID),
			slog.Any("error", err),
		)
		// The conversation still works for an unregistered user.
	}
	return e.sessions.Do(u.ID, func(s *Session) error {
		s.reset()
		return e.menu(ctx, s, msgMenu)
	})
}

// Cancel aborts whatever the user was doing and returns to the main menu.
// Cancelling from the main menu is a no-op apart from re-showing it.
func (e *Engine) Cancel(ctx context.Context, userID int64) error {
	return e.sessions.Do(userID, func(s *Session) error {
		cancelled := s.State == StateAwaitingProof || s.State == StateSelectingPayment || s.State == StateSelectingService
		s.reset()
		if cancelled {
			return e.menu(ctx, s, msgCancelled)
		}
		return e.menu(ctx, s, msgMenu)
	})
}

// Handle dispatches one event through the (state, kind) table. Moderation
// and menu-return buttons are routed regardless of state so an operator can
// act on an old notification, and any user can always escape to the menu.
func (e *Engine) Handle(ctx context.Context, ev Event) error {
	return e.sessions.Do(ev.From.ID, func(s *Session) error {
		h := e.lookup(s, ev)
		if h == nil {
			return e.hint(ctx, s)
		}
		err := h(ctx, s, ev)
		if err != nil {
			logger.Flow.Warn("event handling failed",
				slog.String("event", "flow.handle.error"),
				slog.Int64("user_id", ev.From.ID),
				slog.String("kind", string(ev.Kind)),
				slog.String("state", string(s.State)),
				slog.Any("error", err),
			)
			return err
		}
		logger.Flow.Debug("event handled",
			slog.String("event", "flow.handle"),
			slog.Int64("user_id", ev.From.ID),
			slog.String("kind", string(ev.Kind)),
			slog.String("state", string(s.State)),
		)
		return nil
	})
}

func (e *Engine) lookup(s *Session, ev Event) handlerFunc {
	if ev.Kind == KindButton {
		switch ev.Button {
		case BtnMainMenu:
			return e.onBackToMenu
		case BtnApprove:
			return e.onApprove
		case BtnReject:
			return e.onReject
		}
	}
	return e.handlers[s.State][ev.Kind]
}

// hint re-states what the current step expects without changing anything.
func (e *Engine) hint(ctx context.Context, s *Session) error {
	switch s.State {
	case StateAwaitingProof:
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNeedProof, Choices: cancelRow()})
	case StateSelectingService, StateSelectingPayment:
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgMenuHint, Choices: cancelRow()})
	default:
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgMenuHint})
	}
}

func (e *Engine) menu(ctx context.Context, s *Session, text string) error {
	operator, err := e.roster.IsOperator(ctx, s.UserID)
	if err != nil {
		logger.Flow.Warn("operator lookup failed, rendering user menu",
			slog.String("event", "flow.menu.roster_error"),
			slog.Int64("user_id", s.UserID),
			slog.Any("error", err),
		)
		operator = false
	}
	rows := [][]Choice{
		{{Label: "Price list", Key: BtnPriceList}, {Label: "Order a service", Key: BtnOrderStart}},
		{{Label: "My account", Key: BtnMyAccount}, {Label: "Contact support", Key: BtnContactOperator}},
	}
	if operator {
		rows = append(rows, []Choice{{Label: "Operator panel", Key: BtnAdminPanel}})
	}
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text, Choices: rows})
}

func cancelRow() [][]Choice {
	return [][]Choice{{{Label: "Cancel", Key: BtnCancelOrder}}}
}

func (e *Engine) onBackToMenu(ctx context.Context, s *Session, _ Event) error {
	s.reset()
	return e.menu(ctx, s, msgMenu)
}

// --- main menu ---

func (e *Engine) onMenuButton(ctx context.Context, s *Session, ev Event) error {
	switch ev.Button {
	case BtnPriceList:
		services, err := e.catalog.ActiveServices(ctx)
		if err != nil {
			return err
		}
		if len(services) == 0 {
			return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNoServices})
		}
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: priceList(services)})

	case BtnMyAccount:
		orders, err := e.orders.UserOrders(ctx, s.UserID)
		if err != nil {
			return err
		}
		text := fmt.Sprintf("Your ID: %d\n\n%s", s.UserID, orderListing("Your orders:", orders))
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text})

	case BtnOrderStart:
		return e.promptServiceList(ctx, s, msgPickService)

	case BtnContactOperator:
		s.State = StateInOperatorChat
		return e.resp.Prompt(ctx, s.UserID, Prompt{
			Text:    msgInChat,
			Choices: [][]Choice{{{Label: "Leave chat", Key: BtnMainMenu}}},
		})

	case BtnAdminPanel, BtnAdminStats, BtnAdminUsers, BtnAdminOrders, BtnAdminPending,
		BtnAdminServices, BtnAdminRoster, BtnBroadcast,
		BtnOperatorAdd, BtnOperatorRemove, BtnServiceAdd, BtnServiceDelete, BtnServiceToggle:
		return e.onAdminButton(ctx, s, ev)
	}
	return e.hint(ctx, s)
}

// promptServiceList shows active services as buttons and moves the user to
// service selection. With an empty catalog the state does not change.
func (e *Engine) promptServiceList(ctx context.Context, s *Session, text string) error {
	services, err := e.catalog.ActiveServices(ctx)
	if err != nil {
		return err
	}
	if len(services) == 0 {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNoServices})
	}
	rows := make([][]Choice, 0, len(services)+1)
	for _, svc := range services {
		rows = append(rows, []Choice{{
			Label:   svc.Name,
			Key:     BtnSelectService,
			Payload: strconv.FormatInt(svc.ID, 10),
		}})
	}
	rows = append(rows, cancelRow()...)
	s.State = StateSelectingService
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text, Choices: rows})
}

// --- ordering ---

func (e *Engine) onServicePick(ctx context.Context, s *Session, ev Event) error {
	if ev.Button == BtnCancelOrder {
		return e.onOrderCancelButton(ctx, s, ev)
	}
	if ev.Button != BtnSelectService {
		return e.hint(ctx, s)
	}
	id, err := strconv.ParseInt(ev.Payload, 10, 64)
	if err != nil {
		return e.hint(ctx, s)
	}
	svc, err := e.catalog.ActiveService(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound), errors.Is(err, catalog.ErrServiceInactive):
		// Stale button: the service vanished or was turned off since the
		// list was rendered. Show a fresh list, keep the draft empty.
		return e.promptServiceList(ctx, s, msgServiceGone)
	case err != nil:
		return err
	}
	s.Selection.Service = svc
	s.State = StateSelectingPayment
	return e.promptPaymentMethods(ctx, s, msgPickPayment)
}

func (e *Engine) promptPaymentMethods(ctx context.Context, s *Session, text string) error {
	svc := s.Selection.Service
	row := make([]Choice, 0, len(domain.Currencies))
	for _, m := range svc.PaymentMethods() {
		row = append(row, Choice{Label: methodLabel(m), Key: BtnPay, Payload: string(m)})
	}
	rows := append([][]Choice{row}, cancelRow()...)
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text, Choices: rows})
}

func (e *Engine) onPaymentPick(ctx context.Context, s *Session, ev Event) error {
	if ev.Button == BtnCancelOrder {
		return e.onOrderCancelButton(ctx, s, ev)
	}
	if ev.Button != BtnPay {
		return e.hint(ctx, s)
	}
	method, ok := domain.ParseCurrency(ev.Payload)
	if !ok || !s.Selection.Service.SupportsMethod(method) {
		return e.promptPaymentMethods(ctx, s, msgMethodGone)
	}
	s.Selection.Method = method
	s.State = StateAwaitingProof
	wallet, _ := e.wallets.Wallet(method)
	return e.resp.Prompt(ctx, s.UserID, Prompt{
		Text:    paymentInstructions(s.Selection.Service, method, wallet),
		Choices: cancelRow(),
	})
}

func (e *Engine) onProof(ctx context.Context, s *Session, ev Event) error {
	if ev.Attachment == nil || ev.Attachment.FileID == "" {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNeedProof, Choices: cancelRow()})
	}
	proof := domain.Proof{
		FileID:   ev.Attachment.FileID,
		FileType: ev.Attachment.TypeTag,
	}
	order, err := e.orders.Submit(ctx, s.UserID, s.Selection.Service, s.Selection.Method, proof)
	if err != nil {
		// The draft survives a storage failure so the user can retry by
		// sending the attachment again.
		if perr := e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgSubmitFailed, Choices: cancelRow()}); perr != nil {
			logger.Flow.Warn("submit failure notice undelivered",
				slog.String("event", "flow.submit.notice_error"),
				slog.Int64("user_id", s.UserID),
				slog.Any("error", perr),
			)
		}
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("Order #%d received. An operator will review your payment shortly.", order.ID))
}

func (e *Engine) onProofText(ctx context.Context, s *Session, _ Event) error {
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNeedProof, Choices: cancelRow()})
}

func (e *Engine) onOrderCancelButton(ctx context.Context, s *Session, ev Event) error {
	if ev.Button != BtnCancelOrder {
		return e.hint(ctx, s)
	}
	s.reset()
	return e.menu(ctx, s, msgCancelled)
}

// --- support chat ---

func (e *Engine) onChatText(ctx context.Context, s *Session, ev Event) error {
	if strings.TrimSpace(ev.Text) == "" {
		return nil
	}
	if err := e.resp.Relay(ctx, ev.From, ev.Text); err != nil {
		logger.Flow.Warn("support relay failed",
			slog.String("event", "flow.relay.error"),
			slog.Int64("user_id", s.UserID),
			slog.Any("error", err),
		)
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgRelayFailed})
	}
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgRelayed})
}

// --- moderation ---

// requireOperator is checked fresh on every privileged event, never cached
// in the session, so a demotion takes effect immediately.
func (e *Engine) requireOperator(ctx context.Context, s *Session) (bool, error) {
	ok, err := e.roster.IsOperator(ctx, s.UserID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgNotOperator})
	}
	return true, nil
}

// operatorOnly gates a privileged apply step. The check runs on the apply
// event itself, so a demotion between entering the step and sending the
// input still blocks it. A blocked user is dropped back to the main menu.
func (e *Engine) operatorOnly(h handlerFunc) handlerFunc {
	return func(ctx context.Context, s *Session, ev Event) error {
		ok, err := e.requireOperator(ctx, s)
		if err != nil {
			return err
		}
		if !ok {
			s.reset()
			return nil
		}
		return h(ctx, s, ev)
	}
}

func (e *Engine) onApprove(ctx context.Context, s *Session, ev Event) error {
	ok, err := e.requireOperator(ctx, s)
	if err != nil || !ok {
		return err
	}
	id, perr := strconv.ParseInt(ev.Payload, 10, 64)
	if perr != nil {
		return e.hint(ctx, s)
	}
	order, err := e.orders.Approve(ctx, id)
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Order #%d does not exist.", id)})
	case errors.Is(err, ledger.ErrAlreadyModerated):
		return e.resp.Prompt(ctx, s.UserID, Prompt{
			Text: fmt.Sprintf("Order #%d was already moderated: %s.", order.ID, order.Status),
		})
	case err != nil:
		return err
	}
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Order #%d approved.", order.ID)})
}

func (e *Engine) onReject(ctx context.Context, s *Session, ev Event) error {
	ok, err := e.requireOperator(ctx, s)
	if err != nil || !ok {
		return err
	}
	id, perr := strconv.ParseInt(ev.Payload, 10, 64)
	if perr != nil {
		return e.hint(ctx, s)
	}
	order, err := e.orders.Order(ctx, id)
	switch {
	case errors.Is(err, ledger.ErrOrderNotFound):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Order #%d does not exist.", id)})
	case err != nil:
		return err
	}
	if order.Status.Terminal() {
		return e.resp.Prompt(ctx, s.UserID, Prompt{
			Text: fmt.Sprintf("Order #%d was already moderated: %s.", order.ID, order.Status),
		})
	}
	s.Selection.RejectOrderID = id
	s.State = StateAwaitingRejectReason
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskReason})
}

func (e *Engine) onRejectReason(ctx context.Context, s *Session, ev Event) error {
	order, err := e.orders.Reject(ctx, s.Selection.RejectOrderID, ev.Text)
	switch {
	case errors.Is(err, ledger.ErrReasonRequired):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgReasonEmpty})
	case errors.Is(err, ledger.ErrAlreadyModerated):
		s.reset()
		return e.menu(ctx, s, fmt.Sprintf("Order #%d was already moderated: %s.", order.ID, order.Status))
	case errors.Is(err, ledger.ErrOrderNotFound):
		s.reset()
		return e.menu(ctx, s, "That order no longer exists.")
	case err != nil:
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("Order #%d rejected.", order.ID))
}

// --- operator panel ---

func (e *Engine) onAdminButton(ctx context.Context, s *Session, ev Event) error {
	ok, err := e.requireOperator(ctx, s)
	if err != nil || !ok {
		return err
	}
	switch ev.Button {
	case BtnAdminPanel:
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAdminPanel, Choices: adminPanelRows()})

	case BtnAdminStats:
		users, err := e.roster.CountUsers(ctx)
		if err != nil {
			return err
		}
		orders, err := e.orders.CountOrders(ctx)
		if err != nil {
			return err
		}
		return e.resp.Prompt(ctx, s.UserID, Prompt{
			Text: fmt.Sprintf("Users: %d\nOrders: %d", users, orders),
		})

	case BtnAdminUsers:
		users, err := e.roster.Users(ctx)
		if err != nil {
			return err
		}
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: userListing(users)})

	case BtnAdminOrders:
		orders, err := e.orders.AllOrders(ctx)
		if err != nil {
			return err
		}
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: orderListing("All orders:", orders)})

	case BtnAdminPending:
		return e.promptPending(ctx, s)

	case BtnAdminServices:
		services, err := e.catalog.AllServices(ctx)
		if err != nil {
			return err
		}
		text := "Catalog:"
		for _, svc := range services {
			state := "on"
			if !svc.Active {
				state = "off"
			}
			text += fmt.Sprintf("\n#%d %s [%s]", svc.ID, svc.Name, state)
		}
		rows := [][]Choice{
			{{Label: "Add service", Key: BtnServiceAdd}, {Label: "Delete service", Key: BtnServiceDelete}},
			{{Label: "Switch on/off", Key: BtnServiceToggle}},
		}
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text, Choices: rows})

	case BtnAdminRoster:
		ids, err := e.roster.Operators(ctx)
		if err != nil {
			return err
		}
		text := "Operators:"
		for _, id := range ids {
			text += fmt.Sprintf("\n%d", id)
		}
		rows := [][]Choice{{
			{Label: "Add", Key: BtnOperatorAdd},
			{Label: "Remove", Key: BtnOperatorRemove},
		}}
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: text, Choices: rows})

	case BtnBroadcast:
		s.State = StateAwaitingBroadcast
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskBroadcast})

	case BtnOperatorAdd:
		s.State = StateAwaitingOperatorAddID
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskUserID})

	case BtnOperatorRemove:
		s.State = StateAwaitingOperatorRemoveID
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskUserID})

	case BtnServiceAdd:
		s.State = StateAwaitingServiceInput
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskService})

	case BtnServiceDelete:
		s.State = StateAwaitingServiceDeleteID
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskServiceDel})

	case BtnServiceToggle:
		s.State = StateAwaitingServiceToggleID
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskServiceToggle})
	}
	return e.hint(ctx, s)
}

func adminPanelRows() [][]Choice {
	return [][]Choice{
		{{Label: "Stats", Key: BtnAdminStats}, {Label: "Users", Key: BtnAdminUsers}},
		{{Label: "Orders", Key: BtnAdminOrders}, {Label: "Pending", Key: BtnAdminPending}},
		{{Label: "Services", Key: BtnAdminServices}, {Label: "Operators", Key: BtnAdminRoster}},
		{{Label: "Broadcast", Key: BtnBroadcast}},
	}
}

func (e *Engine) promptPending(ctx context.Context, s *Session) error {
	orders, err := e.orders.PendingOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: "No orders are waiting for review."})
	}
	for _, o := range orders {
		payload := strconv.FormatInt(o.ID, 10)
		err := e.resp.Prompt(ctx, s.UserID, Prompt{
			Text: orderLine(o),
			Choices: [][]Choice{{
				{Label: "Approve", Key: BtnApprove, Payload: payload},
				{Label: "Reject", Key: BtnReject, Payload: payload},
			}},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) onOperatorAddID(ctx context.Context, s *Session, ev Event) error {
	id, perr := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if perr != nil {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadUserID})
	}
	err := e.roster.Promote(ctx, id)
	switch {
	case errors.Is(err, roster.ErrUnknownUser):
		s.reset()
		return e.menu(ctx, s, "That user has never contacted the bot, they must press start first.")
	case errors.Is(err, roster.ErrAlreadyOperator):
		s.reset()
		return e.menu(ctx, s, fmt.Sprintf("%d is already an operator.", id))
	case err != nil:
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("%d is now an operator.", id))
}

func (e *Engine) onOperatorRemoveID(ctx context.Context, s *Session, ev Event) error {
	id, perr := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if perr != nil {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadUserID})
	}
	err := e.roster.Demote(ctx, id)
	switch {
	case errors.Is(err, roster.ErrInitialOperator):
		s.reset()
		return e.menu(ctx, s, "The initial operator cannot be removed.")
	case errors.Is(err, roster.ErrNotOperator):
		s.reset()
		return e.menu(ctx, s, fmt.Sprintf("%d is not an operator.", id))
	case err != nil:
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("%d is no longer an operator.", id))
}

func (e *Engine) onBroadcastText(ctx context.Context, s *Session, ev Event) error {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgAskBroadcast})
	}
	e.announce.Go(s.UserID, text)
	s.reset()
	return e.menu(ctx, s, msgBroadcastRun)
}

func (e *Engine) onServiceInput(ctx context.Context, s *Session, ev Event) error {
	svc, err := catalog.ParseServiceInput(ev.Text)
	if err != nil {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadService})
	}
	id, err := e.catalog.AddService(ctx, svc)
	switch {
	case errors.Is(err, catalog.ErrDuplicateName):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: "A service with that name already exists. Send a different one:"})
	case errors.Is(err, catalog.ErrBadServiceInput):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadService})
	case err != nil:
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("Service #%d %q added.", id, svc.Name))
}

func (e *Engine) onServiceDeleteID(ctx context.Context, s *Session, ev Event) error {
	id, perr := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if perr != nil {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadServiceID})
	}
	err := e.catalog.RemoveService(ctx, id)
	switch {
	case errors.Is(err, catalog.ErrServiceNotFound):
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Service #%d does not exist. Send another ID:", id)})
	case err != nil:
		return err
	}
	s.reset()
	return e.menu(ctx, s, fmt.Sprintf("Service #%d deleted.", id))
}

func (e *Engine) onServiceToggleID(ctx context.Context, s *Session, ev Event) error {
	id, perr := strconv.ParseInt(strings.TrimSpace(ev.Text), 10, 64)
	if perr != nil {
		return e.resp.Prompt(ctx, s.UserID, Prompt{Text: msgBadServiceID})
	}
	services, err := e.catalog.AllServices(ctx)
	if err != nil {
		return err
	}
	for _, svc := range services {
		if svc.ID != id {
			continue
		}
		active := !svc.Active
		err := e.catalog.SetActive(ctx, id, active)
		switch {
		case errors.Is(err, catalog.ErrServiceNotFound):
			return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Service #%d does not exist. Send another ID:", id)})
		case err != nil:
			return err
		}
		s.reset()
		verb := "switched off"
		if active {
			verb = "switched on"
		}
		return e.menu(ctx, s, fmt.Sprintf("Service #%d %s.", id, verb))
	}
	return e.resp.Prompt(ctx, s.UserID, Prompt{Text: fmt.Sprintf("Service #%d does not exist. Send another ID:", id)})
}
