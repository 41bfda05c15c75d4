package bot

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/rootzsu/orderbot/core/telegram"
	"github.com/rootzsu/orderbot/core/telegram/callbacks"
	"github.com/rootzsu/orderbot/core/telegram/commands"
	"github.com/rootzsu/orderbot/core/telegram/helpers"
	"github.com/rootzsu/orderbot/core/telegram/middleware"
	"github.com/rootzsu/orderbot/core/telegram/router"
	"github.com/rootzsu/orderbot/core/telegram/ui"
	"github.com/rootzsu/orderbot/internal/broadcast"
	"github.com/rootzsu/orderbot/internal/catalog"
	"github.com/rootzsu/orderbot/internal/config"
	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/flow"
	"github.com/rootzsu/orderbot/internal/ledger"
	"github.com/rootzsu/orderbot/internal/roster"
)

var _ ui.FallbackProvider = (*App)(nil)

// App wires the conversation engine to the Telegram runtime.
type App struct {
	cfg *config.Config

	engine   *flow.Engine
	roster   *roster.Service
	announce *broadcast.Broadcaster

	transport *transport
	relay     *relayBook

	bgCancel context.CancelFunc
}

// NewApp builds the full application graph on top of an open database.
func NewApp(cfg *config.Config, db *sqlx.DB) *App {
	t := &transport{}
	relay := newRelayBook()

	rosterSvc := roster.NewService(roster.NewRepository(db), cfg.InitialOperatorID)
	catalogSvc := catalog.NewService(catalog.NewRepository(db))
	ledgerSvc := ledger.NewService(ledger.NewRepository(db), &notifier{t: t, roster: rosterSvc})

	bgCtx, bgCancel := context.WithCancel(context.Background())
	announce := broadcast.New(bgCtx, t, rosterSvc, time.Duration(cfg.Broadcast.PaceMS)*time.Millisecond)

	engine := flow.NewEngine(
		flow.NewStore(),
		catalogSvc,
		ledgerSvc,
		rosterSvc,
		cfg.Payments,
		announce,
		&responder{t: t, relay: relay, roster: rosterSvc},
	)

	return &App{
		cfg:       cfg,
		engine:    engine,
		roster:    rosterSvc,
		announce:  announce,
		transport: t,
		relay:     relay,
		bgCancel:  bgCancel,
	}
}

// TelegramRunOptions assembles the registry, routes, and lifecycle hooks
// consumed by the core runtime.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	a.registerCallbacks(reg)
	reg.SetCallbackNotFound(a.UnknownCallback())
	reg.SetTextFallback(a.UnknownText())

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{})
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{NotFound: a.UnknownCallback()}))
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownDocument: a.UnknownDocument(),
	})...)
	routes = append(routes, a.photoRoute())

	core := a.cfg.CoreConfig()
	return coretelegram.RunOptions{
		Config:      core,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.transport.attach(rt)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			a.bgCancel()
			a.announce.Wait()
			return nil
		},
	}, nil
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Description: "Open the main menu",
		Handler: func(c tele.Context) error {
			return a.engine.Start(helpers.BuildContext(c), senderUser(c))
		},
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Description: "Cancel the current action",
		Handler: func(c tele.Context) error {
			return a.engine.Cancel(helpers.BuildContext(c), c.Sender().ID)
		},
	})
}

var callbackKeys = []string{
	flow.BtnMainMenu,
	flow.BtnPriceList,
	flow.BtnMyAccount,
	flow.BtnOrderStart,
	flow.BtnContactOperator,
	flow.BtnSelectService,
	flow.BtnPay,
	flow.BtnCancelOrder,
	flow.BtnAdminPanel,
	flow.BtnAdminStats,
	flow.BtnAdminUsers,
	flow.BtnAdminOrders,
	flow.BtnAdminPending,
	flow.BtnAdminServices,
	flow.BtnAdminRoster,
	flow.BtnBroadcast,
	flow.BtnOperatorAdd,
	flow.BtnOperatorRemove,
	flow.BtnServiceAdd,
	flow.BtnServiceDelete,
	flow.BtnServiceToggle,
	flow.BtnApprove,
	flow.BtnReject,
}

func (a *App) registerCallbacks(reg *coretelegram.Registry) {
	for _, key := range callbackKeys {
		k := key
		_ = reg.RegisterCallback(k, func(c tele.Context) error {
			return a.engine.Handle(helpers.BuildContext(c), flow.Event{
				From:    senderUser(c),
				Kind:    flow.KindButton,
				Button:  k,
				Payload: callbacks.CallbackPayload(c),
			})
		})
	}
}

// InProgress satisfies the text router's FSM interface.
func (a *App) InProgress(userID int64) bool {
	return a.engine.InProgress(userID)
}

// ManagerHandler feeds mid-conversation updates into the engine. Commands
// that escape the conversation are honored before anything else.
func (a *App) ManagerHandler(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	switch strings.TrimSpace(c.Text()) {
	case "/start":
		return a.engine.Start(ctx, senderUser(c))
	case "/cancel":
		return a.engine.Cancel(ctx, c.Sender().ID)
	}
	ev, ok := eventFrom(c)
	if !ok {
		return helpers.SendText(c, "I cannot accept that kind of content here.")
	}
	return a.engine.Handle(ctx, ev)
}

func (a *App) photoRoute() coretelegram.Route {
	h := func(c tele.Context) error {
		if a.engine.InProgress(c.Sender().ID) {
			return a.ManagerHandler(c)
		}
		return a.UnknownDocument()(c)
	}
	return coretelegram.Route{
		Endpoint: tele.OnPhoto,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(h)),
	}
}

// UnknownText handles free text outside any conversation step. Operator
// replies to relayed support messages are routed back to the user here.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		if handled, err := a.relayReply(c); handled {
			return err
		}
		return helpers.SendText(c, "Use the buttons, or /start to open the menu.")
	}
}

// UnknownDocument handles attachments that no conversation step expects.
func (a *App) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendText(c, "I was not expecting a file. Use /start to open the menu.")
	}
}

// UnknownCallback handles presses of buttons this build no longer knows.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
	}
}

// relayReply routes an operator's reply to a relayed support message back
// to its author.
func (a *App) relayReply(c tele.Context) (bool, error) {
	m := c.Message()
	if m == nil || m.ReplyTo == nil {
		return false, nil
	}
	userID, ok := a.relay.lookup(m.ReplyTo.ID)
	if !ok {
		return false, nil
	}
	ctx := helpers.BuildContext(c)
	sender, err := helpers.CurrentUser[*domain.User](ctx, a.roster, c.Sender().ID)
	if err != nil || sender == nil {
		return false, nil
	}
	operator, err := a.roster.IsOperator(ctx, sender.ID)
	if err != nil || !operator {
		return false, nil
	}
	return true, a.transport.sendAsync(ctx, "relay.reply", "sendMessage", func(b *tele.Bot) error {
		_, err := b.Send(&tele.User{ID: userID}, "Support: "+m.Text)
		return err
	})
}
