package bot

import (
	"context"
	"fmt"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/core/telegram/keyboard"
	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/flow"
	"github.com/rootzsu/orderbot/internal/roster"
)

// responder turns engine prompts into Telegram messages.
type responder struct {
	t      *transport
	relay  *relayBook
	roster *roster.Service
}

func (r *responder) Prompt(ctx context.Context, userID int64, p flow.Prompt) error {
	markup := markupFor(p)
	return r.t.sendAsync(ctx, "prompt", "sendMessage", func(b *tele.Bot) error {
		to := &tele.User{ID: userID}
		var err error
		if markup != nil {
			_, err = b.Send(to, p.Text, markup)
		} else {
			_, err = b.Send(to, p.Text)
		}
		return err
	})
}

// Relay forwards a support message to every operator synchronously so the
// resulting message IDs can be remembered for reply routing. It fails only
// when no operator could be reached.
func (r *responder) Relay(ctx context.Context, from domain.User, text string) error {
	ops, err := r.roster.Operators(ctx)
	if err != nil {
		return err
	}
	b := r.t.bot.Load()
	if b == nil {
		return errNotRunning
	}

	body := fmt.Sprintf("Message from %s (ID %d):\n%s", from.DisplayName(), from.ID, text)
	delivered := 0
	for _, op := range ops {
		msg, err := b.Send(&tele.User{ID: op}, body)
		if err != nil {
			logger.TG.Warn("support relay delivery failed",
				slog.String("event", "relay.delivery_error"),
				slog.Int64("user_id", op),
				slog.String("err", err.Error()),
			)
			continue
		}
		r.relay.remember(msg.ID, from.ID)
		delivered++
	}
	if delivered == 0 {
		return fmt.Errorf("bot: no operator reachable")
	}
	return nil
}

func markupFor(p flow.Prompt) *tele.ReplyMarkup {
	if len(p.Choices) == 0 {
		return nil
	}
	rows := make([][]keyboard.InlineBtn, 0, len(p.Choices))
	for _, row := range p.Choices {
		btns := make([]keyboard.InlineBtn, 0, len(row))
		for _, c := range row {
			btns = append(btns, keyboard.InlineBtn{Text: c.Label, Unique: c.Key, Data: c.Payload})
		}
		rows = append(rows, btns)
	}
	return keyboard.InlineButtonsRows(rows...)
}
