package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tele "gopkg.in/telebot.v4"

	"github.com/rootzsu/orderbot/core/logger"
	"github.com/rootzsu/orderbot/core/telegram/format"
	"github.com/rootzsu/orderbot/core/telegram/keyboard"
	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/flow"
	"github.com/rootzsu/orderbot/internal/roster"
)

// notifier delivers order lifecycle notices. Everything here is best
// effort: a lost notification never affects the ledger.
type notifier struct {
	t      *transport
	roster *roster.Service
}

// OrderSubmitted announces a fresh pending order to every operator, with
// inline moderation buttons and the proof re-sent by its file ID.
func (n *notifier) OrderSubmitted(ctx context.Context, o *domain.Order) {
	ops, err := n.roster.Operators(ctx)
	if err != nil {
		logger.TG.Error("operator lookup failed",
			slog.String("event", "notify.submitted.error"),
			slog.Int64("order_id", o.ID),
			slog.String("err", err.Error()),
		)
		return
	}

	payload := strconv.FormatInt(o.ID, 10)
	markup := keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		{Text: "Approve", Unique: flow.BtnApprove, Data: payload},
		{Text: "Reject", Unique: flow.BtnReject, Data: payload},
	})
	text := fmt.Sprintf("New order #%d\nUser: %d\nService: %s\nPayment: %s %.2f",
		o.ID, o.UserID, o.ServiceName, o.Method, o.PricePaid)

	for _, op := range ops {
		to := op
		err := n.t.sendAsync(ctx, "notify.submitted", "sendMessage", func(b *tele.Bot) error {
			if _, err := b.Send(&tele.User{ID: to}, text, markup); err != nil {
				return err
			}
			if o.Proof == nil {
				return nil
			}
			_, err := b.Send(&tele.User{ID: to}, proofMedia(o.Proof))
			return err
		})
		if err != nil {
			logger.TG.Warn("order notice undelivered",
				slog.String("event", "notify.submitted.delivery_error"),
				slog.Int64("order_id", o.ID),
				slog.Int64("user_id", to),
				slog.String("err", err.Error()),
			)
		}
	}
}

// OrderModerated informs the order's owner about the decision.
func (n *notifier) OrderModerated(ctx context.Context, o *domain.Order) {
	var text string
	switch o.Status {
	case domain.StatusApproved:
		text = fmt.Sprintf("Your order #%d has been approved. Thank you!", o.ID)
	case domain.StatusRejected:
		text = fmt.Sprintf("Your order #%d has been rejected.", o.ID)
		if reason := format.DerefString(o.Comment, ""); reason != "" {
			text += "\nReason: " + reason
		}
	default:
		return
	}

	err := n.t.sendAsync(ctx, "notify.moderated", "sendMessage", func(b *tele.Bot) error {
		_, err := b.Send(&tele.User{ID: o.UserID}, text)
		return err
	})
	if err != nil {
		logger.TG.Warn("decision notice undelivered",
			slog.String("event", "notify.moderated.delivery_error"),
			slog.Int64("order_id", o.ID),
			slog.Int64("user_id", o.UserID),
			slog.String("err", err.Error()),
		)
	}
}

func proofMedia(p *domain.Proof) interface{} {
	if p.FileType == domain.ProofTypePhoto {
		return &tele.Photo{File: tele.File{FileID: p.FileID}}
	}
	return &tele.Document{File: tele.File{FileID: p.FileID}}
}
