package bot

import (
	"context"
	"errors"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	coretelegram "github.com/rootzsu/orderbot/core/telegram"
	tgsender "github.com/rootzsu/orderbot/core/telegram/sender"
)

var errNotRunning = errors.New("bot: transport is not running")

// transport holds the live bot handle for proactive sends to arbitrary
// users. It is attached in the OnStart hook; sends before that fail fast.
type transport struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[tgsender.Dispatcher]
}

func (t *transport) attach(rt coretelegram.Runtime) {
	t.bot.Store(rt.Bot)
	t.disp.Store(rt.Dispatcher)
}

// Send delivers one message synchronously. The error reflects the actual
// API call, which broadcast runs rely on for their counters.
func (t *transport) Send(ctx context.Context, userID int64, text string) error {
	b := t.bot.Load()
	if b == nil {
		return errNotRunning
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.Send(&tele.User{ID: userID}, text)
	return err
}

// sendAsync queues the call on the retrying dispatcher and falls back to a
// direct call when the queue is saturated or closed.
func (t *transport) sendAsync(ctx context.Context, action, endpoint string, run func(b *tele.Bot) error) error {
	b := t.bot.Load()
	if b == nil {
		return errNotRunning
	}
	call := func() error { return run(b) }
	d := t.disp.Load()
	if d == nil {
		return call()
	}
	if err := d.Enqueue(ctx, action, endpoint, call); err != nil {
		if errors.Is(err, tgsender.ErrQueueFull) || errors.Is(err, tgsender.ErrQueueClosed) {
			return call()
		}
		return err
	}
	return nil
}
