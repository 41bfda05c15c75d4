package broadcast

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rootzsu/orderbot/core/logger"
)

// Sender delivers one plain message to one user.
type Sender interface {
	Send(ctx context.Context, userID int64, text string) error
}

// Audience yields the IDs of users eligible to receive broadcasts.
type Audience interface {
	ActiveUserIDs(ctx context.Context) ([]int64, error)
}

// Broadcaster fans an operator message out to every active user in the
// background. A failed delivery never stops the run; the initiator gets a
// delivered/failed summary at the end.
type Broadcaster struct {
	ctx      context.Context
	sender   Sender
	audience Audience
	pace     time.Duration

	wg sync.WaitGroup
}

// New builds a Broadcaster bound to the application context. Pace is the
// delay between consecutive sends, zero disables pacing.
func New(ctx context.Context, sender Sender, audience Audience, pace time.Duration) *Broadcaster {
	return &Broadcaster{
		ctx:      ctx,
		sender:   sender,
		audience: audience,
		pace:     pace,
	}
}

// Go starts one broadcast run and returns immediately.
func (b *Broadcaster) Go(fromID int64, text string) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.run(fromID, text)
	}()
}

// Wait blocks until all started runs have finished. Used on shutdown.
func (b *Broadcaster) Wait() {
	b.wg.Wait()
}

func (b *Broadcaster) run(fromID int64, text string) {
	ids, err := b.audience.ActiveUserIDs(b.ctx)
	if err != nil {
		logger.Broadcast.Error("audience lookup failed",
			slog.String("event", "broadcast.audience_error"),
			slog.Any("error", err),
		)
		b.report(fromID, "Broadcast failed: could not load the user list.")
		return
	}

	var sent, failed int
	for _, id := range ids {
		if id == fromID {
			continue
		}
		if b.ctx.Err() != nil {
			break
		}
		if err := b.sender.Send(b.ctx, id, text); err != nil {
			failed++
			logger.Broadcast.Debug("delivery failed",
				slog.String("event", "broadcast.delivery_error"),
				slog.Int64("user_id", id),
				slog.Any("error", err),
			)
		} else {
			sent++
		}
		b.sleep()
	}

	logger.Broadcast.Info("broadcast finished",
		slog.String("event", "broadcast.done"),
		slog.Int64("user_id", fromID),
		slog.Int("sent", sent),
		slog.Int("failed", failed),
	)
	b.report(fromID, fmt.Sprintf("Broadcast finished: %d delivered, %d failed.", sent, failed))
}

func (b *Broadcaster) report(fromID int64, text string) {
	if err := b.sender.Send(b.ctx, fromID, text); err != nil {
		logger.Broadcast.Warn("summary undelivered",
			slog.String("event", "broadcast.summary_error"),
			slog.Int64("user_id", fromID),
			slog.Any("error", err),
		)
	}
}

func (b *Broadcaster) sleep() {
	if b.pace <= 0 {
		return
	}
	t := time.NewTimer(b.pace)
	defer t.Stop()
	select {
	case <-t.C:
	case <-b.ctx.Done():
	}
}
