package broadcast

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAudience []int64

func (f fakeAudience) ActiveUserIDs(context.Context) ([]int64, error) { return f, nil }

type failingAudience struct{}

func (failingAudience) ActiveUserIDs(context.Context) ([]int64, error) {
	return nil, errors.New("db down")
}

type fakeSender struct {
	mu     sync.Mutex
	sent   map[int64][]string
	failOn map[int64]bool
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[int64][]string), failOn: make(map[int64]bool)}
}

func (f *fakeSender) Send(_ context.Context, userID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOn[userID] {
		return errors.New("blocked")
	}
	f.sent[userID] = append(f.sent[userID], text)
	return nil
}

func (f *fakeSender) to(userID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[userID]
}

func TestBroadcastReachesEveryoneButInitiator(t *testing.T) {
	sender := newFakeSender()
	b := New(context.Background(), sender, fakeAudience{1, 2, 3}, 0)

	b.Go(2, "hello")
	b.Wait()

	assert.Equal(t, []string{"hello"}, sender.to(1))
	assert.Equal(t, []string{"hello"}, sender.to(3))
	// The initiator only gets the summary.
	require.Len(t, sender.to(2), 1)
	assert.Contains(t, sender.to(2)[0], "2 delivered, 0 failed")
}

func TestBroadcastContinuesPastFailures(t *testing.T) {
	sender := newFakeSender()
	sender.failOn[1] = true
	sender.failOn[3] = true
	b := New(context.Background(), sender, fakeAudience{1, 2, 3, 4}, 0)

	b.Go(99, "notice")
	b.Wait()

	assert.Equal(t, []string{"notice"}, sender.to(2))
	assert.Equal(t, []string{"notice"}, sender.to(4))
	require.Len(t, sender.to(99), 1)
	assert.Contains(t, sender.to(99)[0], "2 delivered, 2 failed")
}

func TestBroadcastReportsAudienceFailure(t *testing.T) {
	sender := newFakeSender()
	b := New(context.Background(), sender, failingAudience{}, 0)

	b.Go(99, "notice")
	b.Wait()

	require.Len(t, sender.to(99), 1)
	assert.Contains(t, sender.to(99)[0], "Broadcast failed")
}

func TestBroadcastStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := newFakeSender()
	b := New(ctx, sender, fakeAudience{1, 2, 3}, 0)

	b.Go(99, "notice")
	b.Wait()

	assert.Empty(t, sender.to(1))
	assert.Empty(t, sender.to(2))
	assert.Empty(t, sender.to(3))
}
