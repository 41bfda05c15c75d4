package flow

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreFirstTouchDefaults(t *testing.T) {
	st := NewStore()

	err := st.Do(42, func(s *Session) error {
		assert.Equal(t, int64(42), s.UserID)
		assert.Equal(t, StateMainMenu, s.State)
		assert.False(t, s.CreatedAt.IsZero())
		return nil
	})
	require.NoError(t, err)
}

func TestStoreSerializesPerUser(t *testing.T) {
	st := NewStore()

	// Concurrent increments through Do must not lose updates; a lost update
	// would mean two events for the same user ran at once.
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.Do(42, func(s *Session) error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, counter)
}

func TestResetClearsDraft(t *testing.T) {
	st := NewStore()

	_ = st.Do(42, func(s *Session) error {
		s.State = StateAwaitingProof
		s.Selection.Service = testService()
		s.reset()
		assert.Equal(t, StateMainMenu, s.State)
		assert.Nil(t, s.Selection.Service)
		return nil
	})
	assert.Equal(t, StateMainMenu, st.StateOf(42))
}
