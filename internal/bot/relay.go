package bot

import "sync"

// relayBook maps relayed support messages to the user who sent them, so an
// operator reply lands with the right person. Entries are capped to keep
// long-running processes bounded.
type relayBook struct {
	mu    sync.Mutex
	byMsg map[int]int64
	order []int
	limit int
}

func newRelayBook() *relayBook {
	return &relayBook{
		byMsg: make(map[int]int64),
		limit: 1000,
	}
}

func (r *relayBook) remember(msgID int, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byMsg[msgID]; exists {
		return
	}
	r.byMsg[msgID] = userID
	r.order = append(r.order, msgID)
	for len(r.order) > r.limit {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.byMsg, oldest)
	}
}

func (r *relayBook) lookup(msgID int) (int64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byMsg[msgID]
	return id, ok
}
