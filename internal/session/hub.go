package session

import (
	"sync"

	"svw.info/nback/internal/domain"
)

// hub fans snapshots out to subscribers. Each subscriber channel holds only
// the newest snapshot, so publishing never blocks.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[int]chan domain.Snapshot
}

func (h *hub) subscribe(current domain.Snapshot) (<-chan domain.Snapshot, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]chan domain.Snapshot)
	}
	id := h.next
	h.next++
	ch := make(chan domain.Snapshot, 1)
	ch <- current
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs, id)
			close(ch)
		})
	}
}

func (h *hub) publish(s domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- s:
			continue
		default:
		}
		// replace the stale value
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	}
}
