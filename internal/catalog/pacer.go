package catalog

import (
	"sync"
	"time"
)

// pacer spaces catalog API calls one interval apart so a full product
// scroll stays inside the API's published request budget. Slots are
// handed out strictly in call order.
type pacer struct {
	mu   sync.Mutex
	gap  time.Duration
	next time.Time
}

func newPacer(requestsPerSecond int) *pacer {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	return &pacer{gap: time.Second / time.Duration(requestsPerSecond)}
}

// wait blocks until this caller's reserved slot arrives.
func (p *pacer) wait() {
	p.mu.Lock()
	slot := time.Now()
	if p.next.After(slot) {
		slot = p.next
	}
	p.next = slot.Add(p.gap)
	p.mu.Unlock()

	time.Sleep(time.Until(slot))
}
