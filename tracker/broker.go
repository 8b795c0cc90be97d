package tracker

import (
	"sync"

	"prism-tracker/domain"
)

const subscriberBuffer = 16

type broker struct {
	mu   sync.Mutex
	subs map[chan domain.Change]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[chan domain.Change]struct{})}
}

func (b *broker) subscribe() chan domain.Change {
	ch := make(chan domain.Change, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *broker) unsubscribe(ch chan domain.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; !ok {
		return
	}
	delete(b.subs, ch)
	close(ch)
}

func (b *broker) publish(c domain.Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
		}
	}
}
