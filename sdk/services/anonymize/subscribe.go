// SPDX-FileCopyrightText: © 2025 DSLab - Fondazione Bruno Kessler
//
// SPDX-License-Identifier: Apache-2.0

package anonymize

import "sync"

// Subscription delivers TaskEvents until Close. Events are not dropped: a
// subscriber that stops reading holds back the uploads that publish to it, so
// keep draining C (or Close it).
type Subscription struct {
	C <-chan TaskEvent

	ch     chan TaskEvent
	done   chan struct{}
	once   sync.Once
	broker *broker
}

// Close stops delivery and closes C.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.broker.remove(s)
	})
}

type broker struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

func newBroker() *broker {
	return &broker{subs: make(map[*Subscription]struct{})}
}

func (b *broker) subscribe(buffer int) *Subscription {
	if buffer < 0 {
		buffer = 0
	}
	ch := make(chan TaskEvent, buffer)
	s := &Subscription{C: ch, ch: ch, done: make(chan struct{}), broker: b}
	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()
	return s
}

// remove runs after done is closed, so any publish blocked on s has returned
// and released its read lock before ch is closed.
func (b *broker) remove(s *Subscription) {
	b.mu.Lock()
	delete(b.subs, s)
	close(s.ch)
	b.mu.Unlock()
}

func (b *broker) publish(ev TaskEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}
