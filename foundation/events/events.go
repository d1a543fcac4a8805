// Package events allows for the registering and receiving of auction events.
package events

import (
	"fmt"
	"sync"
)

// Events maintains a mapping of unique id and channels so websocket
// goroutines can register and receive auction events.
type Events struct {
	subscribers map[string]chan string
	mu          sync.RWMutex
}

// New constructs an Events for registering and receiving events.
func New() *Events {
	return &Events{
		subscribers: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that were provided by
// the call to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.subscribers {
		delete(evt.subscribers, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if ch, exists := evt.subscribers[id]; exists {
		return ch
	}

	// A settle can fire while the websocket writer is mid-send. The buffer
	// gives the receiver room so those messages are not dropped.
	const messageBuffer = 100

	ch := make(chan string, messageBuffer)
	evt.subscribers[id] = ch

	return ch
}

// Release closes and removes the channel that was provided by
// the call to Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.subscribers[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.subscribers, id)
	close(ch)

	return nil
}

// Send formats and signals a message to every registered channel. Send will
// not block waiting for a receiver on any given channel.
func (evt *Events) Send(v string, args ...any) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	s := fmt.Sprintf(v, args...)

	for _, ch := range evt.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}
