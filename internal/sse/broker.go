// Package sse streams reading-list changes to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types sent to clients.
const (
	TypeItemAdded    = "item.added"
	TypeItemUpdated  = "item.updated"
	TypeItemMoved    = "item.moved"
	TypeItemDeleted  = "item.deleted"
	TypeListsChanged = "lists.changed"
)

const clientBuffer = 64

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Change describes a mutation of the lists. ItemID is empty for changes
// that are only known per list, such as an external edit of a list file.
type Change struct {
	Kind   string `json:"kind"`
	ItemID string `json:"id,omitempty"`
	List   string `json:"list"`
}

// Broker fans events out to subscribed clients.
//
// All mutable state (the client set and the time of the last lists.changed
// summary) is owned by one goroutine. Public methods talk to it over
// channels.
type Broker struct {
	summaryEvery time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	events  chan Event
	changes chan Change
	count   chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits at most one lists.changed summary
// per summaryEvery.
func NewBroker(summaryEvery time.Duration) *Broker {
	if summaryEvery <= 0 {
		summaryEvery = 2 * time.Second
	}
	b := &Broker{
		summaryEvery: summaryEvery,
		join:         make(chan chan []byte),
		leave:        make(chan chan []byte),
		events:       make(chan Event, 256),
		changes:      make(chan Change, 256),
		count:        make(chan chan int),
		stop:         make(chan struct{}),
		stopped:      make(chan struct{}),
	}
	go b.loop()
	return b
}

// frame renders an event in the text/event-stream wire format.
func frame(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev.Data)
	if err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", ev.Type, payload)), nil
}

func changeType(kind string) (string, bool) {
	switch kind {
	case "added":
		return TypeItemAdded, true
	case "updated":
		return TypeItemUpdated, true
	case "moved":
		return TypeItemMoved, true
	case "deleted":
		return TypeItemDeleted, true
	}
	return "", false
}

func (b *Broker) loop() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var lastSummary time.Time

	send := func(ev Event) {
		msg, err := frame(ev)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- msg:
			default:
				// Slow client; drop rather than stall every other client.
			}
		}
	}

	for {
		select {
		case <-b.stop:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case ev := <-b.events:
			send(ev)

		case c := <-b.changes:
			if typ, ok := changeType(c.Kind); ok && c.ItemID != "" {
				send(Event{Type: typ, Data: c})
			}
			if now := time.Now(); now.Sub(lastSummary) >= b.summaryEvery {
				lastSummary = now
				send(Event{Type: TypeListsChanged, Data: map[string]string{"list": c.List}})
			}

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is safe to
// call more than once.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// Subscribe registers a client. The returned channel is closed when the
// client is unsubscribed or the broker stops.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
	}
	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.leave <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
	case <-b.stopped:
		return 0
	}
	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends ev to every client as is.
func (b *Broker) Publish(ev Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.events <- ev:
	case <-b.stopped:
	}
}

// PublishChange announces a list mutation: an item.* event when the item is
// known, followed by a throttled lists.changed summary.
func (b *Broker) PublishChange(c Change) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- c:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
