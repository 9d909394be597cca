package eventbus

import "time"

// Envelope wraps a published event with the bookkeeping the bus needs
// to order and dispatch it: its type tag, priority, and enqueue time.
type Envelope struct {
	Type     string
	Priority int
	Payload  interface{}
	Enqueued time.Time
	seq      uint64
}

// SubscriptionToken identifies one registered handler so it can later
// be unsubscribed.
type SubscriptionToken struct {
	Type      string
	HandlerID uint64
}

// Handler receives dispatched events. A handler panic is recovered by
// the dispatching worker and counted, never propagated.
type Handler func(Envelope)
