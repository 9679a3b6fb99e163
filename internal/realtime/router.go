package realtime

import (
	"log"
	"time"

	"tasktracker/internal/models"
)

// Notifier is the fire-and-forget notification contract consumed by the
// domain services. Delivery never blocks, never retries and never propagates
// failure back to the triggering request.
type Notifier interface {
	Notify(userID int64, n models.Notification)
	NotifyMany(userIDs []int64, n models.Notification)
	Broadcast(n models.Notification)
}

// Pusher is the transport side the Router pushes through.
type Pusher interface {
	Push(connID string, payload any) bool
	Broadcast(payload any)
}

// Sink is an optional secondary delivery channel (e.g. Telegram) mirrored on
// every per-user notification. Errors are the sink's problem.
type Sink interface {
	Deliver(userID int64, n models.Notification)
}

// Router resolves users through the Registry and performs a best-effort push.
// An unresolved user is a silent drop, not an error.
type Router struct {
	registry *Registry
	pusher   Pusher
	sink     Sink // may be nil
}

func NewRouter(registry *Registry, pusher Pusher, sink Sink) *Router {
	return &Router{registry: registry, pusher: pusher, sink: sink}
}

func (r *Router) Notify(userID int64, n models.Notification) {
	n.Timestamp = time.Now()

	if connID, ok := r.registry.Resolve(userID); ok {
		if r.pusher.Push(connID, n) {
			log.Printf("[notify][sent] user=%d type=%s", userID, n.Type)
		}
	}

	// The sink may do network I/O, so it runs off the caller's goroutine.
	if r.sink != nil {
		go r.sink.Deliver(userID, n)
	}
}

func (r *Router) NotifyMany(userIDs []int64, n models.Notification) {
	for _, id := range userIDs {
		r.Notify(id, n)
	}
}

func (r *Router) Broadcast(n models.Notification) {
	n.Timestamp = time.Now()
	r.pusher.Broadcast(n)
	log.Printf("[notify][broadcast] type=%s", n.Type)
}
