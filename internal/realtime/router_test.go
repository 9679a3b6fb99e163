package realtime

import (
	"sync"
	"testing"
	"time"

	"tasktracker/internal/models"
)

type pushRecord struct {
	ConnID  string
	Payload models.Notification
}

type fakePusher struct {
	pushes     []pushRecord
	broadcasts []models.Notification
	pushOK     bool
}

func (p *fakePusher) Push(connID string, payload any) bool {
	p.pushes = append(p.pushes, pushRecord{ConnID: connID, Payload: payload.(models.Notification)})
	return p.pushOK
}

func (p *fakePusher) Broadcast(payload any) {
	p.broadcasts = append(p.broadcasts, payload.(models.Notification))
}

// fakeSink is goroutine-safe because the router delivers off the caller's
// goroutine.
type fakeSink struct {
	mu        sync.Mutex
	delivered []int64
}

func (s *fakeSink) Deliver(userID int64, n models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, userID)
}

func (s *fakeSink) snapshot() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.delivered...)
}

func TestRouterNotifyBoundUser(t *testing.T) {
	registry := NewRegistry()
	registry.Bind(7, "conn-7")
	pusher := &fakePusher{pushOK: true}
	router := NewRouter(registry, pusher, nil)

	router.Notify(7, models.Notification{Type: models.NotifyTaskAssigned, Message: "hi", TaskID: 3})

	if len(pusher.pushes) != 1 {
		t.Fatalf("pushes = %d, want 1", len(pusher.pushes))
	}
	got := pusher.pushes[0]
	if got.ConnID != "conn-7" {
		t.Errorf("ConnID = %q, want conn-7", got.ConnID)
	}
	if got.Payload.Type != models.NotifyTaskAssigned || got.Payload.TaskID != 3 {
		t.Errorf("payload = %+v", got.Payload)
	}
	if got.Payload.Timestamp.IsZero() {
		t.Error("router must stamp the timestamp before pushing")
	}
	if time.Since(got.Payload.Timestamp) > time.Minute {
		t.Errorf("timestamp is stale: %v", got.Payload.Timestamp)
	}
}

func TestRouterNotifyUnboundUserIsSilentDrop(t *testing.T) {
	registry := NewRegistry()
	pusher := &fakePusher{pushOK: true}
	router := NewRouter(registry, pusher, nil)

	router.Notify(42, models.Notification{Type: models.NotifyTaskUpdated})

	if len(pusher.pushes) != 0 {
		t.Fatalf("pushes = %d, want 0 for an unbound user", len(pusher.pushes))
	}
}

func TestRouterNotifyMirrorsToSink(t *testing.T) {
	registry := NewRegistry()
	sink := &fakeSink{}
	router := NewRouter(registry, &fakePusher{}, sink)

	// sink receives the notification even with no socket binding
	router.Notify(5, models.Notification{Type: models.NotifyNewComment})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := sink.snapshot(); len(got) == 1 && got[0] == 5 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("sink.delivered = %v, want [5]", sink.snapshot())
}

type stuckSink struct {
	release chan struct{}
}

func (s *stuckSink) Deliver(userID int64, n models.Notification) {
	<-s.release
}

func TestRouterNotifyDoesNotWaitForSink(t *testing.T) {
	sink := &stuckSink{release: make(chan struct{})}
	defer close(sink.release)
	router := NewRouter(NewRegistry(), &fakePusher{}, sink)

	done := make(chan struct{})
	go func() {
		router.Notify(5, models.Notification{Type: models.NotifyNewComment})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a slow sink")
	}
}

func TestRouterNotifyMany(t *testing.T) {
	registry := NewRegistry()
	registry.Bind(1, "conn-1")
	registry.Bind(3, "conn-3")
	pusher := &fakePusher{pushOK: true}
	router := NewRouter(registry, pusher, nil)

	router.NotifyMany([]int64{1, 2, 3}, models.Notification{Type: models.NotifyTeamInvitation})

	if len(pusher.pushes) != 2 {
		t.Fatalf("pushes = %d, want 2 (user 2 is unbound)", len(pusher.pushes))
	}
}

func TestRouterBroadcast(t *testing.T) {
	pusher := &fakePusher{}
	router := NewRouter(NewRegistry(), pusher, nil)

	router.Broadcast(models.Notification{Type: models.NotifyTaskUpdated, Message: "maintenance"})

	if len(pusher.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(pusher.broadcasts))
	}
	if pusher.broadcasts[0].Timestamp.IsZero() {
		t.Error("broadcast payload must carry a timestamp")
	}
}
