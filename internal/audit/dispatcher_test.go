package audit

import (
	"sync"
	"testing"

	"github.com/BruksfildServices01/barberbook/internal/models"
	"github.com/BruksfildServices01/barberbook/internal/testdb"
)

type recordingFeed struct {
	mu     sync.Mutex
	events []string
}

func (f *recordingFeed) Publish(eventType string, data any) {
	f.mu.Lock()
	f.events = append(f.events, eventType)
	f.mu.Unlock()
}

func TestDispatcher_PersistsAndForwards(t *testing.T) {
	db := testdb.Open(t)

	feed := &recordingFeed{}
	d := NewDispatcher(New(db), nil, feed)

	d.Dispatch(Event{
		Action:   "booking_created",
		Entity:   "booking",
		EntityID: "b-1",
		Metadata: map[string]string{"provider": "p-1"},
	})
	d.Close()

	var logs []models.AuditLog
	if err := db.Find(&logs).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(logs) != 1 || logs[0].Action != "booking_created" || logs[0].EntityID != "b-1" {
		t.Fatalf("unexpected logs: %+v", logs)
	}
	if string(logs[0].Metadata) != `{"provider":"p-1"}` {
		t.Fatalf("unexpected metadata %s", logs[0].Metadata)
	}
	if len(feed.events) != 1 || feed.events[0] != "booking_created" {
		t.Fatalf("unexpected feed events: %v", feed.events)
	}
}

func TestDispatcher_NilIsSafe(t *testing.T) {
	var d *Dispatcher
	d.Dispatch(Event{Action: "noop"})
	d.Close()
}

func TestDispatcher_DispatchAfterCloseIsDropped(t *testing.T) {
	feed := &recordingFeed{}
	d := NewDispatcher(nil, nil, feed)
	d.Close()

	d.Dispatch(Event{Action: "booking_paid"})
	d.Close()

	if len(feed.events) != 0 {
		t.Fatalf("expected no events after close, got %v", feed.events)
	}
}
