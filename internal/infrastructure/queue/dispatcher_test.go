package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

type recordingAuditor struct {
	mu     sync.Mutex
	events []domain.VisitEvent
	done   chan struct{}
	want   int
}

func (a *recordingAuditor) Record(_ context.Context, e domain.VisitEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
	if len(a.events) == a.want {
		close(a.done)
	}
	return nil
}

func TestDispatcher_PreservesPerVisitOrder(t *testing.T) {
	const visits, perVisit = 10, 4
	auditor := &recordingAuditor{done: make(chan struct{}), want: visits * perVisit}
	d := NewDispatcher(3, auditor, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	types := []domain.VisitEventType{domain.EventCheckedIn, domain.EventSignatureAttached, domain.EventPhotoAttached, domain.EventCheckedOut}
	for v := 0; v < visits; v++ {
		for _, typ := range types {
			d.Publish(domain.VisitEvent{Type: typ, VisitID: fmt.Sprintf("visit-%d", v)})
		}
	}

	select {
	case <-auditor.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for events")
	}

	seen := make(map[string][]domain.VisitEventType)
	auditor.mu.Lock()
	for _, e := range auditor.events {
		seen[e.VisitID] = append(seen[e.VisitID], e.Type)
	}
	auditor.mu.Unlock()

	for visit, got := range seen {
		for i := range types {
			if got[i] != types[i] {
				t.Fatalf("%s events out of order: %v", visit, got)
			}
		}
	}

	cancel()
	d.Wait()
}

func TestDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewDispatcher(5, &recordingAuditor{}, zerolog.Nop())
	for _, id := range []string{"a", "visit-1", "0b7c9f3e-8c1d-4f8e-9b1a-2f1e7d6c5b4a"} {
		first := d.shardIndex(id)
		if first < 0 || first >= 5 {
			t.Fatalf("shard %d out of range", first)
		}
		if d.shardIndex(id) != first {
			t.Fatalf("shard for %q changed", id)
		}
	}
}

func TestDispatcher_PublishNeverBlocks(t *testing.T) {
	d := NewDispatcher(1, &recordingAuditor{}, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < channelBuffer+10; i++ {
			d.Publish(domain.VisitEvent{VisitID: "v"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Publish blocked on a full queue")
	}
}

type ctxCheckingAuditor struct {
	mu        sync.Mutex
	recorded  int
	cancelled int
}

func (a *ctxCheckingAuditor) Record(ctx context.Context, _ domain.VisitEvent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.recorded++
	if ctx.Err() != nil {
		a.cancelled++
	}
	return nil
}

func TestDispatcher_DrainsBufferedEventsOnShutdown(t *testing.T) {
	auditor := &ctxCheckingAuditor{}
	d := NewDispatcher(2, auditor, zerolog.Nop())

	const n = 20
	for i := 0; i < n; i++ {
		d.Publish(domain.VisitEvent{Type: domain.EventCheckedIn, VisitID: fmt.Sprintf("visit-%d", i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.Start(ctx)

	waited := make(chan struct{})
	go func() {
		d.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatalf("workers did not stop")
	}

	auditor.mu.Lock()
	defer auditor.mu.Unlock()
	if auditor.recorded != n {
		t.Fatalf("recorded %d events, want %d", auditor.recorded, n)
	}
	if auditor.cancelled != 0 {
		t.Fatalf("%d events were recorded on a cancelled context", auditor.cancelled)
	}
}
