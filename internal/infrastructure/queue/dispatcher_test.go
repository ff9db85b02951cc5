package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/bwils5/cloudbooks-manager/internal/core/domain"
	"github.com/bwils5/cloudbooks-manager/internal/core/ports"
)

type stubActivityService struct {
	mu        sync.Mutex
	recordErr error
	recorded  []ports.ActivityEntry
	done      chan struct{}
}

func newStubActivityService(recordErr error) *stubActivityService {
	return &stubActivityService{recordErr: recordErr, done: make(chan struct{}, 16)}
}

func (s *stubActivityService) Record(_ context.Context, action, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() { s.done <- struct{}{} }()
	if s.recordErr != nil {
		return s.recordErr
	}
	s.recorded = append(s.recorded, ports.ActivityEntry{Action: action, Detail: detail})
	return nil
}

func (s *stubActivityService) List(context.Context) ([]*domain.ActivityRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nil, nil
}

func (s *stubActivityService) entries() []ports.ActivityEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.ActivityEntry, len(s.recorded))
	copy(out, s.recorded)
	return out
}

func waitProcessed(t *testing.T, svc *stubActivityService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-svc.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for entry %d of %d", i+1, n)
		}
	}
}

func TestDispatcher_PersistsEnqueuedEntries(t *testing.T) {
	svc := newStubActivityService(nil)
	d := NewDispatcher(2, svc, Metrics{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ActivityEntry{Action: "Created book", Detail: "Title: Learning Go"})
	waitProcessed(t, svc, 1)

	got := svc.entries()
	if len(got) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(got))
	}
	if got[0].Action != "Created book" || got[0].Detail != "Title: Learning Go" {
		t.Fatalf("unexpected entry: %+v", got[0])
	}
}

func TestDispatcher_RecorderFailureIsNonFatal(t *testing.T) {
	svc := newStubActivityService(errors.New("mongo down"))
	d := NewDispatcher(1, svc, Metrics{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	// Enqueue must not block, panic, or surface the storage error.
	d.Enqueue(ports.ActivityEntry{Action: "Created book", Detail: "Title: x"})
	d.Enqueue(ports.ActivityEntry{Action: "Deleted book", Detail: "ID: 1"})
	waitProcessed(t, svc, 2)

	if got := svc.entries(); len(got) != 0 {
		t.Fatalf("expected no persisted entries, got %d", len(got))
	}
}

func TestDispatcher_SameActionStaysOrdered(t *testing.T) {
	svc := newStubActivityService(nil)
	d := NewDispatcher(4, svc, Metrics{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	d.Enqueue(ports.ActivityEntry{Action: "Updated book", Detail: "ID: 1"})
	d.Enqueue(ports.ActivityEntry{Action: "Updated book", Detail: "ID: 2"})
	d.Enqueue(ports.ActivityEntry{Action: "Updated book", Detail: "ID: 3"})
	waitProcessed(t, svc, 3)

	got := svc.entries()
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	for i, want := range []string{"ID: 1", "ID: 2", "ID: 3"} {
		if got[i].Detail != want {
			t.Fatalf("entry %d out of order: got %q want %q", i, got[i].Detail, want)
		}
	}
}

func TestDispatcher_CountsRecordedAndDropped(t *testing.T) {
	svc := newStubActivityService(nil)
	m := Metrics{
		Recorded: prometheus.NewCounter(prometheus.CounterOpts{Name: "recorded"}),
		Dropped:  prometheus.NewCounter(prometheus.CounterOpts{Name: "dropped"}),
		Depth:    prometheus.NewGauge(prometheus.GaugeOpts{Name: "depth"}),
	}
	d := NewDispatcher(1, svc, m, zerolog.Nop())

	// Workers are not started, so the single shard fills up and every
	// entry past the buffer is dropped.
	for i := 0; i <= channelBuffer; i++ {
		d.Enqueue(ports.ActivityEntry{Action: "Created book", Detail: "Title: x"})
	}
	if got := testutil.ToFloat64(m.Dropped); got != 1 {
		t.Fatalf("expected 1 dropped entry, got %v", got)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)
	waitProcessed(t, svc, channelBuffer)

	if got := testutil.ToFloat64(m.Recorded); got != channelBuffer {
		t.Fatalf("expected %d recorded entries, got %v", channelBuffer, got)
	}
}
