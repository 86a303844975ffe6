package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "agritrace-backend/internal/domain/approval"
	"agritrace-backend/internal/testutil/approvalmock"
)

type listState struct {
	mu   sync.Mutex
	list []domain.Approval
}

func (s *listState) set(list []domain.Approval) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
}

func (s *listState) get() []domain.Approval {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

func recordAt(id string, status domain.Status, ts time.Time) domain.Approval {
	return domain.Approval{ApprovalID: id, Status: status, UpdatedAt: ts}
}

func recvWithin(t *testing.T, ch <-chan []domain.Approval, d time.Duration) []domain.Approval {
	t.Helper()
	select {
	case got, ok := <-ch:
		if !ok {
			t.Fatal("channel closed early")
		}
		return got
	case <-time.After(d):
		t.Fatal("no snapshot within deadline")
	}
	return nil
}

func TestWatchPending_DeliversInitialAndChangedSnapshots(t *testing.T) {
	now := time.Now().UTC()
	state := &listState{}
	state.set([]domain.Approval{recordAt("aaa", domain.StatusPending, now)})

	repo := &approvalmock.Repo{
		ListPendingForFn: func(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
			return state.get(), nil
		},
	}
	p := NewPoller(repo, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.WatchPending(ctx, "farmer@example.com")

	first := recvWithin(t, ch, time.Second)
	if len(first) != 1 || first[0].ApprovalID != "aaa" {
		t.Fatalf("first snapshot = %+v", first)
	}

	// Same result set: no wakeup. Then a new record appears.
	state.set([]domain.Approval{
		recordAt("aaa", domain.StatusPending, now),
		recordAt("bbb", domain.StatusPending, now.Add(time.Second)),
	})
	second := recvWithin(t, ch, time.Second)
	if len(second) != 2 {
		t.Fatalf("second snapshot = %+v", second)
	}
}

func TestWatchPending_UnchangedSetStaysQuiet(t *testing.T) {
	now := time.Now().UTC()
	repo := &approvalmock.Repo{
		ListPendingForFn: func(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
			return []domain.Approval{recordAt("aaa", domain.StatusPending, now)}, nil
		},
	}
	p := NewPoller(repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.WatchPending(ctx, "farmer@example.com")

	recvWithin(t, ch, time.Second)
	select {
	case got := <-ch:
		t.Fatalf("unexpected snapshot for unchanged set: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchAwaitingLedger_DrainsOnConfirm(t *testing.T) {
	now := time.Now().UTC()
	state := &listState{}
	state.set([]domain.Approval{recordAt("aaa", domain.StatusApproved, now)})

	repo := &approvalmock.Repo{
		ListAwaitingLedgerFn: func(ctx context.Context, distributorID int64) ([]domain.Approval, error) {
			if distributorID != 7 {
				t.Fatalf("distributor id = %d", distributorID)
			}
			return state.get(), nil
		},
	}
	p := NewPoller(repo, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := p.WatchAwaitingLedger(ctx, 7)

	first := recvWithin(t, ch, time.Second)
	if len(first) != 1 {
		t.Fatalf("first snapshot = %+v", first)
	}

	// Commit reconciled elsewhere: the queue empties within one interval.
	state.set(nil)
	second := recvWithin(t, ch, time.Second)
	if len(second) != 0 {
		t.Fatalf("queue should drain, got %+v", second)
	}
}

func TestWatch_CancelClosesChannel(t *testing.T) {
	repo := &approvalmock.Repo{
		ListPendingForFn: func(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
			return nil, nil
		},
	}
	p := NewPoller(repo, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	ch := p.WatchPending(ctx, "farmer@example.com")
	recvWithin(t, ch, time.Second) // initial empty snapshot

	cancel()
	select {
	case _, ok := <-ch:
		if ok {
			// Drain a possibly buffered snapshot, then expect close.
			if _, ok := <-ch; ok {
				t.Fatal("channel still open after cancel")
			}
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
