package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	domain "agritrace-backend/internal/domain/approval"
)

// Poller gives each party an eventually-consistent view of the records
// awaiting their action: the other side's writes become visible within one
// poll interval. It is pull-based; no sub-interval propagation is promised.
type Poller struct {
	repo     domain.Repository
	interval time.Duration
}

func NewPoller(repo domain.Repository, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{repo: repo, interval: interval}
}

// WatchPending streams the farmer's pending-approval work list. A snapshot
// is delivered immediately and then whenever the result set changes. The
// channel is closed when ctx is cancelled.
func (p *Poller) WatchPending(ctx context.Context, farmerEmail string) <-chan []domain.Approval {
	return p.watch(ctx, func(ctx context.Context) ([]domain.Approval, error) {
		return p.repo.ListPendingFor(ctx, farmerEmail)
	})
}

// WatchAwaitingLedger streams the distributor's ledger-commit queue.
func (p *Poller) WatchAwaitingLedger(ctx context.Context, distributorID int64) <-chan []domain.Approval {
	return p.watch(ctx, func(ctx context.Context) ([]domain.Approval, error) {
		return p.repo.ListAwaitingLedger(ctx, distributorID)
	})
}

func (p *Poller) watch(ctx context.Context, query func(context.Context) ([]domain.Approval, error)) <-chan []domain.Approval {
	out := make(chan []domain.Approval, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		first := true
		last := ""
		deliver := func() {
			list, err := query(ctx)
			if err != nil {
				// Transient store errors keep the previous view; the next
				// tick retries.
				return
			}
			fp := fingerprint(list)
			if !first && fp == last {
				return
			}
			first = false
			last = fp
			select {
			case out <- list:
			case <-ctx.Done():
			}
		}

		deliver()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deliver()
			}
		}
	}()

	return out
}

// fingerprint collapses a result set to id/status/updated-at so unchanged
// polls don't wake the consumer.
func fingerprint(list []domain.Approval) string {
	var b strings.Builder
	for i := range list {
		a := &list[i]
		hash := ""
		if a.DistributorTxHash != nil {
			hash = *a.DistributorTxHash
		}
		fmt.Fprintf(&b, "%s|%s|%s|%d;", a.ApprovalID, a.Status, hash, a.UpdatedAt.UnixNano())
	}
	return b.String()
}
