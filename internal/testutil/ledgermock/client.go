package ledgermock

import (
	"context"
	"errors"

	"agritrace-backend/internal/domain/ledger"
)

var _ ledger.Client = (*Client)(nil)

var errUnimplemented = errors.New("ledgermock: method not implemented")

// Client is a function-backed mock that satisfies ledger.Client.
type Client struct {
	CreateBatchFn               func(ctx context.Context, in ledger.CreateBatchInput) (string, error)
	RecordDistributorHandoverFn func(ctx context.Context, batchID string, h ledger.DistributorHandover) (string, error)
	RecordRetailerHandoverFn    func(ctx context.Context, batchID string, h ledger.RetailerHandover) (string, error)
	QueryBatchFn                func(ctx context.Context, batchID string) (*ledger.BatchInfo, error)
}

func (m *Client) CreateBatch(ctx context.Context, in ledger.CreateBatchInput) (string, error) {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, in)
	}
	return "", errUnimplemented
}

func (m *Client) RecordDistributorHandover(ctx context.Context, batchID string, h ledger.DistributorHandover) (string, error) {
	if m.RecordDistributorHandoverFn != nil {
		return m.RecordDistributorHandoverFn(ctx, batchID, h)
	}
	return "", errUnimplemented
}

func (m *Client) RecordRetailerHandover(ctx context.Context, batchID string, h ledger.RetailerHandover) (string, error) {
	if m.RecordRetailerHandoverFn != nil {
		return m.RecordRetailerHandoverFn(ctx, batchID, h)
	}
	return "", errUnimplemented
}

func (m *Client) QueryBatch(ctx context.Context, batchID string) (*ledger.BatchInfo, error) {
	if m.QueryBatchFn != nil {
		return m.QueryBatchFn(ctx, batchID)
	}
	return nil, errUnimplemented
}
