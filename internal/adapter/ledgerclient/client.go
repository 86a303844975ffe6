package ledgerclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"agritrace-backend/internal/domain/ledger"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// GatewayClient talks to the wallet gateway: the signing relay that holds
// the wallet session, submits contract calls, and blocks until the chain
// confirms them. The gateway owns signing UX and chain mechanics; this
// adapter only maps its responses onto the ledger error taxonomy.
type GatewayClient struct {
	rc *resty.Client
}

func New(baseURL string, timeout time.Duration) *GatewayClient {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &GatewayClient{rc: rc}
}

var _ ledger.Client = (*GatewayClient)(nil)

type txResponse struct {
	TxHash string `json:"tx_hash"`
}

type batchResponse struct {
	BatchID string `json:"batch_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (g *GatewayClient) CreateBatch(ctx context.Context, in ledger.CreateBatchInput) (string, error) {
	var out batchResponse
	resp, err := g.newRequest(ctx).
		SetBody(in).
		SetResult(&out).
		Post("/contract/batches")
	if err := g.checkResponse(resp, err); err != nil {
		return "", err
	}
	return out.BatchID, nil
}

func (g *GatewayClient) RecordDistributorHandover(ctx context.Context, batchID string, h ledger.DistributorHandover) (string, error) {
	var out txResponse
	resp, err := g.newRequest(ctx).
		SetPathParam("batchId", batchID).
		SetBody(h).
		SetResult(&out).
		Post("/contract/batches/{batchId}/distributor-handover")
	if err := g.checkResponse(resp, err); err != nil {
		return "", err
	}
	return out.TxHash, nil
}

func (g *GatewayClient) RecordRetailerHandover(ctx context.Context, batchID string, h ledger.RetailerHandover) (string, error) {
	var out txResponse
	resp, err := g.newRequest(ctx).
		SetPathParam("batchId", batchID).
		SetBody(h).
		SetResult(&out).
		Post("/contract/batches/{batchId}/retailer-handover")
	if err := g.checkResponse(resp, err); err != nil {
		return "", err
	}
	return out.TxHash, nil
}

func (g *GatewayClient) QueryBatch(ctx context.Context, batchID string) (*ledger.BatchInfo, error) {
	var out ledger.BatchInfo
	resp, err := g.newRequest(ctx).
		SetPathParam("batchId", batchID).
		SetResult(&out).
		Get("/contract/batches/{batchId}")
	if err := g.checkResponse(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *GatewayClient) newRequest(ctx context.Context) *resty.Request {
	return g.rc.R().
		SetContext(ctx).
		SetHeader("X-Request-Id", uuid.NewString()).
		SetError(&errorResponse{})
}

// checkResponse maps gateway statuses onto the ledger taxonomy. Anything
// not in the taxonomy is wrapped with the gateway's own message so callers
// see the chain-side detail verbatim.
func (g *GatewayClient) checkResponse(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %v", ledger.ErrChainTimeout, err)
	}
	if resp.IsSuccess() {
		return nil
	}
	detail := ""
	if e, ok := resp.Error().(*errorResponse); ok && e.Error != "" {
		detail = e.Error
	}
	switch resp.StatusCode() {
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ledger.ErrSigningDeclined, detail)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s", ledger.ErrChainTimeout, detail)
	case http.StatusUnprocessableEntity, http.StatusConflict:
		return fmt.Errorf("%w: %s", ledger.ErrReverted, detail)
	}
	return fmt.Errorf("ledger gateway: status %d: %s", resp.StatusCode(), detail)
}
