package ledger

import (
	"context"
	"errors"
)

// Ledger failures are surfaced to callers verbatim and never mutate the
// staging store; the record stays approved/unconfirmed and retryable.
var (
	// Wallet user refused to sign the transaction.
	ErrSigningDeclined = errors.New("ledger: signing declined")
	// Chain confirmation did not arrive within the gateway's deadline.
	ErrChainTimeout = errors.New("ledger: chain confirmation timeout")
	// The contract reverted the write (on-chain business rule violation).
	ErrReverted = errors.New("ledger: transaction reverted")
)

type CreateBatchInput struct {
	FarmerName string  `json:"farmer_name"`
	CropName   string  `json:"crop_name"`
	Quantity   float64 `json:"quantity"`
	PricePerKg float64 `json:"price_per_kg"`
	Location   string  `json:"location"`
	ExpiryDate int64   `json:"expiry_date"`
}

type DistributorHandover struct {
	CropName          string  `json:"crop_name"`
	DistributorName   string  `json:"distributor_name"`
	QuantityReceived  float64 `json:"quantity_received"`
	PurchasePrice     float64 `json:"purchase_price"`
	TransportDetails  string  `json:"transport_details"`
	WarehouseLocation string  `json:"warehouse_location"`
	HandoverDate      int64   `json:"handover_date"`
}

type RetailerHandover struct {
	CropName            string  `json:"crop_name"`
	DistributorName     string  `json:"distributor_name"`
	RetailerName        string  `json:"retailer_name"`
	ShopLocation        string  `json:"shop_location"`
	RetailQuantity      float64 `json:"retail_quantity"`
	RetailPurchasePrice float64 `json:"retail_purchase_price"`
	ConsumerPrice       float64 `json:"consumer_price"`
}

type BatchInfo struct {
	BatchID        string  `json:"batch_id"`
	FarmerName     string  `json:"farmer_name"`
	CropName       string  `json:"crop_name"`
	Quantity       float64 `json:"quantity"`
	ExpiryDate     int64   `json:"expiry_date"`
	HasDistributor bool    `json:"has_distributor"`
	HasRetailer    bool    `json:"has_retailer"`
}

// Client is the narrow capability set the core consumes from the chain
// gateway. Writes block until the gateway observes confirmation or fails;
// a hung write is cancelled through ctx, leaving the staging record in its
// well-defined approved/unconfirmed state.
type Client interface {
	CreateBatch(ctx context.Context, in CreateBatchInput) (batchID string, err error)
	RecordDistributorHandover(ctx context.Context, batchID string, h DistributorHandover) (txID string, err error)
	RecordRetailerHandover(ctx context.Context, batchID string, h RetailerHandover) (txID string, err error)
	QueryBatch(ctx context.Context, batchID string) (*BatchInfo, error)
}
