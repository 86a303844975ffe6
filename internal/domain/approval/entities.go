package approval

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("approval not found")
	// ErrOpenNegotiation: a pending record already exists for the same
	// (batch_id, distributor_id) pair.
	ErrOpenNegotiation = errors.New("open negotiation already exists for batch and distributor")
	ErrAlreadyDecided  = errors.New("approval already decided")
	ErrInvalidDecision = errors.New("unknown decision")
	// ErrNotConfirmable: ConfirmLedger on a record that is not approved.
	ErrNotConfirmable = errors.New("approval is not awaiting ledger confirmation")
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Decision is the closed set of farmer actions on a pending record.
// The HTTP layer parses the free-form action segment into this type;
// nothing else reaches the store.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status maps a decision to the terminal status it produces.
func (d Decision) Status() (Status, bool) {
	switch d {
	case DecisionApprove:
		return StatusApproved, true
	case DecisionReject:
		return StatusRejected, true
	}
	return "", false
}

// Table: farmer_approvals (schema carried over from the original service).
type Approval struct {
	// Internal numeric PK
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Public identifier (32-char lowercase hex)
	ApprovalID string `gorm:"column:approval_id;type:char(32);not null;uniqueIndex:ux_approvals_approval_id"`
	// Ledger-side batch reference, originated by the farmer's createBatch
	BatchID           string  `gorm:"column:batch_id;size:255;not null;uniqueIndex:ux_open_negotiation"`
	CropName          string  `gorm:"column:crop_name;size:255;not null"`
	DistributorID     int64   `gorm:"column:distributor_id;not null;index;uniqueIndex:ux_open_negotiation"`
	DistributorName   string  `gorm:"column:distributor_name;size:255;not null"`
	QuantityReceived  float64 `gorm:"column:quantity_received;not null"`
	PurchasePrice     float64 `gorm:"column:purchase_price;not null"`
	TransportDetails  string  `gorm:"column:transport_details;type:text;not null"`
	WarehouseLocation string  `gorm:"column:warehouse_location;size:255;not null"`
	// Epoch seconds; BIGINT so post-2038 dates survive.
	HandoverDate int64  `gorm:"column:handover_date;not null"`
	FarmerEmail  string `gorm:"column:farmer_email;size:255;not null;index"`
	Status       Status `gorm:"column:status;type:enum('pending','approved','rejected');default:'pending'"`
	// Set once the distributor's ledger write is confirmed; never overwritten.
	DistributorTxHash *string `gorm:"column:distributor_tx_hash;type:varchar(255)"`
	// Optional hash attached to the farmer's decision.
	FarmerTxHash *string `gorm:"column:farmer_tx_hash;type:varchar(255)"`
	// Open is 1 while status=pending and NULL afterwards. MySQL unique
	// indexes ignore NULL, so ux_open_negotiation allows a resubmission
	// after a rejection but never two open negotiations at once.
	Open      *uint8    `gorm:"column:open;uniqueIndex:ux_open_negotiation"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Approval) TableName() string { return "farmer_approvals" }

// AwaitingLedger reports the derived "approved but not yet on the ledger"
// condition that doubles as the distributor's retry queue.
func (a *Approval) AwaitingLedger() bool {
	return a.Status == StatusApproved && (a.DistributorTxHash == nil || *a.DistributorTxHash == "")
}
