package approval

import "context"

// Repository is the staging-store contract for in-flight handovers.
// Decide and ConfirmLedger are conditional single-statement updates: the
// status guard is part of the same atomic operation as the mutation, so
// two racing callers can never double-apply a transition.
type Repository interface {
	// Create a new pending record (DB uniqueness ensures at most one open
	// negotiation per batch/distributor pair; violation => ErrOpenNegotiation).
	Create(ctx context.Context, a *Approval) error

	// Get by public approval_id
	GetByApprovalID(ctx context.Context, approvalID string) (*Approval, error)

	// Pending records addressed to a farmer, newest first.
	ListPendingFor(ctx context.Context, farmerEmail string) ([]Approval, error)

	// Approved records for a distributor with no tx hash yet: the
	// ledger-commit work/recovery queue.
	ListAwaitingLedger(ctx context.Context, distributorID int64) ([]Approval, error)

	// Approved records for a farmer (audit view), newest first.
	ListApprovedFor(ctx context.Context, farmerEmail string) ([]Approval, error)

	// Decide transitions pending -> approved|rejected. Fails with
	// ErrAlreadyDecided when the record is no longer pending, ErrNotFound
	// when the id is unknown. Returns the record as updated.
	Decide(ctx context.Context, approvalID string, d Decision, farmerTxHash *string) (*Approval, error)

	// ConfirmLedger sets distributor_tx_hash on an approved record and
	// returns the stored hash. Re-confirming an already-confirmed record
	// returns the first-set hash without error or overwrite. Pending or
	// rejected records fail with ErrNotConfirmable.
	ConfirmLedger(ctx context.Context, approvalID, txHash string) (string, error)
}
