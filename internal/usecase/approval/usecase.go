package approval

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	domain "agritrace-backend/internal/domain/approval"
	"agritrace-backend/internal/domain/ledger"
	"agritrace-backend/pkg/id"

	"golang.org/x/sync/singleflight"
)

var ErrInvalidInput = errors.New("invalid input")

type Usecase struct {
	repo   domain.Repository
	ledger ledger.Client
	// One ledger-write attempt in flight per approval id; duplicate
	// concurrent commit calls share the single result.
	flight singleflight.Group
}

func NewUsecase(repo domain.Repository, lc ledger.Client) *Usecase {
	return &Usecase{repo: repo, ledger: lc}
}

func validateSubmit(in SubmitInput) error {
	switch {
	case strings.TrimSpace(in.BatchID) == "",
		strings.TrimSpace(in.CropName) == "",
		strings.TrimSpace(in.DistributorName) == "",
		strings.TrimSpace(in.TransportDetails) == "",
		strings.TrimSpace(in.WarehouseLocation) == "":
		return ErrInvalidInput
	case in.DistributorID <= 0:
		return ErrInvalidInput
	case in.QuantityReceived < 0 || in.PurchasePrice < 0:
		return ErrInvalidInput
	case in.HandoverDate <= 0:
		return ErrInvalidInput
	}
	if _, err := mail.ParseAddress(in.FarmerEmail); err != nil {
		return ErrInvalidInput
	}
	return nil
}

// Submit opens a negotiation: the distributor proposes a handover and the
// record starts pending, with no tx hashes, awaiting the farmer's decision.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*ApprovalDTO, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	a := &domain.Approval{
		ApprovalID:        id.NewID32(),
		BatchID:           in.BatchID,
		CropName:          in.CropName,
		DistributorID:     in.DistributorID,
		DistributorName:   in.DistributorName,
		QuantityReceived:  in.QuantityReceived,
		PurchasePrice:     in.PurchasePrice,
		TransportDetails:  in.TransportDetails,
		WarehouseLocation: in.WarehouseLocation,
		HandoverDate:      in.HandoverDate,
		FarmerEmail:       in.FarmerEmail,
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// Decide applies the farmer's approve/reject. The guard lives in the
// store's conditional update; an out-of-guard attempt comes back as
// ErrAlreadyDecided and the record is untouched.
func (u *Usecase) Decide(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash string) (*ApprovalDTO, error) {
	if _, ok := d.Status(); !ok {
		return nil, ErrInvalidInput
	}
	var hash *string
	if farmerTxHash != "" {
		hash = &farmerTxHash
	}
	a, err := u.repo.Decide(ctx, approvalID, d, hash)
	if err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

// ConfirmLedger records a client-signed transaction hash. Idempotent:
// re-confirming returns the first-set hash.
func (u *Usecase) ConfirmLedger(ctx context.Context, approvalID, txHash string) (string, error) {
	if strings.TrimSpace(txHash) == "" {
		return "", ErrInvalidInput
	}
	return u.repo.ConfirmLedger(ctx, approvalID, txHash)
}

// CommitHandover is the server-relayed two-step commit: write the handover
// to the ledger through the gateway, then record the resulting tx hash.
// The ledger write happens first; if the follow-up bookkeeping fails the
// record stays approved/unconfirmed and the next run of the awaiting-ledger
// queue retries it with an idempotent confirm. Ledger errors pass through
// verbatim and mutate nothing.
func (u *Usecase) CommitHandover(ctx context.Context, approvalID string) (string, error) {
	v, err, _ := u.flight.Do(approvalID, func() (any, error) {
		rec, err := u.repo.GetByApprovalID(ctx, approvalID)
		if err != nil {
			return "", err
		}
		if rec.Status != domain.StatusApproved {
			return "", domain.ErrNotConfirmable
		}
		if !rec.AwaitingLedger() {
			// Ledger write already reconciled; nothing to redo.
			return *rec.DistributorTxHash, nil
		}

		txHash, err := u.ledger.RecordDistributorHandover(ctx, rec.BatchID, ledger.DistributorHandover{
			CropName:          rec.CropName,
			DistributorName:   rec.DistributorName,
			QuantityReceived:  rec.QuantityReceived,
			PurchasePrice:     rec.PurchasePrice,
			TransportDetails:  rec.TransportDetails,
			WarehouseLocation: rec.WarehouseLocation,
			HandoverDate:      rec.HandoverDate,
		})
		if err != nil {
			return "", err
		}
		return u.repo.ConfirmLedger(ctx, approvalID, txHash)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (u *Usecase) PendingFor(ctx context.Context, farmerEmail string) ([]ApprovalDTO, error) {
	list, err := u.repo.ListPendingFor(ctx, farmerEmail)
	if err != nil {
		return nil, err
	}
	return DTOs(list), nil
}

func (u *Usecase) AwaitingLedger(ctx context.Context, distributorID int64) ([]ApprovalDTO, error) {
	list, err := u.repo.ListAwaitingLedger(ctx, distributorID)
	if err != nil {
		return nil, err
	}
	return DTOs(list), nil
}

func (u *Usecase) ApprovedFor(ctx context.Context, farmerEmail string) ([]ApprovalDTO, error) {
	list, err := u.repo.ListApprovedFor(ctx, farmerEmail)
	if err != nil {
		return nil, err
	}
	return DTOs(list), nil
}
