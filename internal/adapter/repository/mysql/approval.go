package mysql

import (
	"context"
	"errors"

	approvalDomain "agritrace-backend/internal/domain/approval"

	"gorm.io/gorm"
)

type ApprovalRepository struct{ db *gorm.DB }

func NewApprovalRepository(db *gorm.DB) *ApprovalRepository { return &ApprovalRepository{db: db} }

var _ approvalDomain.Repository = (*ApprovalRepository)(nil)

func (r *ApprovalRepository) Create(ctx context.Context, a *approvalDomain.Approval) error {
	a.Status = approvalDomain.StatusPending
	one := uint8(1)
	a.Open = &one
	err := r.db.WithContext(ctx).Create(a).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return approvalDomain.ErrOpenNegotiation
	}
	return err
}

func (r *ApprovalRepository) GetByApprovalID(ctx context.Context, approvalID string) (*approvalDomain.Approval, error) {
	var out approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("approval_id = ?", approvalID).
		First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, approvalDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *ApprovalRepository) ListPendingFor(ctx context.Context, farmerEmail string) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("farmer_email = ? AND status = ?", farmerEmail, approvalDomain.StatusPending).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) ListAwaitingLedger(ctx context.Context, distributorID int64) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("distributor_id = ? AND status = ? AND (distributor_tx_hash IS NULL OR distributor_tx_hash = '')",
			distributorID, approvalDomain.StatusApproved).
		Order("updated_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *ApprovalRepository) ListApprovedFor(ctx context.Context, farmerEmail string) ([]approvalDomain.Approval, error) {
	var out []approvalDomain.Approval
	res := r.db.WithContext(ctx).
		Where("farmer_email = ? AND status = ?", farmerEmail, approvalDomain.StatusApproved).
		Order("created_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

// Decide runs the pending->approved|rejected transition as one guarded
// UPDATE. The status check and the mutation are the same statement, so a
// concurrent second decision affects zero rows instead of double-applying.
func (r *ApprovalRepository) Decide(ctx context.Context, approvalID string, d approvalDomain.Decision, farmerTxHash *string) (*approvalDomain.Approval, error) {
	next, ok := d.Status()
	if !ok {
		return nil, approvalDomain.ErrInvalidDecision
	}

	res := r.db.WithContext(ctx).
		Model(&approvalDomain.Approval{}).
		Where("approval_id = ? AND status = ?", approvalID, approvalDomain.StatusPending).
		Updates(map[string]any{
			"status":         next,
			"farmer_tx_hash": farmerTxHash,
			"open":           nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Either the id is unknown or the record left pending already.
		if _, err := r.GetByApprovalID(ctx, approvalID); err != nil {
			return nil, err
		}
		return nil, approvalDomain.ErrAlreadyDecided
	}
	return r.GetByApprovalID(ctx, approvalID)
}

// ConfirmLedger sets the distributor tx hash exactly once. A retry after a
// timeout whose underlying write actually landed gets the stored hash back
// instead of an error, and never overwrites it.
func (r *ApprovalRepository) ConfirmLedger(ctx context.Context, approvalID, txHash string) (string, error) {
	res := r.db.WithContext(ctx).
		Model(&approvalDomain.Approval{}).
		Where("approval_id = ? AND status = ? AND (distributor_tx_hash IS NULL OR distributor_tx_hash = '')",
			approvalID, approvalDomain.StatusApproved).
		Update("distributor_tx_hash", txHash)
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected == 1 {
		return txHash, nil
	}

	cur, err := r.GetByApprovalID(ctx, approvalID)
	if err != nil {
		return "", err
	}
	if cur.Status == approvalDomain.StatusApproved && cur.DistributorTxHash != nil && *cur.DistributorTxHash != "" {
		return *cur.DistributorTxHash, nil
	}
	return "", approvalDomain.ErrNotConfirmable
}
