package approvalmock

import (
	"context"
	"errors"

	domain "agritrace-backend/internal/domain/approval"
)

// Ensure compile-time compliance
var _ domain.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("approvalmock: method not implemented")

// Repo is a function-backed mock that satisfies domain.Repository.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented.
type Repo struct {
	CreateFn             func(ctx context.Context, a *domain.Approval) error
	GetByApprovalIDFn    func(ctx context.Context, approvalID string) (*domain.Approval, error)
	ListPendingForFn     func(ctx context.Context, farmerEmail string) ([]domain.Approval, error)
	ListAwaitingLedgerFn func(ctx context.Context, distributorID int64) ([]domain.Approval, error)
	ListApprovedForFn    func(ctx context.Context, farmerEmail string) ([]domain.Approval, error)
	DecideFn             func(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error)
	ConfirmLedgerFn      func(ctx context.Context, approvalID, txHash string) (string, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Approval) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return errUnimplemented
}

func (m *Repo) GetByApprovalID(ctx context.Context, approvalID string) (*domain.Approval, error) {
	if m.GetByApprovalIDFn != nil {
		return m.GetByApprovalIDFn(ctx, approvalID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListPendingFor(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
	if m.ListPendingForFn != nil {
		return m.ListPendingForFn(ctx, farmerEmail)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListAwaitingLedger(ctx context.Context, distributorID int64) ([]domain.Approval, error) {
	if m.ListAwaitingLedgerFn != nil {
		return m.ListAwaitingLedgerFn(ctx, distributorID)
	}
	return nil, errUnimplemented
}

func (m *Repo) ListApprovedFor(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
	if m.ListApprovedForFn != nil {
		return m.ListApprovedForFn(ctx, farmerEmail)
	}
	return nil, errUnimplemented
}

func (m *Repo) Decide(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error) {
	if m.DecideFn != nil {
		return m.DecideFn(ctx, approvalID, d, farmerTxHash)
	}
	return nil, errUnimplemented
}

func (m *Repo) ConfirmLedger(ctx context.Context, approvalID, txHash string) (string, error) {
	if m.ConfirmLedgerFn != nil {
		return m.ConfirmLedgerFn(ctx, approvalID, txHash)
	}
	return "", errUnimplemented
}
