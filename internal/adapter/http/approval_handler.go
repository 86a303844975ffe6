package http

import (
	"errors"
	"net/http"
	"strconv"

	domain "agritrace-backend/internal/domain/approval"
	"agritrace-backend/internal/domain/ledger"
	uc "agritrace-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *uc.Usecase }

func NewApprovalHandler(u *uc.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: u} }

type submitApprovalReq struct {
	BatchID           string  `json:"batch_id"            validate:"required"`
	CropName          string  `json:"crop_name"           validate:"required"`
	DistributorID     int64   `json:"distributor_id"      validate:"required,gt=0"`
	DistributorName   string  `json:"distributor_name"    validate:"required"`
	QuantityReceived  float64 `json:"quantity_received"   validate:"gte=0"`
	PurchasePrice     float64 `json:"purchase_price"      validate:"gte=0,dec2"`
	TransportDetails  string  `json:"transport_details"   validate:"required"`
	WarehouseLocation string  `json:"warehouse_location"  validate:"required"`
	HandoverDate      int64   `json:"handover_date"       validate:"required,gt=0"`
	FarmerEmail       string  `json:"farmer_email"        validate:"required,email"`
}

type decisionReq struct {
	Action       string `json:"action"         validate:"required,oneof=approve reject"`
	FarmerTxHash string `json:"farmer_tx_hash"`
}

type ledgerConfirmReq struct {
	DistributorTxHash string `json:"distributor_tx_hash" validate:"required"`
}

// Submit: distributor proposes a handover; record starts pending.
func (h *ApprovalHandler) Submit(c echo.Context) error {
	var req submitApprovalReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Submit(c.Request().Context(), uc.SubmitInput(req))
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"approval_id": dto.ApprovalID})
}

// Decision: farmer approves or rejects a pending record. The action string
// is parsed into the closed Decision enum; nothing unlisted reaches the
// state machine.
func (h *ApprovalHandler) Decision(c echo.Context) error {
	approvalID := c.Param("approvalId")
	if approvalID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing approvalId path param"})
	}
	var req decisionReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	var d domain.Decision
	switch req.Action {
	case "approve":
		d = domain.DecisionApprove
	case "reject":
		d = domain.DecisionReject
	default:
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid action"})
	}

	dto, err := h.uc.Decide(c.Request().Context(), approvalID, d, req.FarmerTxHash)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": dto.Status})
}

// LedgerConfirm: distributor reports a client-signed tx hash. Safe to
// retry; a duplicate confirm answers with the first-set hash.
func (h *ApprovalHandler) LedgerConfirm(c echo.Context) error {
	approvalID := c.Param("approvalId")
	if approvalID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing approvalId path param"})
	}
	var req ledgerConfirmReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	hash, err := h.uc.ConfirmLedger(c.Request().Context(), approvalID, req.DistributorTxHash)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"distributor_tx_hash": hash})
}

// Commit: server-relayed sign-and-confirm through the wallet gateway.
func (h *ApprovalHandler) Commit(c echo.Context) error {
	approvalID := c.Param("approvalId")
	if approvalID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing approvalId path param"})
	}
	hash, err := h.uc.CommitHandover(c.Request().Context(), approvalID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"tx_hash": hash})
}

func (h *ApprovalHandler) ListPending(c echo.Context) error {
	email := c.Param("farmerEmail")
	list, err := h.uc.PendingFor(c.Request().Context(), email)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"approvals": list})
}

func (h *ApprovalHandler) ListAwaitingLedger(c echo.Context) error {
	distributorID, err := strconv.ParseInt(c.Param("distributorId"), 10, 64)
	if err != nil || distributorID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid distributorId"})
	}
	list, err := h.uc.AwaitingLedger(c.Request().Context(), distributorID)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"approvals": list})
}

func (h *ApprovalHandler) ListApproved(c echo.Context) error {
	email := c.Param("farmerEmail")
	list, err := h.uc.ApprovedFor(c.Request().Context(), email)
	if err != nil {
		return writeDomainErr(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"approvals": list})
}

// writeDomainErr maps domain/usecase errors onto the HTTP taxonomy. Ledger
// errors keep their original message so callers see the chain-side cause,
// not a generic database error.
func writeDomainErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, uc.ErrInvalidInput), errors.Is(err, domain.ErrInvalidDecision):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrOpenNegotiation),
		errors.Is(err, domain.ErrAlreadyDecided),
		errors.Is(err, domain.ErrNotConfirmable):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrSigningDeclined),
		errors.Is(err, ledger.ErrChainTimeout),
		errors.Is(err, ledger.ErrReverted):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
