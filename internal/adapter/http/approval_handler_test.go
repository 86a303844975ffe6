package http

import (
	"bytes"
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "agritrace-backend/internal/domain/approval"
	"agritrace-backend/internal/domain/ledger"
	"agritrace-backend/internal/testutil/approvalmock"
	"agritrace-backend/internal/testutil/ledgermock"
	uc "agritrace-backend/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func newHandler(repo *approvalmock.Repo, lc *ledgermock.Client) *ApprovalHandler {
	if lc == nil {
		lc = &ledgermock.Client{}
	}
	return NewApprovalHandler(uc.NewUsecase(repo, lc))
}

func validSubmitBody() map[string]any {
	return map[string]any{
		"batch_id":           "B-100",
		"crop_name":          "Wheat",
		"distributor_id":     7,
		"distributor_name":   "AgroDist Ltd",
		"quantity_received":  120.5,
		"purchase_price":     18.75,
		"transport_details":  "Refrigerated truck",
		"warehouse_location": "Hubli depot 3",
		"handover_date":      1757200000,
		"farmer_email":       "farmer@example.com",
	}
}

func doSubmit(t *testing.T, h *ApprovalHandler, body any) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/api/approvals", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.Submit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

// -------- tests --------

func TestSubmit_OK(t *testing.T) {
	repo := &approvalmock.Repo{
		CreateFn: func(ctx context.Context, a *domain.Approval) error { return nil },
	}
	rec := doSubmit(t, newHandler(repo, nil), validSubmitBody())

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad JSON: %v", err)
	}
	if len(resp["approval_id"]) != 32 {
		t.Fatalf("approval_id = %q, want 32-char hex", resp["approval_id"])
	}
}

func TestSubmit_ValidationFailures(t *testing.T) {
	h := newHandler(&approvalmock.Repo{}, nil)

	cases := []struct {
		name  string
		field string
		value any
	}{
		{"missing batch id", "batch_id", ""},
		{"missing email", "farmer_email", ""},
		{"bad email", "farmer_email", "not-an-email"},
		{"negative quantity", "quantity_received", -3},
		{"negative price", "purchase_price", -0.5},
		{"sub-cent price", "purchase_price", 18.753},
		{"zero handover date", "handover_date", 0},
		{"zero distributor", "distributor_id", 0},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			body := validSubmitBody()
			body[tt.field] = tt.value
			rec := doSubmit(t, h, body)
			if rec.Code != stdhttp.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body=%s)", rec.Code, rec.Body.String())
			}
			var resp ErrorResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &resp)
			if len(resp.Details) == 0 {
				t.Fatalf("expected field error details, got %s", rec.Body.String())
			}
		})
	}
}

func TestSubmit_OpenNegotiationConflict(t *testing.T) {
	repo := &approvalmock.Repo{
		CreateFn: func(ctx context.Context, a *domain.Approval) error {
			return domain.ErrOpenNegotiation
		},
	}
	rec := doSubmit(t, newHandler(repo, nil), validSubmitBody())
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func doDecision(t *testing.T, h *ApprovalHandler, approvalID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/approvals/:approvalId/decision")
	c.SetParamNames("approvalId")
	c.SetParamValues(approvalID)
	if err := h.Decision(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestDecision_Approve(t *testing.T) {
	repo := &approvalmock.Repo{
		DecideFn: func(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error) {
			if d != domain.DecisionApprove {
				t.Fatalf("decision = %q", d)
			}
			return &domain.Approval{ApprovalID: approvalID, Status: domain.StatusApproved}, nil
		},
	}
	rec := doDecision(t, newHandler(repo, nil), "a1", map[string]string{"action": "approve"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"approved"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestDecision_UnknownActionNeverReachesStore(t *testing.T) {
	called := false
	repo := &approvalmock.Repo{
		DecideFn: func(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error) {
			called = true
			return nil, nil
		},
	}
	rec := doDecision(t, newHandler(repo, nil), "a1", map[string]string{"action": "escalate"})
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if called {
		t.Fatal("unlisted action reached the store")
	}
}

func TestDecision_AlreadyDecided(t *testing.T) {
	repo := &approvalmock.Repo{
		DecideFn: func(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error) {
			return nil, domain.ErrAlreadyDecided
		},
	}
	rec := doDecision(t, newHandler(repo, nil), "a1", map[string]string{"action": "reject"})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestDecision_NotFound(t *testing.T) {
	repo := &approvalmock.Repo{
		DecideFn: func(ctx context.Context, approvalID string, d domain.Decision, farmerTxHash *string) (*domain.Approval, error) {
			return nil, domain.ErrNotFound
		},
	}
	rec := doDecision(t, newHandler(repo, nil), "nope", map[string]string{"action": "approve"})
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func doLedgerConfirm(t *testing.T, h *ApprovalHandler, approvalID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/approvals/:approvalId/ledger-confirm")
	c.SetParamNames("approvalId")
	c.SetParamValues(approvalID)
	if err := h.LedgerConfirm(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func TestLedgerConfirm_IdempotentReplay(t *testing.T) {
	repo := &approvalmock.Repo{
		ConfirmLedgerFn: func(ctx context.Context, approvalID, txHash string) (string, error) {
			// Store already holds 0xabc; the retry hash is ignored.
			return "0xabc", nil
		},
	}
	rec := doLedgerConfirm(t, newHandler(repo, nil), "a1", map[string]string{"distributor_tx_hash": "0xdef"})
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "0xabc") {
		t.Fatalf("body = %s, want first-set hash", rec.Body.String())
	}
}

func TestLedgerConfirm_NotApproved(t *testing.T) {
	repo := &approvalmock.Repo{
		ConfirmLedgerFn: func(ctx context.Context, approvalID, txHash string) (string, error) {
			return "", domain.ErrNotConfirmable
		},
	}
	rec := doLedgerConfirm(t, newHandler(repo, nil), "a1", map[string]string{"distributor_tx_hash": "0xabc"})
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestCommit_LedgerErrorSurfacesVerbatim(t *testing.T) {
	repo := &approvalmock.Repo{
		GetByApprovalIDFn: func(ctx context.Context, approvalID string) (*domain.Approval, error) {
			return &domain.Approval{ApprovalID: approvalID, BatchID: "B-100", Status: domain.StatusApproved}, nil
		},
	}
	lc := &ledgermock.Client{
		RecordDistributorHandoverFn: func(ctx context.Context, batchID string, h ledger.DistributorHandover) (string, error) {
			return "", ledger.ErrSigningDeclined
		},
	}
	h := newHandler(repo, lc)

	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/approvals/:approvalId/commit")
	c.SetParamNames("approvalId")
	c.SetParamValues("a1")
	if err := h.Commit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "signing declined") {
		t.Fatalf("ledger error not surfaced: %s", rec.Body.String())
	}
}

func TestListAwaitingLedger_BadDistributorID(t *testing.T) {
	h := newHandler(&approvalmock.Repo{}, nil)
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/approvals/awaiting-ledger/:distributorId")
	c.SetParamNames("distributorId")
	c.SetParamValues("seven")
	if err := h.ListAwaitingLedger(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListPending_PassesThrough(t *testing.T) {
	repo := &approvalmock.Repo{
		ListPendingForFn: func(ctx context.Context, farmerEmail string) ([]domain.Approval, error) {
			if farmerEmail != "farmer@example.com" {
				t.Fatalf("email = %q", farmerEmail)
			}
			return []domain.Approval{{ApprovalID: strings.Repeat("a", 32), BatchID: "B-100", Status: domain.StatusPending}}, nil
		},
	}
	h := newHandler(repo, nil)
	e := newEchoWithValidator()
	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/api/approvals/pending/:farmerEmail")
	c.SetParamNames("farmerEmail")
	c.SetParamValues("farmer@example.com")
	if err := h.ListPending(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "B-100") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}
