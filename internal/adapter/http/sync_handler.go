package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	domain "agritrace-backend/internal/domain/approval"
	uc "agritrace-backend/internal/usecase/approval"
	syncuc "agritrace-backend/internal/usecase/sync"

	"github.com/labstack/echo/v4"
)

// SyncHandler exposes the poller's watch channels as server-sent events, so
// dashboards receive pushed snapshots instead of running their own refresh
// timers against the list endpoints.
type SyncHandler struct{ poller *syncuc.Poller }

func NewSyncHandler(p *syncuc.Poller) *SyncHandler { return &SyncHandler{poller: p} }

// StreamPending pushes the farmer's pending-approval work list.
func (h *SyncHandler) StreamPending(c echo.Context) error {
	ch := h.poller.WatchPending(c.Request().Context(), c.Param("farmerEmail"))
	return streamSnapshots(c, ch)
}

// StreamAwaitingLedger pushes the distributor's ledger-commit queue.
func (h *SyncHandler) StreamAwaitingLedger(c echo.Context) error {
	distributorID, err := strconv.ParseInt(c.Param("distributorId"), 10, 64)
	if err != nil || distributorID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid distributorId"})
	}
	ch := h.poller.WatchAwaitingLedger(c.Request().Context(), distributorID)
	return streamSnapshots(c, ch)
}

func streamSnapshots(c echo.Context, ch <-chan []domain.Approval) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)

	// The channel closes when the request context is cancelled.
	for snap := range ch {
		payload, err := json.Marshal(uc.DTOs(snap))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", payload); err != nil {
			return err
		}
		res.Flush()
	}
	return nil
}
