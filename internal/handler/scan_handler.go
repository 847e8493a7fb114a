package handler

import (
	"io"
	"net/http"

	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
)

// frames larger than this are rejected
const maxFrameBytes = 1 << 20

type ScanHandler struct {
	inventory *usecase.InventoryUsecase
	scans     *usecase.ScanUsecase
}

func NewScanHandler(inventory *usecase.InventoryUsecase, scans *usecase.ScanUsecase) *ScanHandler {
	return &ScanHandler{inventory: inventory, scans: scans}
}

func (h *ScanHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/scans", h.scan)
	e.POST("/scans/frame", h.frame)
	e.GET("/scans/pending", h.pending)
	e.DELETE("/scans/pending", h.cancel)
}

type ScanRequest struct {
	Code string `json:"code"`
}

type PendingResponse struct {
	Pending bool   `json:"pending"`
	Code    string `json:"code,omitempty"`
}

type FrameResponse struct {
	Results []usecase.Result `json:"results"`
}

func (h *ScanHandler) scan(c echo.Context) error {
	var req ScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.inventory.Scan(c.Request().Context(), req.Code)
	return writeResult(c, res, err)
}

func (h *ScanHandler) frame(c echo.Context) error {
	body := http.MaxBytesReader(c.Response(), c.Request().Body, maxFrameBytes)
	frame, err := io.ReadAll(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid frame"})
	}

	results, err := h.scans.ScanFrame(c.Request().Context(), frame)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, FrameResponse{Results: results})
}

func (h *ScanHandler) pending(c echo.Context) error {
	code, held := h.inventory.Pending()
	return c.JSON(http.StatusOK, PendingResponse{Pending: held, Code: code})
}

func (h *ScanHandler) cancel(c echo.Context) error {
	h.inventory.Cancel(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
