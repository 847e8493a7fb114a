package handler

import (
	"fmt"
	"net/http"

	"stockscan/internal/domain/model"
	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// /stock: table views and record creation
type StockHandler struct {
	inventory *usecase.InventoryUsecase
	reports   *usecase.ReportUsecase
}

// DI
func NewStockHandler(inventory *usecase.InventoryUsecase, reports *usecase.ReportUsecase) *StockHandler {
	return &StockHandler{inventory: inventory, reports: reports}
}

func (h *StockHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/stock", h.list)
	e.GET("/stock/filters", h.filters)
	e.GET("/stock/summary", h.summary)
	e.GET("/stock/export", h.export)
	e.GET("/stock/:code", h.lookup)
	e.POST("/stock", h.create)
}

type StockListResponse struct {
	Items []model.StockRecord `json:"items"`
	Total int                 `json:"total"`
}

type CreateStockRequest struct {
	Code        string          `json:"code"`
	StockCode   string          `json:"stock_code"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	Location    string          `json:"location"`
	Confirmed   bool            `json:"confirmed"`
}

func (h *StockHandler) list(c echo.Context) error {
	items, err := h.reports.List(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, StockListResponse{Items: items, Total: len(items)})
}

func (h *StockHandler) filters(c echo.Context) error {
	out, err := h.reports.FilterOptions(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) summary(c echo.Context) error {
	out, err := h.reports.Summary(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *StockHandler) export(c echo.Context) error {
	file, err := h.reports.Export(c.Request().Context(), filterFromQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	return c.Blob(http.StatusOK, xlsxContentType, file.Data)
}

func (h *StockHandler) lookup(c echo.Context) error {
	matches, err := h.inventory.Lookup(c.Request().Context(), c.Param("code"))
	if err != nil {
		return writeError(c, err)
	}
	if len(matches) == 0 {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "barcode not found"})
	}
	return c.JSON(http.StatusOK, StockListResponse{Items: matches, Total: len(matches)})
}

func (h *StockHandler) create(c echo.Context) error {
	var req CreateStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	res, err := h.inventory.CreateRecord(c.Request().Context(), usecase.CreateInput{
		Code:        req.Code,
		StockCode:   req.StockCode,
		Description: req.Description,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		Location:    req.Location,
		Confirmed:   req.Confirmed,
	})
	return writeResult(c, res, err)
}
