package handler

import (
	"net/http"

	"stockscan/internal/domain/model"
	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type MovementHandler struct {
	inventory *usecase.InventoryUsecase
}

func NewMovementHandler(inventory *usecase.InventoryUsecase) *MovementHandler {
	return &MovementHandler{inventory: inventory}
}

func (h *MovementHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/movements", h.create)
}

type MovementRequest struct {
	Code      string          `json:"code"`
	Operation string          `json:"operation"` // IN / OUT
	Quantity  decimal.Decimal `json:"quantity"`
	Confirmed bool            `json:"confirmed"`
}

func (h *MovementHandler) create(c echo.Context) error {
	var req MovementRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	op, err := model.ParseOperation(req.Operation)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid operation"})
	}

	res, err := h.inventory.ProcessMovement(c.Request().Context(), usecase.MovementInput{
		Code:      req.Code,
		Operation: op,
		Quantity:  req.Quantity,
		Confirmed: req.Confirmed,
	})
	return writeResult(c, res, err)
}
