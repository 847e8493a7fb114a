package handler

import (
	"net/http"

	"stockscan/internal/domain/model"
	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type LogHandler struct {
	inventory *usecase.InventoryUsecase
}

func NewLogHandler(inventory *usecase.InventoryUsecase) *LogHandler {
	return &LogHandler{inventory: inventory}
}

func (h *LogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/log", h.list)
}

type LogResponse struct {
	Entries []model.LogEntry `json:"entries"`
	Total   int              `json:"total"`
}

func (h *LogHandler) list(c echo.Context) error {
	entries, err := h.inventory.Log(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, LogResponse{Entries: entries, Total: len(entries)})
}
