package handler

import (
	"errors"
	"io"
	"net/http"

	repo "stockscan/internal/repository"
	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
)

// SnapshotOpener loads an uploaded workbook as a read-only source.
type SnapshotOpener func(r io.Reader, name string) (repo.Source, error)

// /source: which container the engine is working against
type SourceHandler struct {
	inventory *usecase.InventoryUsecase
	canonical repo.Source
	open      SnapshotOpener
}

func NewSourceHandler(inventory *usecase.InventoryUsecase, canonical repo.Source, open SnapshotOpener) *SourceHandler {
	return &SourceHandler{inventory: inventory, canonical: canonical, open: open}
}

func (h *SourceHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.GET("/source", h.current)
	e.POST("/source", h.upload)
	e.DELETE("/source", h.reset)
}

type SourceResponse struct {
	Name     string `json:"name"`
	ReadOnly bool   `json:"read_only"`
	Pending  string `json:"pending,omitempty"`
}

func (h *SourceHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SourceHandler) describe() SourceResponse {
	src := h.inventory.Source()
	code, _ := h.inventory.Pending()
	return SourceResponse{Name: src.Name(), ReadOnly: src.ReadOnly(), Pending: code}
}

func (h *SourceHandler) current(c echo.Context) error {
	return c.JSON(http.StatusOK, h.describe())
}

func (h *SourceHandler) upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file could not be read"})
	}
	defer f.Close()

	src, err := h.open(f, fh.Filename)
	if errors.Is(err, repo.ErrStorageUnavailable) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "file could not be read"})
	}
	if err != nil {
		return writeError(c, err)
	}

	h.inventory.UseSource(src)
	return c.JSON(http.StatusOK, h.describe())
}

func (h *SourceHandler) reset(c echo.Context) error {
	h.inventory.UseSource(h.canonical)
	return c.JSON(http.StatusOK, h.describe())
}
