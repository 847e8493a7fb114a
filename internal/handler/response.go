package handler

import (
	"errors"
	"net/http"

	"stockscan/internal/domain/model"
	repo "stockscan/internal/repository"
	"stockscan/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, usecase.ErrInvalidQuantity),
		errors.Is(err, usecase.ErrInvalidOperation),
		errors.Is(err, usecase.ErrInvalidFrame):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case errors.Is(err, repo.ErrPersistFailure):
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "update was not saved"})
	case errors.Is(err, repo.ErrStorageUnavailable):
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "storage unavailable"})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

var outcomeStatus = map[usecase.Outcome]int{
	usecase.OutcomeCommitted: http.StatusOK,
	usecase.OutcomeCancelled: http.StatusOK,
	usecase.OutcomeFound:     http.StatusOK,
	usecase.OutcomeIgnored:   http.StatusOK,
	usecase.OutcomeDebounced: http.StatusOK,
	usecase.OutcomeNotFound:  http.StatusNotFound,
	usecase.OutcomeConflict:  http.StatusConflict,
	usecase.OutcomeBusy:      http.StatusLocked,
}

func writeResult(c echo.Context, res usecase.Result, err error) error {
	if err != nil {
		return writeError(c, err)
	}
	status, ok := outcomeStatus[res.Outcome]
	if !ok {
		status = http.StatusOK
	}
	return c.JSON(status, res)
}

func filterFromQuery(c echo.Context) model.Filter {
	return model.Filter{
		Location: c.QueryParam("location"),
		Unit:     c.QueryParam("unit"),
	}
}
