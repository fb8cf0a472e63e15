package handler // handler defines http handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/service"
)

const requestTimeout = 5 * time.Second

// requestCtx bounds the database work of one request.
func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

// pathID parses a positive numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// respondError writes err as {"error": msg}.  Business rejections keep
// their message; unexpected errors are reported generically and left to
// the request logger.
func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrPermission), errors.Is(err, repository.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrDuplicate):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	msg := http.StatusText(status)
	var se *service.Error
	switch {
	case errors.As(err, &se):
		msg = se.Error()
	case status != http.StatusInternalServerError:
		msg = err.Error()
	default:
		// keep the cause for the request logger
		c.Set("error", err)
		msg = "internal error"
	}
	return c.JSON(status, echo.Map{"error": msg})
}

func currentUser(c echo.Context) uint64 { return middleware.UserID(c) }
