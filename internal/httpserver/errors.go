package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/validation"
)

// fail maps a service error onto an HTTP error and logs it as "<op>_error".
// Unexpected errors never leak their text to the client.
func fail(l *slog.Logger, op string, err error) error {
	var (
		fields validation.FieldErrors
		stock  *service.StockError
	)
	event := op + "_error"

	switch {
	case errors.As(err, &fields):
		l.Warn(event, "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: "validation failed", Fields: fields})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: err.Error()})
	case errors.As(err, &stock):
		l.Warn(event, "status", http.StatusConflict, "product_id", stock.ProductID, "error", err)
		return echo.NewHTTPError(http.StatusConflict, transport.ErrorResponse{Error: "insufficient stock", Product: stock.ProductName})
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", http.StatusNotFound, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, transport.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInvalidTransition):
		l.Warn(event, "status", http.StatusConflict, "error", err)
		return echo.NewHTTPError(http.StatusConflict, transport.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrPaymentDeclined):
		l.Warn(event, "status", http.StatusPaymentRequired, "error", err)
		return echo.NewHTTPError(http.StatusPaymentRequired, transport.ErrorResponse{Error: "payment declined"})
	default:
		l.Error(event, "status", http.StatusInternalServerError, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, transport.ErrorResponse{Error: "internal error"})
	}
}

func badRequest(l *slog.Logger, op, reason string, err error) error {
	l.Warn(op+"_error", "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorResponse{Error: reason})
}

func unauthorized(l *slog.Logger, op string) error {
	l.Warn(op+"_error", "status", http.StatusUnauthorized)
	return echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorResponse{Error: "unauthorized"})
}
