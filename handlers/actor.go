package handlers

import (
	"errors"
	"net/http"

	"caseflow/services"
	"caseflow/services/events"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// requestActor builds the acting user from request headers. An empty actor
// is fine; events then carry no attribution.
func requestActor(c echo.Context) events.Actor {
	return events.Actor{
		ID:   c.Request().Header.Get("X-Actor-ID"),
		Name: c.Request().Header.Get("X-Actor-Name"),
		Role: c.Request().Header.Get("X-Actor-Role"),
	}
}

// httpError maps service errors onto HTTP status codes
func httpError(err error) error {
	if services.IsValidationError(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}
