// Package handler implements the HTTP endpoints under /api. Handlers
// bind and validate input, call repositories and services with a
// bounded context, and translate domain errors to status codes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/blood-uber/server/internal/repository"
)

const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context for repository calls.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// pathID parses a numeric path parameter. A non-numeric value behaves
// like an unknown id so GET /api/users/unknown-id yields 404.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func notFound(c echo.Context, what string) error {
	return c.JSON(http.StatusNotFound, echo.Map{"message": what + " not found"})
}

// storageErr logs the persistence fault and returns a generic 500, or
// a 404 when the error is a missing row.
func storageErr(c echo.Context, err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound(c, what)
	}
	zap.L().Error("storage failure",
		zap.String("route", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
}

func validationFailed(c echo.Context, errs map[string]string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation failed", "errors": errs})
}
