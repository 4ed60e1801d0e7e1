package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/latoulicious/vtmsu/internal/jobs"
	"github.com/latoulicious/vtmsu/pkg/database"
	"github.com/latoulicious/vtmsu/pkg/database/models"
	"github.com/latoulicious/vtmsu/pkg/database/repository"
	"github.com/latoulicious/vtmsu/pkg/hunting"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errorStatus = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{database.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "record not found"},
	{jobs.ErrUnknownJob, http.StatusNotFound, "UNKNOWN_JOB", "unknown job"},
	{database.ErrUniqueViolation, http.StatusConflict, "ALREADY_EXISTS", "record already exists"},
	{hunting.ErrInstanceExpired, http.StatusConflict, "INSTANCE_EXPIRED", "hunting instance has expired"},
	{repository.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK", "not enough stock"},
	{database.ErrForeignKeyViolation, http.StatusUnprocessableEntity, "INVALID_REFERENCE", "referenced record does not exist"},
	{database.ErrCheckViolation, http.StatusUnprocessableEntity, "CHECK_VIOLATION", "value is not allowed"},
	{database.ErrNotNullViolation, http.StatusUnprocessableEntity, "MISSING_VALUE", "required value is missing"},
	{database.ErrValueTooLong, http.StatusUnprocessableEntity, "VALUE_TOO_LONG", "value is too long"},
	{models.ErrInvalidHuntStatus, http.StatusUnprocessableEntity, "INVALID_HUNT_STATUS", "invalid hunt status"},
}

// apiError maps a domain or storage error onto an HTTP error. The body only
// carries the fixed message of the matched error; the driver error stays
// internal.
func apiError(err error) *echo.HTTPError {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return echo.NewHTTPError(e.status, ErrorResponse{Error: e.message, Code: e.code}).SetInternal(err)
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, ErrorResponse{
		Error: "internal server error",
		Code:  "INTERNAL_ERROR",
	}).SetInternal(err)
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, ErrorResponse{Error: msg, Code: "BAD_REQUEST"})
}
