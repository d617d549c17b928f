// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

// RetryAfter is advertised on 503 responses for unavailable reports.
const RetryAfter = 30 * time.Second

// Status maps a domain error to its HTTP status code.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, records.ErrInvalidTenant), errors.Is(err, reports.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, reports.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, records.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, reports.ErrReportUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807. Server
// errors do not leak their detail.
func RespondError(w http.ResponseWriter, err error) {
	status := Status(err)
	switch status {
	case http.StatusBadRequest:
		Problem(w, status, "Invalid Request", err.Error())
	case http.StatusForbidden:
		Problem(w, status, "Forbidden", err.Error())
	case http.StatusNotFound:
		Problem(w, status, "Not Found", err.Error())
	case http.StatusServiceUnavailable:
		w.Header().Set("Retry-After", strconv.Itoa(int(RetryAfter.Seconds())))
		Problem(w, status, "Report Unavailable", "the report could not be assembled, retry later")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
