package reports

import (
	"errors"
	"fmt"
)

var (
	// ErrReportUnavailable indicates a required fetch failed during assembly.
	ErrReportUnavailable = errors.New("reports: report unavailable")
	// ErrForbidden indicates the role may not request the report type.
	ErrForbidden = errors.New("reports: forbidden")
	// ErrInvalidRequest indicates a malformed report type, range or granularity.
	ErrInvalidRequest = errors.New("reports: invalid request")
)

// UnavailableError names the report that could not be assembled.
type UnavailableError struct {
	Report Type
	Err    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("reports: %s unavailable: %v", e.Report, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// Is matches ErrReportUnavailable.
func (e *UnavailableError) Is(target error) bool { return target == ErrReportUnavailable }
