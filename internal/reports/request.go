package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/estatedesk/estatedesk/internal/aggregate"
	"github.com/estatedesk/estatedesk/internal/records"
)

// Request asks for one report. A zero Range means no range was given; a
// zero Granularity means it is chosen from the trend window.
type Request struct {
	Scope       records.Scope
	Role        Role
	Type        Type
	Range       records.Range
	Granularity aggregate.Granularity
}

// Validate checks the request shape. Role gating happens separately.
func (r Request) Validate() error {
	if err := r.Scope.Validate(); err != nil {
		return err
	}
	if _, err := ParseType(string(r.Type)); err != nil {
		return err
	}
	if _, err := ParseRole(string(r.Role)); err != nil {
		return err
	}
	if r.Range.From.IsZero() != r.Range.To.IsZero() {
		return fmt.Errorf("%w: range needs both from and to", ErrInvalidRequest)
	}
	if err := r.Range.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if r.Granularity != "" {
		if _, err := aggregate.ParseGranularity(string(r.Granularity)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}
	return nil
}

// Window labels.
const (
	LabelAllTime   = "all-time"
	LabelRequested = "requested-range"
	LabelTrailing  = "trailing"
)

// Window is a labelled time range shown next to the figures computed over it.
type Window struct {
	Label string     `json:"label"`
	From  *time.Time `json:"from,omitempty"`
	To    *time.Time `json:"to,omitempty"`
}

func newWindow(label string, rng records.Range) Window {
	w := Window{Label: label}
	if !rng.From.IsZero() {
		from := rng.From.UTC()
		w.From = &from
	}
	if !rng.To.IsZero() {
		to := rng.To.UTC()
		w.To = &to
	}
	return w
}

// Range converts the window back into a record range.
func (w Window) Range() records.Range {
	var rng records.Range
	if w.From != nil {
		rng.From = *w.From
	}
	if w.To != nil {
		rng.To = *w.To
	}
	return rng
}

// Windows are the two ranges a report is computed over. Cumulative figures
// use the requested range or all time; trend figures use the requested
// range or the trailing days ending today.
type Windows struct {
	Cumulative Window `json:"cumulative"`
	Trend      Window `json:"trend"`
}

// resolveWindows computes the report windows. The trailing window is whole
// UTC days ending with today so it is stable for a day.
func resolveWindows(rng records.Range, trendDays int, now time.Time) Windows {
	if rng.Bounded() {
		return Windows{
			Cumulative: newWindow(LabelRequested, rng),
			Trend:      newWindow(LabelRequested, rng),
		}
	}
	if trendDays <= 0 {
		trendDays = defaultTrendDays
	}
	now = now.UTC()
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return Windows{
		Cumulative: newWindow(LabelAllTime, records.AllTime),
		Trend:      newWindow(fmt.Sprintf("%s-%dd", LabelTrailing, trendDays), records.Range{From: end.AddDate(0, 0, -trendDays), To: end}),
	}
}

// cover returns the smallest range containing every given range. Any
// unbounded input makes the result unbounded.
func cover(ranges ...records.Range) records.Range {
	var out records.Range
	for i, r := range ranges {
		if !r.Bounded() {
			return records.AllTime
		}
		if i == 0 || r.From.Before(out.From) {
			out.From = r.From
		}
		if i == 0 || r.To.After(out.To) {
			out.To = r.To
		}
	}
	return out
}

// cacheKey identifies a report: reports:<type>:<tenant>:<individual>:<from>:<to>:<granularity>.
// from is the cumulative start ("-" for all time) and to is the trend end,
// which together determine both windows.
func cacheKey(req Request, win Windows, g aggregate.Granularity) string {
	from := "-"
	if win.Cumulative.From != nil {
		from = keyTime(*win.Cumulative.From)
	}
	to := "-"
	if win.Trend.To != nil {
		to = keyTime(*win.Trend.To)
	}
	individual := "false"
	if req.Scope.Individual {
		individual = "true"
	}
	return strings.Join([]string{"reports", string(req.Type), req.Scope.TenantID.String(), individual, from, to, string(g)}, ":")
}

func keyTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// passthrough reports errors that are the caller's fault or the caller's
// cancellation and must not be turned into ReportUnavailable.
func passthrough(err error) bool {
	return errors.Is(err, records.ErrInvalidTenant) ||
		errors.Is(err, records.ErrNotFound) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, context.Canceled)
}
