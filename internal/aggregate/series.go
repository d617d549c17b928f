package aggregate

import (
	"fmt"
	"sort"
	"time"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/shopspring/decimal"
)

// Granularity is the width of a time-series period.
type Granularity string

const (
	Day   Granularity = "day"
	Week  Granularity = "week"
	Month Granularity = "month"
)

// ParseGranularity accepts day, week or month.
func ParseGranularity(raw string) (Granularity, error) {
	switch g := Granularity(raw); g {
	case Day, Week, Month:
		return g, nil
	default:
		return "", fmt.Errorf("aggregate: unknown granularity %q", raw)
	}
}

// DefaultGranularity picks day for spans up to 31 days, week up to 92 days
// and month beyond that.
func DefaultGranularity(rng records.Range) Granularity {
	days := rng.Duration().Hours() / 24
	switch {
	case days <= 31:
		return Day
	case days <= 92:
		return Week
	default:
		return Month
	}
}

// Period is one bucket of a time series. Start and End are clipped to the
// requested range.
type Period struct {
	Key   string          `json:"key"`
	Start time.Time       `json:"start"`
	End   time.Time       `json:"end"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func periodStart(t time.Time, g Granularity) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case Week:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case Month:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

func periodNext(start time.Time, g Granularity) time.Time {
	switch g {
	case Week:
		return start.AddDate(0, 0, 7)
	case Month:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

// PeriodKey formats the period containing t: 2006-01-02, 2006-W01 (ISO week)
// or 2006-01.
func PeriodKey(t time.Time, g Granularity) string {
	t = t.UTC()
	switch g {
	case Week:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case Month:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// Periods partitions a bounded range into contiguous zero-valued periods.
// An unbounded or empty range has no periods.
func Periods(rng records.Range, g Granularity) []Period {
	if !rng.Bounded() || !rng.From.Before(rng.To) {
		return nil
	}
	from, to := rng.From.UTC(), rng.To.UTC()
	var out []Period
	for start := periodStart(from, g); start.Before(to); start = periodNext(start, g) {
		end := periodNext(start, g)
		p := Period{Key: PeriodKey(start, g), Start: start, End: end, Total: decimal.Zero}
		if p.Start.Before(from) {
			p.Start = from
		}
		if p.End.After(to) {
			p.End = to
		}
		out = append(out, p)
	}
	return out
}

// TimeSeriesBucket counts items by the period their date falls in and sums
// value over them. Every period of rng is present, including empty ones.
// value may be nil when only counts are needed.
func TimeSeriesBucket[T any](items []T, date func(T) time.Time, value func(T) decimal.Decimal, rng records.Range, g Granularity) []Period {
	periods := Periods(rng, g)
	if len(periods) == 0 {
		return periods
	}
	for _, item := range items {
		i := periodIndex(periods, date(item))
		if i < 0 {
			continue
		}
		periods[i].Count++
		if value != nil {
			periods[i].Total = periods[i].Total.Add(value(item))
		}
	}
	return periods
}

func periodIndex(periods []Period, t time.Time) int {
	i := sort.Search(len(periods), func(i int) bool { return periods[i].End.After(t) })
	if i == len(periods) || t.Before(periods[i].Start) {
		return -1
	}
	return i
}

// FlowPoint is settled inflow and outflow for one period.
type FlowPoint struct {
	Key     string          `json:"key"`
	Start   time.Time       `json:"start"`
	End     time.Time       `json:"end"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Net     decimal.Decimal `json:"net"`
}

// CashFlow buckets completed revenue and expenses side by side.
func CashFlow(txns []records.Transaction, rng records.Range, g Granularity) []FlowPoint {
	amount := func(t records.Transaction) decimal.Decimal { return t.Amount.Abs() }
	date := func(t records.Transaction) time.Time { return t.Date }
	var revenue, expenses []records.Transaction
	for _, t := range txns {
		if !t.Completed() {
			continue
		}
		switch t.Type {
		case records.TxRevenue:
			revenue = append(revenue, t)
		case records.TxExpense:
			expenses = append(expenses, t)
		}
	}
	in := TimeSeriesBucket(revenue, date, amount, rng, g)
	out := TimeSeriesBucket(expenses, date, amount, rng, g)
	points := make([]FlowPoint, len(in))
	for i := range in {
		points[i] = FlowPoint{
			Key:     in[i].Key,
			Start:   in[i].Start,
			End:     in[i].End,
			Inflow:  in[i].Total,
			Outflow: out[i].Total,
			Net:     in[i].Total.Sub(out[i].Total),
		}
	}
	return points
}
