package records

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func noSleep(context.Context, time.Duration) error { return nil }

func testRetry() Retry {
	return Retry{Attempts: 3, Backoff: time.Millisecond, sleep: noSleep}
}

// stubResult is one scripted response to Query or QueryRow.
type stubResult struct {
	rows [][]interface{}
	err  error
}

type stubDB struct {
	mu      sync.Mutex
	results []stubResult
	queries []string
	args    [][]interface{}
}

func (s *stubDB) pop(query string, args []interface{}) stubResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, query)
	s.args = append(s.args, args)
	if len(s.results) == 0 {
		return stubResult{}
	}
	res := s.results[0]
	s.results = s.results[1:]
	return res
}

func (s *stubDB) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *stubDB) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (s *stubDB) Query(_ context.Context, query string, args ...interface{}) (pgx.Rows, error) {
	res := s.pop(query, args)
	if res.err != nil {
		return nil, res.err
	}
	return &stubRows{values: res.rows, index: -1}, nil
}

func (s *stubDB) QueryRow(_ context.Context, query string, args ...interface{}) pgx.Row {
	res := s.pop(query, args)
	if res.err != nil {
		return stubRow{err: res.err}
	}
	if len(res.rows) == 0 {
		return stubRow{err: pgx.ErrNoRows}
	}
	return stubRow{values: res.rows[0]}
}

type stubRow struct {
	values []interface{}
	err    error
}

func (r stubRow) Scan(dest ...interface{}) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

type stubRows struct {
	values [][]interface{}
	index  int
}

func (r *stubRows) Close()                                       { r.index = len(r.values) }
func (r *stubRows) Err() error                                   { return nil }
func (r *stubRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stubRows) RawValues() [][]byte                          { return nil }
func (r *stubRows) Conn() *pgx.Conn                              { return nil }

func (r *stubRows) Next() bool {
	if r.index+1 >= len(r.values) {
		r.index = len(r.values)
		return false
	}
	r.index++
	return true
}

func (r *stubRows) Values() ([]interface{}, error) {
	if r.index < 0 || r.index >= len(r.values) {
		return nil, fmt.Errorf("no row available")
	}
	return r.values[r.index], nil
}

func (r *stubRows) Scan(dest ...interface{}) error {
	if r.index < 0 || r.index >= len(r.values) {
		return fmt.Errorf("no row available")
	}
	return assign(r.values[r.index], dest)
}

// assign copies scripted values into scan destinations. A nil value leaves
// the destination at its zero value.
func assign(values []interface{}, dest []interface{}) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		v := reflect.ValueOf(values[i])
		switch {
		case v.Type().AssignableTo(target.Type()):
			target.Set(v)
		case target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()):
			p := reflect.New(target.Type().Elem())
			p.Elem().Set(v)
			target.Set(p)
		case v.Type().ConvertibleTo(target.Type()):
			target.Set(v.Convert(target.Type()))
		default:
			return fmt.Errorf("scan: cannot assign %T to %s", values[i], target.Type())
		}
	}
	return nil
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
