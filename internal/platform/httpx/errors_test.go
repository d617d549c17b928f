package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/estatedesk/estatedesk/internal/reports"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("scope: %w", records.ErrInvalidTenant), http.StatusBadRequest},
		{fmt.Errorf("%w: bad range", reports.ErrInvalidRequest), http.StatusBadRequest},
		{reports.ErrForbidden, http.StatusForbidden},
		{records.ErrNotFound, http.StatusNotFound},
		{&reports.UnavailableError{Report: reports.TypeFinancial, Err: records.ErrTransport}, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, tc.status, body.Status)
	}
}

func TestRespondErrorUnavailableRetryAfter(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, &reports.UnavailableError{Report: reports.TypeWallet, Err: records.ErrInvalidRecord})
	assert.Equal(t, "30", rr.Header().Get("Retry-After"))
	assert.NotContains(t, rr.Body.String(), "invalid record")
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pq: password authentication failed"))
	assert.NotContains(t, rr.Body.String(), "password")
}

func TestJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]int{"total_units": 10})
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"total_units":10}`, rr.Body.String())
}
