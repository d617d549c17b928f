package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/estatedesk/estatedesk/internal/reports"
)

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(queue string) (*asynq.QueueInfo, error) {
	return s.info, s.err
}

type stubEnqueuer struct {
	types []reports.Type
	err   error
}

func (s *stubEnqueuer) EnqueueReportsWarmup(ctx context.Context, types ...reports.Type) (*asynq.TaskInfo, error) {
	s.types = types
	if s.err != nil {
		return nil, s.err
	}
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

func serveJobs(h *Handler, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/jobs", h.MountRoutes)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestJobsHealth(t *testing.T) {
	h := NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3, Failed: 1}}, nil, nil)
	rr := serveJobs(h, http.MethodGet, "/jobs/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"queue":"default","pending":3,"active":0,"failed":1}`, rr.Body.String())

	h = NewHandler(stubInspector{err: errors.New("redis down")}, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, serveJobs(h, http.MethodGet, "/jobs/health").Code)
}

func TestJobsWarmupEnqueues(t *testing.T) {
	enq := &stubEnqueuer{}
	h := NewHandler(nil, enq, nil)
	rr := serveJobs(h, http.MethodPost, "/jobs/warmup?report=financial&report=wallet")

	require.Equal(t, http.StatusAccepted, rr.Code)
	var body warmupResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "task-1", body.TaskID)
	assert.Equal(t, []reports.Type{reports.TypeFinancial, reports.TypeWallet}, enq.types)
}

func TestJobsWarmupErrors(t *testing.T) {
	h := NewHandler(nil, &stubEnqueuer{}, nil)
	assert.Equal(t, http.StatusBadRequest, serveJobs(h, http.MethodPost, "/jobs/warmup?report=ledger").Code)

	h = NewHandler(nil, &stubEnqueuer{err: asynq.ErrDuplicateTask}, nil)
	assert.Equal(t, http.StatusAccepted, serveJobs(h, http.MethodPost, "/jobs/warmup").Code)

	h = NewHandler(nil, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, serveJobs(h, http.MethodPost, "/jobs/warmup").Code)
}
