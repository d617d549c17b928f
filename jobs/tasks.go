package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/estatedesk/estatedesk/internal/reports"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportsWarmup refills the report cache for every company scope.
	TaskReportsWarmup = "reports:warmup"
)

// ReportsWarmupPayload lists the report types to prebuild. Empty means all.
type ReportsWarmupPayload struct {
	ReportTypes []string `json:"report_types"`
}

// Types validates and returns the requested report types.
func (p ReportsWarmupPayload) Types() ([]reports.Type, error) {
	if len(p.ReportTypes) == 0 {
		return reports.Types, nil
	}
	out := make([]reports.Type, 0, len(p.ReportTypes))
	for _, raw := range p.ReportTypes {
		t, err := reports.ParseType(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// NewReportsWarmupTask constructs the warmup task for the given report types.
func NewReportsWarmupTask(types ...reports.Type) (*asynq.Task, error) {
	payload := ReportsWarmupPayload{ReportTypes: make([]string, 0, len(types))}
	for _, t := range types {
		payload.ReportTypes = append(payload.ReportTypes, string(t))
	}
	if _, err := payload.Types(); err != nil {
		return nil, fmt.Errorf("warmup task: %w", err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportsWarmup, data), nil
}
