package recorder

import (
	"context"
	"time"

	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
)

// Trigger sources of a plan run.
const (
	TriggerCLI  = "cli"
	TriggerCron = "cron"
	TriggerAPI  = "api"
)

// PlanRun is one execution of the planner.
type PlanRun struct {
	Trigger string
	Plan    planner.Plan
}

// RecomputeEvent records one guardrail evaluation.
type RecomputeEvent struct {
	Title      string
	Year       float64
	Violations []model.GuardrailType
	Fixes      int
}

// RunSummary is a stored plan run without its full plan.
type RunSummary struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Profile     string    `json:"profile"`
	Trigger     string    `json:"trigger"`
	Scheduled   int       `json:"scheduled"`
	Deferred    int       `json:"deferred"`
	FinalEquity float64   `json:"finalEquity"`
}

// Recorder persists plan history for later analysis.
type Recorder interface {
	RecordPlan(ctx context.Context, run *PlanRun) (string, error)
	RecordRecompute(ctx context.Context, evt *RecomputeEvent) error
	Runs(ctx context.Context, limit int) ([]RunSummary, error)
	Close() error
}

func finalEquity(p planner.Plan) float64 {
	if len(p.Projection) == 0 {
		return 0
	}
	return p.Projection[len(p.Projection)-1].Metrics.TotalEquity
}
