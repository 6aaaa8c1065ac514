package recorder

import (
	"context"

	"github.com/google/uuid"
)

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordPlan(_ context.Context, _ *PlanRun) (string, error) {
	return uuid.NewString(), nil
}
func (n *NoopRecorder) RecordRecompute(_ context.Context, _ *RecomputeEvent) error { return nil }
func (n *NoopRecorder) Runs(_ context.Context, _ int) ([]RunSummary, error)        { return nil, nil }
func (n *NoopRecorder) Close() error                                              { return nil }
