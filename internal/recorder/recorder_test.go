package recorder

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func samplePlan() planner.Plan {
	return planner.Plan{
		Profile: model.Profile{Name: "Sam"},
		Scheduled: []planner.Scheduled{{
			Period:   0,
			Year:     2025,
			Instance: model.PropertyInstance{Title: "First buy"},
			Acquisition: model.Acquisition{
				Purchase: model.PropertyPurchase{Title: "First buy", Cost: 500000, LoanAmount: 450000},
			},
			Step: model.CascadeStep{TotalCashRequired: 80235, NetCashflow: -6859.6},
		}},
		Deferred: []planner.Deferred{{Instance: model.PropertyInstance{Title: "Later"}, BeyondTimeline: true}},
		Projection: []model.YearMetrics{
			{Year: 2025, Metrics: model.PropertyMetrics{TotalEquity: 100}},
			{Year: 2026, Metrics: model.PropertyMetrics{TotalEquity: 250000}},
		},
	}
}

func TestSQLiteRecorder_RecordPlan(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "db", "planner.db"), quietLogger())
	require.NoError(t, err)
	defer r.Close()

	id, err := r.RecordPlan(ctx, &PlanRun{Trigger: TriggerCLI, Plan: samplePlan()})
	require.NoError(t, err)
	assert.Len(t, id, 36)

	runs, err := r.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, id, runs[0].ID)
	assert.Equal(t, "Sam", runs[0].Profile)
	assert.Equal(t, TriggerCLI, runs[0].Trigger)
	assert.Equal(t, 1, runs[0].Scheduled)
	assert.Equal(t, 1, runs[0].Deferred)
	assert.Equal(t, 250000.0, runs[0].FinalEquity)

	var count int
	require.NoError(t, r.db.QueryRow(`SELECT COUNT(*) FROM plan_purchases WHERE run_id = ?`, id).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteRecorder_RecordRecompute(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "planner.db"), quietLogger())
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRecompute(ctx, &RecomputeEvent{
		Title:      "Stretch",
		Year:       2025,
		Violations: []model.GuardrailType{model.GuardrailDeposit, model.GuardrailBorrowing},
		Fixes:      4,
	}))

	var violations string
	var passed int
	require.NoError(t, r.db.QueryRow(`SELECT violations, passed FROM recompute_events`).Scan(&violations, &passed))
	assert.Equal(t, "deposit,borrowing", violations)
	assert.Equal(t, 0, passed)
}

func TestOpen(t *testing.T) {
	r, err := Open("none", "", nil)
	require.NoError(t, err)
	assert.IsType(t, &NoopRecorder{}, r)

	id, err := r.RecordPlan(context.Background(), &PlanRun{})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = Open("mysql", "", nil)
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `INSERT INTO t (a, b) VALUES (?,?)`
	assert.Equal(t, q, rebind(false, q))
	assert.Equal(t, `INSERT INTO t (a, b) VALUES ($1,$2)`, rebind(true, q))
}
