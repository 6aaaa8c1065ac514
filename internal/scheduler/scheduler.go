package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"PropertyPlanner/internal/planner"
	"PropertyPlanner/internal/recorder"
	"PropertyPlanner/internal/report"
	"PropertyPlanner/internal/scenario"
)

// Source yields the scenario to re-plan on each run.
type Source func() (*scenario.Scenario, error)

// FileSource reloads the scenario file on every run so edits are picked up.
func FileSource(path string) Source {
	return func() (*scenario.Scenario, error) { return scenario.Load(path) }
}

// Scheduler re-plans a scenario on a cron schedule, records each run and
// keeps the latest plan on disk.
type Scheduler struct {
	Cron     *cron.Cron
	Planner  *planner.Planner
	Recorder recorder.Recorder
	Source   Source
	PlanFile string
	Out      io.Writer
	Log      *logrus.Logger
	Ctx      context.Context

	mu   sync.Mutex
	last *planner.Plan
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *planner.Planner, rec recorder.Recorder, src Source, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Planner:  p,
		Recorder: rec,
		Source:   src,
		Log:      log,
		Ctx:      ctx,
	}
}

// Register adds the re-plan task.
func (s *Scheduler) Register(replanCron string) error {
	if _, err := s.Cron.AddFunc(replanCron, s.replanTask); err != nil {
		return fmt.Errorf("register replan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunNow executes the re-plan task immediately.
func (s *Scheduler) RunNow() (planner.Plan, error) {
	return s.replan(recorder.TriggerCLI)
}

// Last returns the most recent plan, if any run has completed.
func (s *Scheduler) Last() (planner.Plan, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return planner.Plan{}, false
	}
	return *s.last, true
}

func (s *Scheduler) replanTask() {
	s.Log.Info("running replan task")
	if _, err := s.replan(recorder.TriggerCron); err != nil {
		s.Log.WithError(err).Error("replan")
	}
}

func (s *Scheduler) replan(trigger string) (planner.Plan, error) {
	sc, err := s.Source()
	if err != nil {
		return planner.Plan{}, fmt.Errorf("load scenario: %w", err)
	}
	queue, err := sc.Instances(s.Planner.Assumptions())
	if err != nil {
		return planner.Plan{}, err
	}
	owned, err := sc.PropertyPurchases(s.Planner.Assumptions())
	if err != nil {
		return planner.Plan{}, err
	}

	plan, err := s.Planner.Plan(s.Ctx, sc.Profile, owned, queue)
	if err != nil {
		return planner.Plan{}, err
	}

	s.mu.Lock()
	s.last = &plan
	s.mu.Unlock()

	id, err := s.Recorder.RecordPlan(s.Ctx, &recorder.PlanRun{Trigger: trigger, Plan: plan})
	if err != nil {
		s.Log.WithError(err).Error("record plan")
	}
	if s.PlanFile != "" {
		if err := scenario.SavePlan(s.PlanFile, plan); err != nil {
			s.Log.WithError(err).Error("save plan")
		}
	}
	if s.Out != nil {
		fmt.Fprintln(s.Out, report.FormatPlan(plan))
	}

	s.Log.WithFields(logrus.Fields{
		"run":       id,
		"trigger":   trigger,
		"scheduled": len(plan.Scheduled),
		"deferred":  len(plan.Deferred),
	}).Info("replan complete")
	return plan, nil
}
