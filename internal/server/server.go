// Package server exposes the engine and planner over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
	"PropertyPlanner/internal/portfolio"
	"PropertyPlanner/internal/recorder"
	"PropertyPlanner/internal/scenario"
)

// Server holds the API dependencies.
type Server struct {
	engine   *engine.Engine
	planner  *planner.Planner
	recorder recorder.Recorder
	metrics  *Metrics
	log      *logrus.Logger
	latest   func() (planner.Plan, bool)
}

// New creates a Server.
func New(e *engine.Engine, p *planner.Planner, rec recorder.Recorder, m *Metrics, log *logrus.Logger) *Server {
	return &Server{engine: e, planner: p, recorder: rec, metrics: m, log: log}
}

// ServeLatest exposes the newest scheduled plan at GET /v1/plan/latest,
// typically the re-plan watcher's Last.
func (s *Server) ServeLatest(latest func() (planner.Plan, bool)) {
	s.latest = latest
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/recompute", s.Recompute).Methods("POST")
	v1.HandleFunc("/plan", s.Plan).Methods("POST")
	v1.HandleFunc("/plan/latest", s.LatestPlan).Methods("GET")
	v1.HandleFunc("/project", s.Project).Methods("POST")
	v1.HandleFunc("/runs", s.Runs).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Recompute handles POST /v1/recompute.
func (s *Server) Recompute(w http.ResponseWriter, r *http.Request) {
	var req engine.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.engine.Recompute(req)
	if err != nil {
		s.metrics.RecomputesTotal.WithLabelValues("error").Inc()
		writeError(w, statusFor(err), err)
		return
	}

	outcome := "passed"
	violations := make([]model.GuardrailType, 0, len(res.Validation.Violations))
	for _, v := range res.Validation.Violations {
		outcome = "failed"
		violations = append(violations, v.Type)
		s.metrics.GuardrailFailures.WithLabelValues(string(v.Type)).Inc()
	}
	s.metrics.RecomputesTotal.WithLabelValues(outcome).Inc()
	s.metrics.FixesSuggested.Add(float64(len(res.Fixes)))

	if err := s.recorder.RecordRecompute(r.Context(), &recorder.RecomputeEvent{
		Title:      res.Instance.Title,
		Year:       req.Year,
		Violations: violations,
		Fixes:      len(res.Fixes),
	}); err != nil {
		s.log.WithError(err).Error("record recompute")
	}
	writeJSON(w, http.StatusOK, res)
}

// Plan handles POST /v1/plan with a scenario body.
func (s *Server) Plan(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	queue, err := sc.Instances(s.planner.Assumptions())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	owned, err := sc.PropertyPurchases(s.planner.Assumptions())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	plan, err := s.planner.Plan(r.Context(), sc.Profile, owned, queue)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	s.metrics.PlansTotal.WithLabelValues(recorder.TriggerAPI).Inc()

	if _, err := s.recorder.RecordPlan(r.Context(), &recorder.PlanRun{Trigger: recorder.TriggerAPI, Plan: plan}); err != nil {
		s.log.WithError(err).Error("record plan")
	}
	writeJSON(w, http.StatusOK, plan)
}

// LatestPlan handles GET /v1/plan/latest.
func (s *Server) LatestPlan(w http.ResponseWriter, _ *http.Request) {
	if s.latest == nil {
		writeError(w, http.StatusNotFound, errors.New("no re-plan watcher is running"))
		return
	}
	plan, ok := s.latest()
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no plan computed yet"))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ProjectResponse is the body of POST /v1/project.
type ProjectResponse struct {
	Projection []model.YearMetrics `json:"projection"`
	Goals      model.GoalYears     `json:"goals"`
}

// Project handles POST /v1/project: the metrics of already priced purchases
// across the profile's timeline.
func (s *Server) Project(w http.ResponseWriter, r *http.Request) {
	var sc scenario.Scenario
	if err := json.NewDecoder(r.Body).Decode(&sc); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	purchases, err := sc.PropertyPurchases(s.engine.Assumptions())
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	years := sc.Profile.TimelineYears
	if years <= 0 {
		years = planner.DefaultTimelineYears
	}
	series := portfolio.Project(purchases, sc.Profile.Existing, years)
	writeJSON(w, http.StatusOK, ProjectResponse{
		Projection: series,
		Goals:      portfolio.GoalsFromProjection(series, sc.Profile.Goals),
	})
}

// Runs handles GET /v1/runs?limit=n.
func (s *Server) Runs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}
	runs, err := s.recorder.Runs(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if runs == nil {
		runs = []recorder.RunSummary{}
	}
	writeJSON(w, http.StatusOK, runs)
}

// statusFor maps input errors to 422 and everything else to 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrZeroPrice),
		errors.Is(err, model.ErrUnknownField),
		errors.Is(err, model.ErrInvalidRecord):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// instrument logs each request and feeds the HTTP metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.code)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"route":    route,
			"status":   rec.code,
			"duration": elapsed,
		}).Debug("request")
	})
}
