package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PropertyPlanner/internal/engine"
	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
	"PropertyPlanner/internal/recorder"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	e := engine.New(model.DefaultAssumptions(), nil, log)
	s := New(e, planner.New(e, log), recorder.NewNoopRecorder(), NewMetrics(), log)
	ts := httptest.NewServer(s.Router())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const stretchRequest = `{
	"instance": {"title": "Stretch", "purchasePrice": 500000, "lvr": 90, "rentPerWeek": 550, "interestRate": 6},
	"year": 2025,
	"state": {"availableFunds": 220000, "borrowingCapacity": 1050000},
	"serviceableIncome": 50000,
	"adjustments": {"purchasePrice": 2000000, "lvr": 95, "rentPerWeek": 200, "interestRate": 6.5}
}`

func TestRecompute(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/recompute", stretchRequest)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res engine.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, 2000000.0, res.Instance.PurchasePrice)
	assert.Len(t, res.Validation.Violations, 3)
	assert.NotEmpty(t, res.Fixes)
}

func TestRecompute_BadInput(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/recompute", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts, "/v1/recompute", `{"instance": {"title": "free"}, "year": 2025}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = post(t, ts, "/v1/recompute", `{"instance": {"purchasePrice": 1}, "adjustments": {"colour": 1}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestPlan(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/plan", `{
		"profile": {"name": "Sam", "depositPool": 220000, "borrowingCapacity": 1050000, "serviceableIncome": 60000, "timelineYears": 5},
		"queue": [{"title": "First buy", "type": "unit", "price": "500,000"}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var plan planner.Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	require.Len(t, plan.Scheduled, 1)
	assert.Equal(t, "First buy", plan.Scheduled[0].Instance.Title)
	assert.Len(t, plan.Projection, 6)
}

func TestPlan_InvalidQueue(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/plan", `{"queue": [{"type": "castle"}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestProject(t *testing.T) {
	ts := newTestServer(t)

	resp := post(t, ts, "/v1/project", `{
		"profile": {"timelineYears": 3, "goals": {"equityGoal": 50000}},
		"purchases": [{"title": "Owned", "year": 2025, "price": 400000, "loan": 320000, "rent": 420}]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ProjectResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Projection, 4)
	assert.Equal(t, 2025, out.Projection[0].Year)
	assert.InDelta(t, 320000, out.Projection[0].Metrics.TotalDebt, 1e-6)
	require.NotNil(t, out.Goals.Equity)
	assert.Equal(t, 2025, *out.Goals.Equity)
}

func TestHealthRunsAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	runs, err := http.Get(ts.URL + "/v1/runs?limit=5")
	require.NoError(t, err)
	defer runs.Body.Close()
	assert.Equal(t, http.StatusOK, runs.StatusCode)
	body, _ := io.ReadAll(runs.Body)
	assert.JSONEq(t, `[]`, string(body))

	bad, err := http.Get(ts.URL + "/v1/runs?limit=zero")
	require.NoError(t, err)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	post(t, ts, "/v1/recompute", stretchRequest)

	m, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer m.Body.Close()
	text, _ := io.ReadAll(m.Body)
	assert.Contains(t, string(text), `planner_recomputes_total{outcome="failed"} 1`)
	assert.Contains(t, string(text), `planner_guardrail_failures_total{type="deposit"} 1`)
	assert.Contains(t, string(text), `planner_http_requests_total{code="200",route="/v1/recompute"} 1`)
}

func TestRouteMethods(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/v1/recompute")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestLatestPlan(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	e := engine.New(model.DefaultAssumptions(), nil, log)
	s := New(e, planner.New(e, log), recorder.NewNoopRecorder(), NewMetrics(), log)
	ts := httptest.NewServer(s.Router())
	defer ts.Close()

	get := func() *http.Response {
		resp, err := http.Get(ts.URL + "/v1/plan/latest")
		require.NoError(t, err)
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	// No watcher attached.
	assert.Equal(t, http.StatusNotFound, get().StatusCode)

	var (
		mu     sync.Mutex
		latest planner.Plan
		ready  bool
	)
	s.ServeLatest(func() (planner.Plan, bool) {
		mu.Lock()
		defer mu.Unlock()
		return latest, ready
	})
	assert.Equal(t, http.StatusNotFound, get().StatusCode)

	mu.Lock()
	latest, ready = planner.Plan{Profile: model.Profile{Name: "Sam"}}, true
	mu.Unlock()
	resp := get()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var plan planner.Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	assert.Equal(t, "Sam", plan.Profile.Name)
}
