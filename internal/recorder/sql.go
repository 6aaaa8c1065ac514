package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// SQLRecorder persists plan runs to SQLite or PostgreSQL. The schema sticks
// to types both accept.
type SQLRecorder struct {
	db       *sql.DB
	postgres bool
	log      *logrus.Logger
	mu       sync.Mutex
}

// Open returns the recorder for driver: "sqlite", "postgres" or "none".
func Open(driver, dsn string, log *logrus.Logger) (Recorder, error) {
	switch driver {
	case "none", "":
		return NewNoopRecorder(), nil
	case "sqlite":
		return NewSQLiteRecorder(dsn, log)
	case "postgres":
		return NewPostgresRecorder(dsn, log)
	}
	return nil, fmt.Errorf("unknown database driver %q", driver)
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logrus.Logger) (*SQLRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the API can read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	return newSQLRecorder(db, false, log, "sqlite recorder opened: "+dbPath)
}

// NewPostgresRecorder connects to PostgreSQL and runs migrations.
func NewPostgresRecorder(dsn string, log *logrus.Logger) (*SQLRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return newSQLRecorder(db, true, log, "postgres recorder opened")
}

func newSQLRecorder(db *sql.DB, postgres bool, log *logrus.Logger, opened string) (*SQLRecorder, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := &SQLRecorder{db: db, postgres: postgres, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info(opened)
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plan_runs (
			id             TEXT PRIMARY KEY,
			timestamp      BIGINT NOT NULL,
			profile        TEXT,
			trigger_source TEXT,
			scheduled      INTEGER,
			deferred       INTEGER,
			final_equity   DOUBLE PRECISION,
			plan_json      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_runs_ts ON plan_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS plan_purchases (
			run_id        TEXT NOT NULL,
			seq           INTEGER NOT NULL,
			title         TEXT,
			year          DOUBLE PRECISION,
			cost          DOUBLE PRECISION,
			loan_amount   DOUBLE PRECISION,
			cash_required DOUBLE PRECISION,
			net_cashflow  DOUBLE PRECISION,
			PRIMARY KEY (run_id, seq)
		)`,

		`CREATE TABLE IF NOT EXISTS recompute_events (
			id         TEXT PRIMARY KEY,
			timestamp  BIGINT NOT NULL,
			title      TEXT,
			year       DOUBLE PRECISION,
			passed     INTEGER,
			violations TEXT,
			fixes      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recompute_ts ON recompute_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func rebind(postgres bool, query string) string {
	if !postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (r *SQLRecorder) RecordPlan(ctx context.Context, run *PlanRun) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	body, err := json.Marshal(run.Plan)
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, rebind(r.postgres, `INSERT INTO plan_runs
		(id, timestamp, profile, trigger_source, scheduled, deferred, final_equity, plan_json)
		VALUES (?,?,?,?,?,?,?,?)`),
		id, time.Now().Unix(), run.Plan.Profile.Name, run.Trigger,
		len(run.Plan.Scheduled), len(run.Plan.Deferred), finalEquity(run.Plan), string(body),
	)
	if err != nil {
		return "", fmt.Errorf("insert plan run: %w", err)
	}

	for i, s := range run.Plan.Scheduled {
		_, err = tx.ExecContext(ctx, rebind(r.postgres, `INSERT INTO plan_purchases
			(run_id, seq, title, year, cost, loan_amount, cash_required, net_cashflow)
			VALUES (?,?,?,?,?,?,?,?)`),
			id, i, s.Instance.Title, s.Year,
			s.Acquisition.Purchase.Cost, s.Acquisition.Purchase.LoanAmount,
			s.Step.TotalCashRequired, s.Step.NetCashflow,
		)
		if err != nil {
			return "", fmt.Errorf("insert plan purchase: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	r.log.WithFields(logrus.Fields{"run": id, "profile": run.Plan.Profile.Name}).Debug("Plan run recorded")
	return id, nil
}

func (r *SQLRecorder) RecordRecompute(ctx context.Context, evt *RecomputeEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	types := make([]string, len(evt.Violations))
	for i, v := range evt.Violations {
		types[i] = string(v)
	}
	passed := 0
	if len(evt.Violations) == 0 {
		passed = 1
	}
	_, err := r.db.ExecContext(ctx, rebind(r.postgres, `INSERT INTO recompute_events
		(id, timestamp, title, year, passed, violations, fixes)
		VALUES (?,?,?,?,?,?,?)`),
		uuid.NewString(), time.Now().Unix(), evt.Title, evt.Year,
		passed, strings.Join(types, ","), evt.Fixes,
	)
	return err
}

// Runs returns the most recent plan runs, newest first.
func (r *SQLRecorder) Runs(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, rebind(r.postgres, `SELECT
		id, timestamp, profile, trigger_source, scheduled, deferred, final_equity
		FROM plan_runs ORDER BY timestamp DESC LIMIT ?`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		var ts int64
		if err := rows.Scan(&s.ID, &ts, &s.Profile, &s.Trigger, &s.Scheduled, &s.Deferred, &s.FinalEquity); err != nil {
			return nil, err
		}
		s.Timestamp = time.Unix(ts, 0)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLRecorder) Close() error {
	r.log.Info("closing recorder")
	return r.db.Close()
}
