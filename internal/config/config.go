package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"PropertyPlanner/internal/model"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverNone     = "none"
)

// CronParser accepts the six-field (with seconds) specs used by the scheduler.
var CronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Config holds all application configuration.
type Config struct {
	Assumptions model.Assumptions `yaml:"assumptions"`
	Database    struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Schedule struct {
		ReplanCron string `yaml:"replan_cron"`
	} `yaml:"schedule"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Scenario struct {
		Path     string `yaml:"path"`
		PlanFile string `yaml:"plan_file"`
	} `yaml:"scenario"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Assumptions not named in the file keep their built-in defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{Assumptions: model.DefaultAssumptions()}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PLANNER_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("PLANNER_REPLAN_CRON"); v != "" {
		cfg.Schedule.ReplanCron = v
	}
	if v := os.Getenv("PLANNER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("PLANNER_SCENARIO"); v != "" {
		cfg.Scenario.Path = v
	}
	if v := os.Getenv("PLANNER_PLAN_FILE"); v != "" {
		cfg.Scenario.PlanFile = v
	}
	if v := os.Getenv("BUFFER_RATE"); v != "" {
		var rate float64
		if _, err := fmt.Sscanf(v, "%f", &rate); err == nil {
			cfg.Assumptions.Serviceability.BufferRate = rate
		}
	}

	// Defaults
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	if cfg.Database.DSN == "" && cfg.Database.Driver == DriverSQLite {
		cfg.Database.DSN = "data/property_planner.db"
	}
	if cfg.Schedule.ReplanCron == "" {
		cfg.Schedule.ReplanCron = "0 0 7 * * 1"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Scenario.PlanFile == "" {
		cfg.Scenario.PlanFile = "data/plan.json"
	}

	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverNone:
	case DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if _, err := CronParser.Parse(c.Schedule.ReplanCron); err != nil {
		return fmt.Errorf("schedule.replan_cron: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json")
	}

	a := c.Assumptions
	if a.MaxLVR <= 0 || a.MaxLVR > 100 {
		return fmt.Errorf("assumptions.max_lvr must be in (0, 100]")
	}
	if a.EquityReleaseFactor < 0 || a.EquityReleaseFactor > 1 {
		return fmt.Errorf("assumptions.equity_release_factor must be in [0, 1]")
	}
	if a.Serviceability.RentShadingPct < 0 || a.Serviceability.RentShadingPct > 100 {
		return fmt.Errorf("assumptions.serviceability.rent_shading_pct must be in [0, 100]")
	}
	if a.Serviceability.BufferRate < 0 {
		return fmt.Errorf("assumptions.serviceability.buffer_rate must not be negative")
	}
	for _, b := range a.LMI.Bands {
		if b.MaxLVR <= b.MinLVR {
			return fmt.Errorf("assumptions.lmi band %.2f-%.2f is empty", b.MinLVR, b.MaxLVR)
		}
	}
	return nil
}

// AssumptionsSnapshot returns a deep copy of the assumptions, safe to hand to
// an engine while the config is reloaded.
func (c *Config) AssumptionsSnapshot() model.Assumptions {
	a := c.Assumptions
	a.LMI.Bands = append([]model.LMIBand(nil), a.LMI.Bands...)
	a.StampDuty = append([]model.StampDutyBracket(nil), a.StampDuty...)
	a.OneOffCosts = append([]model.OneOffCost(nil), a.OneOffCosts...)
	if a.StampDutyByState != nil {
		byState := make(map[string][]model.StampDutyBracket, len(a.StampDutyByState))
		for k, v := range a.StampDutyByState {
			byState[k] = append([]model.StampDutyBracket(nil), v...)
		}
		a.StampDutyByState = byState
	}
	if a.PropertyTypes != nil {
		types := make(map[string]model.PropertyDefaults, len(a.PropertyTypes))
		for k, v := range a.PropertyTypes {
			if v.Growth != nil {
				g := *v.Growth
				v.Growth = &g
			}
			types[k] = v
		}
		a.PropertyTypes = types
	}
	return a
}
