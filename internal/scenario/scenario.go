package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"PropertyPlanner/internal/model"
	"PropertyPlanner/internal/planner"
)

// Scenario is a client profile with a queue of prospective purchases and any
// purchases already made. JSON files parse as YAML.
type Scenario struct {
	Profile   model.Profile `yaml:"profile" json:"profile"`
	Queue     []Record      `yaml:"queue" json:"queue"`
	Purchases []Record      `yaml:"purchases" json:"purchases"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(data)
}

// Parse decodes scenario YAML or JSON.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	return &s, nil
}

// Instances normalizes the queue in order.
func (s *Scenario) Instances(a model.Assumptions) ([]model.PropertyInstance, error) {
	out := make([]model.PropertyInstance, 0, len(s.Queue))
	for i, r := range s.Queue {
		inst, err := NormalizeInstance(r, a)
		if err != nil {
			return nil, fmt.Errorf("queue[%d]: %w", i, err)
		}
		out = append(out, inst)
	}
	return out, nil
}

// PropertyPurchases normalizes the purchases already made.
func (s *Scenario) PropertyPurchases(a model.Assumptions) ([]model.PropertyPurchase, error) {
	out := make([]model.PropertyPurchase, 0, len(s.Purchases))
	for i, r := range s.Purchases {
		p, err := NormalizePurchase(r, a)
		if err != nil {
			return nil, fmt.Errorf("purchases[%d]: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Snapshot is a saved plan.
type Snapshot struct {
	Plan    planner.Plan `json:"plan"`
	SavedAt time.Time    `json:"savedAt"`
}

// LoadPlan reads a plan snapshot. A missing file yields a zero snapshot.
func LoadPlan(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{}, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SavePlan writes plan to path as indented JSON.
func SavePlan(path string, plan planner.Plan) error {
	snap := Snapshot{Plan: plan, SavedAt: time.Now()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}
