package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/dpsim/internal/config"
)

// Scenario is a YAML file describing several runs of a sweep. Each run
// starts from a preset (or the defaults) and overlays its config block.
//
//	name: mass-ratio
//	concurrency: 4
//	runs:
//	  - name: light
//	    preset: butterfly
//	    config:
//	      pendulum: {m2: 10}
type Scenario struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Concurrency int           `yaml:"concurrency"`
	Runs        []ScenarioRun `yaml:"runs"`
}

type ScenarioRun struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Runs) == 0 {
		return nil, fmt.Errorf("scenario %q has no runs", scenario.Name)
	}
	return &scenario, nil
}

// Jobs resolves every run into a validated configuration.
func (s *Scenario) Jobs() ([]Job, error) {
	jobs := make([]Job, 0, len(s.Runs))
	seen := make(map[string]bool)

	for i, run := range s.Runs {
		name := run.Name
		if name == "" {
			name = fmt.Sprintf("%s-%d", s.Name, i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("run %d: duplicate name %q", i+1, name)
		}
		seen[name] = true

		cfg := config.DefaultConfig()
		if run.Preset != "" {
			if cfg = config.GetPreset(run.Preset); cfg == nil {
				return nil, fmt.Errorf("run %s: unknown preset %q", name, run.Preset)
			}
		}
		if run.Config.Kind != 0 {
			if err := run.Config.Decode(cfg); err != nil {
				return nil, fmt.Errorf("run %s: %w", name, err)
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("run %s: %w", name, err)
		}

		jobs = append(jobs, Job{Name: name, Config: cfg})
	}
	return jobs, nil
}
