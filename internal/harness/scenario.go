package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/storepilot/internal/prompt"
)

// DefaultMerchant is used when a scenario names none.
const DefaultMerchant = "m1"

// Scenario is one end-to-end editing session.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Merchant    string      `yaml:"merchant,omitempty"`
	Seed        Seed        `yaml:"seed,omitempty"`
	Turns       []TurnStep  `yaml:"turns"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// Seed is the store content written before the first turn.
type Seed struct {
	Brand    SeedBrand      `yaml:"brand,omitempty"`
	Products []SeedProduct  `yaml:"products,omitempty"`
	Hero     map[string]any `yaml:"hero,omitempty"`
	Sections []SeedSection  `yaml:"sections,omitempty"`
}

// SeedBrand sets brand fields. Name defaults to the merchant id.
type SeedBrand struct {
	Name     string `yaml:"name,omitempty"`
	Category string `yaml:"category,omitempty"`
	Tone     string `yaml:"tone,omitempty"`
	Tagline  string `yaml:"tagline,omitempty"`
}

// SeedProduct is a stored product. IsActive defaults to true.
type SeedProduct struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Price       int64    `yaml:"price,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Inventory   int64    `yaml:"inventory,omitempty"`
	Images      []any    `yaml:"images,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	IsActive    *bool    `yaml:"is_active,omitempty"`
}

// SeedSection is a stored homepage section with internal settings. Zone
// defaults to the catalog zone of the type; Visible defaults to true.
type SeedSection struct {
	ID       string         `yaml:"id"`
	Type     string         `yaml:"type"`
	Zone     string         `yaml:"zone,omitempty"`
	Position int            `yaml:"position"`
	Visible  *bool          `yaml:"visible,omitempty"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// TurnStep is one instruction and the scripted model reply to it.
type TurnStep struct {
	Instruction string           `yaml:"instruction"`
	Selection   prompt.Selection `yaml:"selection,omitempty"`
	Reply       string           `yaml:"reply,omitempty"`
	Actions     []any            `yaml:"actions,omitempty"`
	Expect      *TurnExpect      `yaml:"expect,omitempty"`
}

// TurnExpect checks a turn's report. Unset fields are not checked.
type TurnExpect struct {
	Success       *bool  `yaml:"success,omitempty"`
	Mutations     *int   `yaml:"mutations,omitempty"`
	ErrorContains string `yaml:"error_contains,omitempty"`
	Explanation   string `yaml:"explanation,omitempty"`
}

// LoadScenario reads and validates a scenario file. Unknown YAML fields
// are rejected.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Merchant == "" {
		scenario.Merchant = DefaultMerchant
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml and *.yml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Turns) == 0 {
		return fmt.Errorf("turns list is required and must be non-empty")
	}

	for i, p := range s.Seed.Products {
		if p.ID == "" {
			return fmt.Errorf("seed.products[%d]: id is required", i)
		}
	}
	for i, sec := range s.Seed.Sections {
		if sec.ID == "" || sec.Type == "" {
			return fmt.Errorf("seed.sections[%d]: id and type are required", i)
		}
	}

	for i, step := range s.Turns {
		if step.Instruction == "" {
			return fmt.Errorf("turns[%d]: instruction is required", i)
		}
		if (step.Reply == "") == (step.Actions == nil) {
			return fmt.Errorf("turns[%d]: exactly one of reply or actions is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a); err != nil {
			return err
		}
	}
	return nil
}
