package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/lowir/internal/compiler"
)

// Scenario is one conformance case: a unit, an optional sub-range and the
// expected validation outcome.
type Scenario struct {
	// Name uniquely identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains which invariant the scenario exercises.
	Description string `yaml:"description"`

	// Unit is the path of a .cue/.yaml unit file, relative to the scenario
	// file once loaded. Exactly one of Unit and IR is set.
	Unit string `yaml:"unit,omitempty"`

	// UnitName selects one unit when the file declares several.
	UnitName string `yaml:"unit_name,omitempty"`

	// IR is an inline unit document.
	IR *compiler.UnitDoc `yaml:"ir,omitempty"`

	// Range limits the per-expression checks to [begin, end). Nil means the
	// whole unit.
	Range *RangeSpec `yaml:"range,omitempty"`

	// FailFast stops validation at the first diagnostic.
	FailFast bool `yaml:"fail_fast,omitempty"`

	Expect Expectation `yaml:"expect"`
}

// RangeSpec is a half-open expression index range.
type RangeSpec struct {
	Begin int `yaml:"begin"`
	End   int `yaml:"end"`
}

// Expectation is matched against the validation result. Codes, LoopIDs and
// ClusterIDs are subset matches; Absent lists codes that must not appear.
type Expectation struct {
	Valid      bool     `yaml:"valid"`
	Codes      []string `yaml:"codes,omitempty"`
	Absent     []string `yaml:"absent,omitempty"`
	LoopIDs    []int    `yaml:"loop_ids,omitempty"`
	ClusterIDs []int    `yaml:"cluster_ids,omitempty"`
}

var codePattern = regexp.MustCompile(`^E[0-9]{3}$`)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected and a relative unit path is resolved against the scenario's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if s.Unit != "" && !filepath.IsAbs(s.Unit) {
		s.Unit = filepath.Join(filepath.Dir(path), s.Unit)
	}

	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios loads every .yaml/.yml scenario directly inside dir, sorted
// by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read scenarios directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	seen := make(map[string]string)
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("scenario name %q used by both %s and %s", s.Name, prev, name)
		}
		seen[s.Name] = name
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

	switch {
	case s.Unit == "" && s.IR == nil:
		return fmt.Errorf("one of unit or ir is required")
	case s.Unit != "" && s.IR != nil:
		return fmt.Errorf("unit and ir are mutually exclusive")
	}
	if s.Unit != "" {
		if _, err := os.Stat(s.Unit); os.IsNotExist(err) {
			return fmt.Errorf("unit file not found: %s", s.Unit)
		}
	}
	if s.IR != nil && s.UnitName != "" {
		return fmt.Errorf("unit_name only applies to unit files")
	}

	if r := s.Range; r != nil && (r.Begin < 0 || r.End < r.Begin) {
		return fmt.Errorf("range [%d, %d) is not a valid range", r.Begin, r.End)
	}

	if s.Expect.Valid && len(s.Expect.Codes) > 0 {
		return fmt.Errorf("expect: a valid unit cannot expect codes")
	}
	for field, codes := range map[string][]string{"codes": s.Expect.Codes, "absent": s.Expect.Absent} {
		for i, c := range codes {
			if !codePattern.MatchString(c) {
				return fmt.Errorf("expect.%s[%d]: %q is not a diagnostic code", field, i, c)
			}
		}
	}
	return nil
}
