package rubric

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultRubric []byte

// Default returns the built-in rubric policy: the institutional researcher
// categorization table with its five sections and empirical calibration
// coefficients. Each call returns a fresh copy.
func Default() *Config {
	cfg, err := Parse(defaultRubric)
	if err != nil {
		// The embedded rubric is validated by the package tests; reaching
		// this means the binary itself is broken.
		panic("rubric: embedded default rubric is invalid: " + err.Error())
	}
	return cfg
}

// Load reads and validates a rubric file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rubric file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rubric file %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals a YAML rubric and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("failed to parse YAML: %v", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants the scoring engine relies on:
// every pattern compiles, caps and weights are non-negative, overlap
// references resolve, the category table is contiguous and exhaustive, and
// calibration coefficients (when present) cover every section exactly.
func (c *Config) Validate() error {
	if c.GlobalMax <= 0 {
		return configErrorf("global_max", "must be positive, got %d", c.GlobalMax)
	}
	if len(c.Sections) == 0 {
		return configErrorf("sections", "at least one section is required")
	}

	seenSections := make(map[string]bool)
	seenItems := make(map[string]bool)
	for _, s := range c.Sections {
		if s.Name == "" {
			return configErrorf("sections", "section name must not be empty")
		}
		if seenSections[s.Name] {
			return configErrorf("sections", "duplicate section %q", s.Name)
		}
		seenSections[s.Name] = true
		if s.Cap < 0 {
			return configErrorf(s.Name, "section cap must be non-negative, got %d", s.Cap)
		}
		if len(s.Groups) == 0 {
			return configErrorf(s.Name, "section has no groups")
		}
		for _, g := range s.Groups {
			if g.Cap < 0 {
				return configErrorf(s.Name+"."+g.Name, "group cap must be non-negative, got %d", g.Cap)
			}
			for _, item := range g.Items {
				if err := validateItem(item, seenItems); err != nil {
					return err
				}
				seenItems[item.Name] = true
			}
		}
	}

	// Overlap references must point at an existing item that does not itself
	// subtract another, so counts resolve in two passes.
	for _, s := range c.Sections {
		for _, item := range s.Items() {
			if item.Subtract == "" {
				continue
			}
			if item.Subtract == item.Name {
				return configErrorf(item.Name, "item cannot subtract itself")
			}
			target := c.Item(item.Subtract)
			if target == nil {
				return configErrorf(item.Name, "subtract references unknown item %q", item.Subtract)
			}
			if target.Subtract != "" {
				return configErrorf(item.Name, "subtract target %q has its own subtraction; chains are not supported", item.Subtract)
			}
		}
	}

	if err := c.validateCategories(); err != nil {
		return err
	}
	return c.validateCalibration()
}

func validateItem(item Item, seen map[string]bool) error {
	if item.Name == "" {
		return configErrorf("items", "item name must not be empty")
	}
	if seen[item.Name] {
		return configErrorf("items", "duplicate item %q", item.Name)
	}
	if item.Weight < 0 {
		return configErrorf(item.Name, "weight must be non-negative, got %d", item.Weight)
	}
	if item.Cap < 0 {
		return configErrorf(item.Name, "cap must be non-negative, got %d", item.Cap)
	}
	if item.CountCap < 0 {
		return configErrorf(item.Name, "count_cap must be non-negative, got %d", item.CountCap)
	}

	switch item.KindOf() {
	case KindCount, KindPresence:
		if item.Pattern == "" {
			return configErrorf(item.Name, "pattern is required for %s items", item.KindOf())
		}
		if _, err := regexp.Compile("(?i)" + item.Pattern); err != nil {
			return configErrorf(item.Name, "invalid pattern: %v", err)
		}
	case KindThreshold:
		if len(item.SubPatterns) == 0 {
			return configErrorf(item.Name, "threshold items require sub_patterns")
		}
		for _, p := range item.SubPatterns {
			if _, err := regexp.Compile("(?i)" + p); err != nil {
				return configErrorf(item.Name, "invalid sub-pattern %q: %v", p, err)
			}
		}
		if item.Threshold < 1 {
			return configErrorf(item.Name, "threshold must be at least 1, got %d", item.Threshold)
		}
		if item.Bonus < 1 {
			return configErrorf(item.Name, "bonus must be at least 1, got %d", item.Bonus)
		}
	default:
		return configErrorf(item.Name, "unknown item kind %q", item.Kind)
	}
	return nil
}

// validateCategories enforces a highest-first, contiguous table that covers
// [0, top.Max] with no gaps, so every total the scorer can produce resolves
// to exactly one label.
func (c *Config) validateCategories() error {
	if len(c.Categories) == 0 {
		return configErrorf("categories", "at least one category is required")
	}
	for _, cat := range c.Categories {
		if cat.Label == "" {
			return configErrorf("categories", "category label must not be empty")
		}
		if cat.Min < 0 || cat.Max < cat.Min {
			return configErrorf(cat.Label, "invalid range [%d, %d]", cat.Min, cat.Max)
		}
	}
	top := c.Categories[0]
	if top.Max > c.GlobalMax {
		return configErrorf(top.Label, "range exceeds global_max %d", c.GlobalMax)
	}
	for i := 0; i < len(c.Categories)-1; i++ {
		upper, lower := c.Categories[i], c.Categories[i+1]
		if lower.Max != upper.Min-1 {
			return configErrorf("categories", "ranges not contiguous between %q and %q", upper.Label, lower.Label)
		}
	}
	if last := c.Categories[len(c.Categories)-1]; last.Min != 0 {
		return configErrorf("categories", "lowest category must start at 0, got %d", last.Min)
	}
	return nil
}

func (c *Config) validateCalibration() error {
	if c.Calibration == nil {
		return nil
	}
	for _, s := range c.Sections {
		if _, ok := c.Calibration.Weights[s.Name]; !ok {
			return configErrorf("calibration", "missing weight for section %q", s.Name)
		}
	}
	for name := range c.Calibration.Weights {
		if c.Section(name) == nil {
			return configErrorf("calibration", "weight for unknown section %q", name)
		}
	}
	return nil
}
