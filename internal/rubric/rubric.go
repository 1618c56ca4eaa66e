package rubric

// Detector kinds for rubric items.
const (
	// KindCount scores each non-overlapping match of the pattern.
	KindCount = "count"
	// KindPresence scores 1 if the pattern matches at all, 0 otherwise.
	KindPresence = "presence"
	// KindThreshold emits a fixed bonus when enough distinct sub-patterns match.
	KindThreshold = "threshold"
)

// Config is the full rubric rule set: sections with their scored items, the
// category table, and optional calibration coefficients. It is loaded once at
// startup, validated, and treated as immutable for the process lifetime.
type Config struct {
	Version     string       `yaml:"version" json:"version"`
	GlobalMax   int          `yaml:"global_max" json:"global_max"`
	Sections    []Section    `yaml:"sections" json:"sections"`
	Categories  []Category   `yaml:"categories" json:"categories"`
	Calibration *Calibration `yaml:"calibration,omitempty" json:"calibration,omitempty"`
}

// Section groups scored items under a shared point cap.
type Section struct {
	Name   string  `yaml:"name" json:"name"`
	Cap    int     `yaml:"cap" json:"cap"`
	Groups []Group `yaml:"groups" json:"groups"`
}

// Group is an intermediate aggregation level within a section. A cap of 0
// means the group is uncapped and only the section cap applies.
type Group struct {
	Name  string `yaml:"name" json:"name"`
	Cap   int    `yaml:"cap,omitempty" json:"cap,omitempty"`
	Items []Item `yaml:"items" json:"items"`
}

// Item is the smallest scored unit: one detection pattern, a unit weight and
// a point cap. CountCap limits the raw occurrence count before weighting
// (0 = unlimited). Subtract names a stricter item whose count is deducted
// from this item's count to avoid double-crediting the same mention.
type Item struct {
	Name        string   `yaml:"name" json:"name"`
	Kind        string   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Pattern     string   `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	SubPatterns []string `yaml:"sub_patterns,omitempty" json:"sub_patterns,omitempty"`
	Threshold   int      `yaml:"threshold,omitempty" json:"threshold,omitempty"`
	Bonus       int      `yaml:"bonus,omitempty" json:"bonus,omitempty"`
	Weight      int      `yaml:"weight" json:"weight"`
	Cap         int      `yaml:"cap" json:"cap"`
	CountCap    int      `yaml:"count_cap,omitempty" json:"count_cap,omitempty"`
	Subtract    string   `yaml:"subtract,omitempty" json:"subtract,omitempty"`
}

// Category is one row of the ordered category table. Rows are listed highest
// range first; totals above the first row's Max still resolve to it.
type Category struct {
	Label string `yaml:"label" json:"label"`
	Min   int    `yaml:"min" json:"min"`
	Max   int    `yaml:"max" json:"max"`
}

// Calibration holds the affine recalibration coefficients: one weight per
// section plus an intercept.
type Calibration struct {
	Intercept float64            `yaml:"intercept" json:"intercept"`
	Weights   map[string]float64 `yaml:"weights" json:"weights"`
}

// KindOf returns the item's detector kind, defaulting to KindCount.
func (i Item) KindOf() string {
	if i.Kind == "" {
		return KindCount
	}
	return i.Kind
}

// Items returns all items of the section in declaration order.
func (s Section) Items() []Item {
	var items []Item
	for _, g := range s.Groups {
		items = append(items, g.Items...)
	}
	return items
}

// Section returns the named section, or nil if it does not exist.
func (c *Config) Section(name string) *Section {
	for i := range c.Sections {
		if c.Sections[i].Name == name {
			return &c.Sections[i]
		}
	}
	return nil
}

// Item returns the named item from any section, or nil if it does not exist.
func (c *Config) Item(name string) *Item {
	for si := range c.Sections {
		for gi := range c.Sections[si].Groups {
			for ii := range c.Sections[si].Groups[gi].Items {
				if c.Sections[si].Groups[gi].Items[ii].Name == name {
					return &c.Sections[si].Groups[gi].Items[ii]
				}
			}
		}
	}
	return nil
}

// ItemNames returns the names of all items in declaration order.
func (c *Config) ItemNames() []string {
	var names []string
	for _, s := range c.Sections {
		for _, item := range s.Items() {
			names = append(names, item.Name)
		}
	}
	return names
}

// MaxAttainable returns the sum of all section caps, i.e. the highest base
// total the scorer can produce.
func (c *Config) MaxAttainable() int {
	total := 0
	for _, s := range c.Sections {
		total += s.Cap
	}
	return total
}

// TopCategory returns the first (highest) row of the category table.
func (c *Config) TopCategory() Category {
	return c.Categories[0]
}
