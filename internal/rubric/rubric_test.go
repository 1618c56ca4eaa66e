package rubric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 2000, cfg.GlobalMax)
	assert.Len(t, cfg.Sections, 5)
	assert.Equal(t, 2000, cfg.MaxAttainable())
	require.NotNil(t, cfg.Calibration)
	assert.InDelta(t, -401.07, cfg.Calibration.Intercept, 0.0001)
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	b := Default()

	a.Sections[0].Cap = 1
	assert.Equal(t, 450, b.Sections[0].Cap)
}

func TestDefault_SectionCaps(t *testing.T) {
	cfg := Default()

	want := map[string]int{
		"formacion":    450,
		"cargos":       350,
		"cyt":          500,
		"producciones": 500,
		"otros":        200,
	}
	for name, cap := range want {
		s := cfg.Section(name)
		require.NotNil(t, s, "section %s", name)
		assert.Equal(t, cap, s.Cap, "section %s", name)
	}
}

func TestDefault_OverlapPairResolves(t *testing.T) {
	cfg := Default()

	broad := cfg.Item("articulos_sin_referato")
	require.NotNil(t, broad)
	assert.Equal(t, "articulos_referato", broad.Subtract)
	require.NotNil(t, cfg.Item(broad.Subtract))
}

func TestDefault_ItemNamesUniqueAndOrdered(t *testing.T) {
	cfg := Default()

	names := cfg.ItemNames()
	seen := make(map[string]bool)
	for _, n := range names {
		assert.False(t, seen[n], "duplicate item %s", n)
		seen[n] = true
	}
	// First item of the first section, last item of the last section.
	assert.Equal(t, "doctorado", names[0])
	assert.Equal(t, "menciones", names[len(names)-1])
}

func validConfig() *Config {
	return &Config{
		GlobalMax: 100,
		Sections: []Section{
			{
				Name: "alpha",
				Cap:  60,
				Groups: []Group{{
					Name: "alpha",
					Items: []Item{
						{Name: "a1", Pattern: "foo", Weight: 10, Cap: 40},
						{Name: "a2", Kind: KindPresence, Pattern: "bar", Weight: 20, Cap: 20},
					},
				}},
			},
			{
				Name: "beta",
				Cap:  40,
				Groups: []Group{{
					Name: "beta",
					Items: []Item{
						{Name: "b1", Pattern: "baz", Weight: 5, Cap: 40},
					},
				}},
			},
		},
		Categories: []Category{
			{Label: "High", Min: 50, Max: 100},
			{Label: "Low", Min: 0, Max: 49},
		},
	}
}

func TestValidate_AcceptsMinimalConfig(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero global max", func(c *Config) { c.GlobalMax = 0 }},
		{"no sections", func(c *Config) { c.Sections = nil }},
		{"negative section cap", func(c *Config) { c.Sections[0].Cap = -1 }},
		{"duplicate section", func(c *Config) { c.Sections[1].Name = "alpha" }},
		{"negative group cap", func(c *Config) { c.Sections[0].Groups[0].Cap = -5 }},
		{"empty item name", func(c *Config) { c.Sections[0].Groups[0].Items[0].Name = "" }},
		{"duplicate item", func(c *Config) { c.Sections[1].Groups[0].Items[0].Name = "a1" }},
		{"negative weight", func(c *Config) { c.Sections[0].Groups[0].Items[0].Weight = -1 }},
		{"negative cap", func(c *Config) { c.Sections[0].Groups[0].Items[0].Cap = -1 }},
		{"bad pattern", func(c *Config) { c.Sections[0].Groups[0].Items[0].Pattern = "(" }},
		{"missing pattern", func(c *Config) { c.Sections[0].Groups[0].Items[0].Pattern = "" }},
		{"unknown kind", func(c *Config) { c.Sections[0].Groups[0].Items[0].Kind = "fuzzy" }},
		{"subtract self", func(c *Config) { c.Sections[0].Groups[0].Items[0].Subtract = "a1" }},
		{"subtract unknown", func(c *Config) { c.Sections[0].Groups[0].Items[0].Subtract = "nope" }},
		{"no categories", func(c *Config) { c.Categories = nil }},
		{"category gap", func(c *Config) { c.Categories[1].Max = 40 }},
		{"category floor above zero", func(c *Config) { c.Categories[1].Min = 1 }},
		{"inverted range", func(c *Config) { c.Categories[0].Max = 10 }},
		{"top range above global max", func(c *Config) { c.Categories[0].Max = 101 }},
		{"calibration missing section", func(c *Config) {
			c.Calibration = &Calibration{Weights: map[string]float64{"alpha": 1}}
		}},
		{"calibration unknown section", func(c *Config) {
			c.Calibration = &Calibration{Weights: map[string]float64{"alpha": 1, "beta": 1, "gamma": 1}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cerr *ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestValidate_ThresholdItems(t *testing.T) {
	base := func() *Config {
		cfg := validConfig()
		cfg.Sections[0].Groups[0].Items[0] = Item{
			Name:        "a1",
			Kind:        KindThreshold,
			SubPatterns: []string{"x", "y"},
			Threshold:   2,
			Bonus:       30,
			Weight:      1,
			Cap:         30,
		}
		return cfg
	}

	require.NoError(t, base().Validate())

	t.Run("no sub-patterns", func(t *testing.T) {
		cfg := base()
		cfg.Sections[0].Groups[0].Items[0].SubPatterns = nil
		assert.Error(t, cfg.Validate())
	})
	t.Run("bad sub-pattern", func(t *testing.T) {
		cfg := base()
		cfg.Sections[0].Groups[0].Items[0].SubPatterns = []string{"("}
		assert.Error(t, cfg.Validate())
	})
	t.Run("zero threshold", func(t *testing.T) {
		cfg := base()
		cfg.Sections[0].Groups[0].Items[0].Threshold = 0
		assert.Error(t, cfg.Validate())
	})
	t.Run("zero bonus", func(t *testing.T) {
		cfg := base()
		cfg.Sections[0].Groups[0].Items[0].Bonus = 0
		assert.Error(t, cfg.Validate())
	})
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("sections: [not, valid, rubric"))
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestConfigError_Message(t *testing.T) {
	err := &ConfigError{Field: "doctorado", Msg: "invalid pattern"}
	assert.Equal(t, "rubric: doctorado: invalid pattern", err.Error())

	err = &ConfigError{Msg: "no sections"}
	assert.Equal(t, "rubric: no sections", err.Error())
}
