package rubric

import "fmt"

// ConfigError reports a malformed rubric: an unparseable pattern, a negative
// cap, a broken category table, or calibrated scoring requested without
// coefficients. It always indicates a setup bug, not a runtime data problem.
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return "rubric: " + e.Msg
	}
	return fmt.Sprintf("rubric: %s: %s", e.Field, e.Msg)
}

func configErrorf(field, format string, args ...any) *ConfigError {
	return &ConfigError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
