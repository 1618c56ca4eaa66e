package scoring

import (
	"fmt"

	"github.com/amonteverde/cv-valorador/internal/rubric"
)

// Categorize maps a clamped total to its category label via ordered range
// lookup. The table is highest-first; a total above the top category's
// nominal upper bound still resolves to the top category. A total that no
// range contains means the table is broken, which is a configuration fault,
// never a reason to fall back to a default label.
func Categorize(total int, cfg *rubric.Config) (string, error) {
	if len(cfg.Categories) == 0 {
		return "", &rubric.ConfigError{
			Field: "categories",
			Msg:   "category table is empty",
		}
	}
	top := cfg.TopCategory()
	if total > top.Max {
		return top.Label, nil
	}
	for _, cat := range cfg.Categories {
		if cat.Min <= total && total <= cat.Max {
			return cat.Label, nil
		}
	}
	return "", &rubric.ConfigError{
		Field: "categories",
		Msg:   fmt.Sprintf("no category range contains total %d", total),
	}
}
