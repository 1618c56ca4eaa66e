package scoring

import (
	"github.com/amonteverde/cv-valorador/internal/models"
	"github.com/amonteverde/cv-valorador/internal/rubric"
)

type extractorItem struct {
	item rubric.Item
	det  Detector
}

// Extractor applies the rubric's full detector catalogue to normalized text
// and produces the signal count set. It is built once per rubric and safe
// for concurrent use: extraction holds no per-document state.
type Extractor struct {
	items []extractorItem
}

// NewExtractor compiles a detector for every item of the rubric.
func NewExtractor(cfg *rubric.Config) (*Extractor, error) {
	var items []extractorItem
	for _, section := range cfg.Sections {
		for _, item := range section.Items() {
			det, err := newDetector(item)
			if err != nil {
				return nil, err
			}
			items = append(items, extractorItem{item: item, det: det})
		}
	}
	return &Extractor{items: items}, nil
}

// Counts runs every detector over the normalized text and returns the
// mapping from item name to recorded occurrence count.
//
// Two passes: the first records each item's own count, clamped to its raw
// count ceiling. The second resolves overlap pairs: a broad item's raw count
// is reduced by the recorded count of its stricter sibling (floored at zero)
// before the ceiling applies, so one mention is never credited twice.
func (e *Extractor) Counts(text string) models.SignalCounts {
	raw := make(map[string]int, len(e.items))
	counts := make(models.SignalCounts, len(e.items))

	for _, it := range e.items {
		c := it.det.Count(text)
		raw[it.item.Name] = c
		counts[it.item.Name] = clampCount(c, it.item.CountCap)
	}

	for _, it := range e.items {
		if it.item.Subtract == "" {
			continue
		}
		adjusted := raw[it.item.Name] - counts[it.item.Subtract]
		if adjusted < 0 {
			adjusted = 0
		}
		counts[it.item.Name] = clampCount(adjusted, it.item.CountCap)
	}

	return counts
}

// clampCount applies a raw count ceiling; 0 means unlimited.
func clampCount(c, ceiling int) int {
	if ceiling > 0 && c > ceiling {
		return ceiling
	}
	return c
}
