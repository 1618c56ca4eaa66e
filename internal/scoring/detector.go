package scoring

import (
	"fmt"
	"regexp"

	"github.com/amonteverde/cv-valorador/internal/rubric"
)

// Detector turns normalized text into a raw occurrence count. It is the
// narrow seam between the matching engine and the scoring logic: everything
// after extraction only ever sees counts, so the regex engine could be
// replaced without touching aggregation.
type Detector interface {
	Count(text string) int
}

// countDetector counts non-overlapping matches. Repeated identical phrases
// count multiple times.
type countDetector struct {
	re *regexp.Regexp
}

func (d countDetector) Count(text string) int {
	return len(d.re.FindAllStringIndex(text, -1))
}

// presenceDetector reports 1 when the pattern matches at least once,
// regardless of repetition.
type presenceDetector struct {
	re *regexp.Regexp
}

func (d presenceDetector) Count(text string) int {
	if d.re.MatchString(text) {
		return 1
	}
	return 0
}

// thresholdDetector emits a fixed bonus count when the number of distinct
// sub-patterns that match reaches the threshold, and 0 otherwise.
type thresholdDetector struct {
	res       []*regexp.Regexp
	threshold int
	bonus     int
}

func (d thresholdDetector) Count(text string) int {
	matched := 0
	for _, re := range d.res {
		if re.MatchString(text) {
			matched++
		}
	}
	if matched >= d.threshold {
		return d.bonus
	}
	return 0
}

// newDetector compiles the detector for one rubric item. Patterns are
// compiled case-insensitive even though normalized text is lowercase, so a
// detector also behaves correctly on raw text.
func newDetector(item rubric.Item) (Detector, error) {
	switch item.KindOf() {
	case rubric.KindCount, rubric.KindPresence:
		re, err := regexp.Compile("(?i)" + item.Pattern)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", item.Name, err)
		}
		if item.KindOf() == rubric.KindPresence {
			return presenceDetector{re: re}, nil
		}
		return countDetector{re: re}, nil
	case rubric.KindThreshold:
		res := make([]*regexp.Regexp, 0, len(item.SubPatterns))
		for _, p := range item.SubPatterns {
			re, err := regexp.Compile("(?i)" + p)
			if err != nil {
				return nil, fmt.Errorf("item %s: sub-pattern %q: %w", item.Name, p, err)
			}
			res = append(res, re)
		}
		return thresholdDetector{res: res, threshold: item.Threshold, bonus: item.Bonus}, nil
	default:
		return nil, fmt.Errorf("item %s: unknown kind %q", item.Name, item.Kind)
	}
}
