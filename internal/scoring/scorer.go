package scoring

import (
	"errors"
	"math"

	"github.com/amonteverde/cv-valorador/internal/models"
	"github.com/amonteverde/cv-valorador/internal/rubric"
)

// ErrEmptyDocument is returned when the supplied document text is empty or
// whitespace-only. Callers decide whether that means a zero result or a
// rejected upload; the scorer never guesses.
var ErrEmptyDocument = errors.New("document text is empty")

// Scorer evaluates extracted CV text against a validated rubric. Construction
// compiles the detector catalogue once; a Scorer is immutable afterwards and
// safe for concurrent evaluations.
type Scorer struct {
	cfg       *rubric.Config
	extractor *Extractor
}

// NewScorer creates a scorer for the given rubric configuration.
func NewScorer(cfg *rubric.Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg)
	if err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg, extractor: extractor}, nil
}

// Rubric returns the configuration the scorer was built with.
func (s *Scorer) Rubric() *rubric.Config {
	return s.cfg
}

// Evaluate runs the full pipeline on one document: normalize, extract signal
// counts, score items and sections, aggregate the total (optionally through
// the calibration coefficients) and resolve the category.
func (s *Scorer) Evaluate(documentText string, calibrated bool) (*models.ScoreResult, error) {
	normalized := Normalize(documentText)
	if normalized == "" {
		return nil, ErrEmptyDocument
	}

	counts := s.extractor.Counts(normalized)

	subtotals := make(map[string]int, len(s.cfg.Sections))
	baseTotal := 0
	for _, section := range s.cfg.Sections {
		subtotal := sectionSubtotal(section, counts)
		subtotals[section.Name] = subtotal
		baseTotal += subtotal
	}

	var total int
	if calibrated {
		if s.cfg.Calibration == nil {
			return nil, &rubric.ConfigError{
				Field: "calibration",
				Msg:   "calibrated scoring requested but the rubric has no coefficients",
			}
		}
		total = s.calibratedTotal(subtotals)
	} else {
		total = clampTotal(baseTotal, s.cfg.GlobalMax)
	}

	category, err := Categorize(total, s.cfg)
	if err != nil {
		return nil, err
	}

	return &models.ScoreResult{
		SectionSubtotals: subtotals,
		BaseTotal:        baseTotal,
		Total:            total,
		Calibrated:       calibrated,
		Category:         category,
		SignalCounts:     counts,
	}, nil
}

// Evaluate scores a single document with a one-shot scorer. Batch callers
// should build one Scorer and reuse it.
func Evaluate(documentText string, cfg *rubric.Config, calibrated bool) (*models.ScoreResult, error) {
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	return scorer.Evaluate(documentText, calibrated)
}

// ItemPoints converts a raw count into points: min(count x weight, cap).
// Monotonic non-decreasing in count, saturating at the cap. A cap of 0
// disables the item without removing it from the rubric.
func ItemPoints(count, weight, pointCap int) int {
	points := count * weight
	if points > pointCap {
		return pointCap
	}
	return points
}

// groupSubtotal sums item points within a group; a group cap of 0 means
// uncapped.
func groupSubtotal(g rubric.Group, counts models.SignalCounts) int {
	sum := 0
	for _, item := range g.Items {
		sum += ItemPoints(counts[item.Name], item.Weight, item.Cap)
	}
	if g.Cap > 0 && sum > g.Cap {
		return g.Cap
	}
	return sum
}

// sectionSubtotal sums group subtotals and applies the section cap.
func sectionSubtotal(s rubric.Section, counts models.SignalCounts) int {
	sum := 0
	for _, g := range s.Groups {
		sum += groupSubtotal(g, counts)
	}
	if sum > s.Cap {
		return s.Cap
	}
	return sum
}

// calibratedTotal applies the affine recalibration: intercept plus one
// weight per section subtotal, summed in section declaration order so the
// floating point result is reproducible run to run. Rounding is half away
// from zero (math.Round), then the result is clamped to [0, GlobalMax].
func (s *Scorer) calibratedTotal(subtotals map[string]int) int {
	t := s.cfg.Calibration.Intercept
	for _, section := range s.cfg.Sections {
		t += s.cfg.Calibration.Weights[section.Name] * float64(subtotals[section.Name])
	}
	return clampTotal(int(math.Round(t)), s.cfg.GlobalMax)
}

func clampTotal(total, globalMax int) int {
	if total < 0 {
		return 0
	}
	if total > globalMax {
		return globalMax
	}
	return total
}
