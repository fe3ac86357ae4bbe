// Package scoring implements the SAW (simple additive weighting) pipeline used to
// recommend study programs: criteria weight normalization, per-criterion utility
// transformation, weighted aggregation and ranking.
//
// Every function in this package is pure. Callers load a snapshot of criteria,
// alternatives and scored answers for one student and pass it in; nothing here
// performs I/O or keeps state between calls.
package scoring

import (
	"errors"
	"math"
	"strings"
)

// ErrNonNumericValue reports an answer whose numeric value is NaN or infinite.
var ErrNonNumericValue = errors.New("answer value is not a finite number")

// Direction tells whether higher raw values are better (benefit) or worse (cost).
type Direction string

const (
	// DirectionBenefit marks criteria where a higher raw value is preferred.
	DirectionBenefit Direction = "Benefit"
	// DirectionCost marks criteria where a lower raw value is preferred.
	DirectionCost Direction = "Cost"
)

// ParseDirection maps a case-insensitive label onto a Direction.
func ParseDirection(value string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "benefit":
		return DirectionBenefit, true
	case "cost":
		return DirectionCost, true
	default:
		return "", false
	}
}

// IsBenefit reports whether the direction is benefit. Anything else is scored as cost.
func (d Direction) IsBenefit() bool {
	return strings.EqualFold(string(d), string(DirectionBenefit))
}

// Criterion is the scoring view of a configured criterion.
type Criterion struct {
	ID        uint
	Code      string
	Name      string
	Direction Direction
	Weight    float64
}

// Alternative is the scoring view of a study program.
type Alternative struct {
	ID   uint
	Code string
	Name string
}

// Answer is one scored questionnaire answer of a single student. Value is the
// numeric value of the chosen sub-criterion.
type Answer struct {
	AlternativeID  uint
	CriterionID    uint
	QuestionID     uint
	SubCriterionID uint
	Value          float64
}

// RoundingMode selects where normalized weights are rounded.
type RoundingMode int

const (
	// RoundEarly rounds normalized weights to 4 decimals before they are multiplied
	// into final scores. Stored final scores of the previous system were produced this way.
	RoundEarly RoundingMode = iota
	// RoundLate keeps full-precision weights for final-score summation and rounds
	// only what is displayed.
	RoundLate
)

// ParseRoundingMode maps "early"/"late" onto a RoundingMode, defaulting to RoundEarly.
func ParseRoundingMode(value string) RoundingMode {
	if strings.EqualFold(strings.TrimSpace(value), "late") {
		return RoundLate
	}
	return RoundEarly
}

// String returns the configuration label of the mode.
func (m RoundingMode) String() string {
	if m == RoundLate {
		return "late"
	}
	return "early"
}

// Option tunes pipeline behaviour.
type Option func(*options)

type options struct {
	rounding RoundingMode
}

// WithRounding selects the weight rounding mode.
func WithRounding(mode RoundingMode) Option {
	return func(o *options) { o.rounding = mode }
}

func buildOptions(opts []Option) options {
	cfg := options{rounding: RoundEarly}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

const (
	weightPrecision  = 4
	utilityPrecision = 4
	scorePrecision   = 4
	rawPrecision     = 2
)

// Round rounds half away from zero to the given number of decimals. Non-finite
// input yields 0.
func Round(value float64, places int) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}
