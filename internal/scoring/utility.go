package scoring

import (
	"fmt"
	"math"
)

// RawScores maps alternative ID → criterion ID → mean answer value.
type RawScores map[uint]map[uint]float64

// Utilities maps alternative ID → criterion ID → utility in [0,1].
type Utilities map[uint]map[uint]float64

// Bounds holds the observed minimum and maximum raw score of one criterion.
type Bounds struct {
	Min float64
	Max float64
}

// UtilityDetail exposes every intermediate value behind one utility.
type UtilityDetail struct {
	AlternativeID uint
	CriterionID   uint
	Direction     Direction
	Raw           float64
	Min           float64
	Max           float64
	Utility       float64
}

// ComputeRawScores averages the answer values of every (alternative, criterion)
// group. Answers for criteria outside the given set are ignored. Values keep full
// precision; use Rounded for the display view.
func ComputeRawScores(answers []Answer, criteria []Criterion) (RawScores, error) {
	known := make(map[uint]struct{}, len(criteria))
	for _, criterion := range criteria {
		known[criterion.ID] = struct{}{}
	}

	type accumulator struct {
		sum   float64
		count int
	}
	groups := make(map[uint]map[uint]*accumulator)

	for _, answer := range answers {
		if math.IsNaN(answer.Value) || math.IsInf(answer.Value, 0) {
			return nil, fmt.Errorf("alternative %d criterion %d question %d: %w",
				answer.AlternativeID, answer.CriterionID, answer.QuestionID, ErrNonNumericValue)
		}
		if _, ok := known[answer.CriterionID]; !ok {
			continue
		}

		byCriterion, ok := groups[answer.AlternativeID]
		if !ok {
			byCriterion = make(map[uint]*accumulator)
			groups[answer.AlternativeID] = byCriterion
		}
		acc, ok := byCriterion[answer.CriterionID]
		if !ok {
			acc = &accumulator{}
			byCriterion[answer.CriterionID] = acc
		}
		acc.sum += answer.Value
		acc.count++
	}

	raw := make(RawScores, len(groups))
	for alternativeID, byCriterion := range groups {
		row := make(map[uint]float64, len(byCriterion))
		for criterionID, acc := range byCriterion {
			row[criterionID] = acc.sum / float64(acc.count)
		}
		raw[alternativeID] = row
	}

	return raw, nil
}

// Rounded returns a copy rounded to 2 decimals.
func (r RawScores) Rounded() RawScores {
	rounded := make(RawScores, len(r))
	for alternativeID, row := range r {
		copied := make(map[uint]float64, len(row))
		for criterionID, value := range row {
			copied[criterionID] = Round(value, rawPrecision)
		}
		rounded[alternativeID] = copied
	}
	return rounded
}

// CriterionBounds finds min and max raw score per criterion across every
// alternative present in the raw scores.
func CriterionBounds(raw RawScores) map[uint]Bounds {
	bounds := make(map[uint]Bounds)
	for _, row := range raw {
		for criterionID, value := range row {
			current, ok := bounds[criterionID]
			if !ok {
				bounds[criterionID] = Bounds{Min: value, Max: value}
				continue
			}
			if value < current.Min {
				current.Min = value
			}
			if value > current.Max {
				current.Max = value
			}
			bounds[criterionID] = current
		}
	}
	return bounds
}

// ComputeUtilities converts one student's answers into direction-aware min-max
// utilities rounded to 4 decimals. No answers means an empty result.
func ComputeUtilities(answers []Answer, criteria []Criterion) (Utilities, error) {
	raw, err := ComputeRawScores(answers, criteria)
	if err != nil {
		return nil, err
	}
	return utilitiesFromRaw(raw, criteria), nil
}

func utilitiesFromRaw(raw RawScores, criteria []Criterion) Utilities {
	directions := directionIndex(criteria)
	bounds := CriterionBounds(raw)

	utilities := make(Utilities, len(raw))
	for alternativeID, row := range raw {
		values := make(map[uint]float64, len(row))
		for criterionID, value := range row {
			values[criterionID] = Round(utility(value, directions[criterionID], bounds[criterionID]), utilityPrecision)
		}
		utilities[alternativeID] = values
	}
	return utilities
}

// UtilityDetails lists raw, bounds and utility per (alternative, criterion).
// Alternatives follow their first appearance in answers and criteria follow the
// given criteria order.
func UtilityDetails(answers []Answer, criteria []Criterion) ([]UtilityDetail, error) {
	raw, err := ComputeRawScores(answers, criteria)
	if err != nil {
		return nil, err
	}

	bounds := CriterionBounds(raw)
	details := make([]UtilityDetail, 0)
	for _, alternativeID := range alternativeOrder(answers) {
		row, ok := raw[alternativeID]
		if !ok {
			continue
		}
		for _, criterion := range criteria {
			value, ok := row[criterion.ID]
			if !ok {
				continue
			}
			b := bounds[criterion.ID]
			details = append(details, UtilityDetail{
				AlternativeID: alternativeID,
				CriterionID:   criterion.ID,
				Direction:     criterion.Direction,
				Raw:           Round(value, rawPrecision),
				Min:           Round(b.Min, rawPrecision),
				Max:           Round(b.Max, rawPrecision),
				Utility:       Round(utility(value, criterion.Direction, b), utilityPrecision),
			})
		}
	}

	return details, nil
}

func utility(raw float64, direction Direction, bounds Bounds) float64 {
	if bounds.Max == bounds.Min {
		return 1
	}

	span := bounds.Max - bounds.Min
	if direction.IsBenefit() {
		return (raw - bounds.Min) / span
	}
	return (bounds.Max - raw) / span
}

func directionIndex(criteria []Criterion) map[uint]Direction {
	index := make(map[uint]Direction, len(criteria))
	for _, criterion := range criteria {
		index[criterion.ID] = criterion.Direction
	}
	return index
}

func alternativeOrder(answers []Answer) []uint {
	seen := make(map[uint]struct{})
	order := make([]uint, 0)
	for _, answer := range answers {
		if _, ok := seen[answer.AlternativeID]; ok {
			continue
		}
		seen[answer.AlternativeID] = struct{}{}
		order = append(order, answer.AlternativeID)
	}
	return order
}
