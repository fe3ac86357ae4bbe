package scoring

import "math"

// Band is a named sub-criterion value that an average can be matched against.
type Band struct {
	ID    uint
	Name  string
	Value float64
}

// NearestBand returns the band whose value is closest to the given value. Ties go
// to the lower value. It reports false when there are no bands.
func NearestBand(value float64, bands []Band) (Band, bool) {
	if len(bands) == 0 {
		return Band{}, false
	}

	best := bands[0]
	bestDistance := math.Abs(best.Value - value)
	for _, band := range bands[1:] {
		distance := math.Abs(band.Value - value)
		if distance < bestDistance || (distance == bestDistance && band.Value < best.Value) {
			best = band
			bestDistance = distance
		}
	}

	return best, true
}
