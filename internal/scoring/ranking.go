package scoring

import (
	"sort"
	"strings"
)

// Entry is one ranked alternative.
type Entry struct {
	Rank          int
	AlternativeID uint
	Code          string
	Name          string
	Score         float64
}

// Stats summarises the final scores of a ranking.
type Stats struct {
	Count int
	Max   float64
	Min   float64
	Mean  float64
}

// Ranking is an immutable, ordered list of ranked alternatives.
type Ranking struct {
	entries []Entry
}

// RankAlternatives orders scored alternatives by score descending, breaking ties
// by alternative code ascending and then by ID. Scores of alternatives missing
// from the given set are dropped.
func RankAlternatives(scores Scores, alternatives []Alternative) Ranking {
	entries := make([]Entry, 0, len(scores))
	for _, alternative := range alternatives {
		score, ok := scores[alternative.ID]
		if !ok {
			continue
		}
		entries = append(entries, Entry{
			AlternativeID: alternative.ID,
			Code:          alternative.Code,
			Name:          alternative.Name,
			Score:         score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		if cmp := strings.Compare(entries[i].Code, entries[j].Code); cmp != 0 {
			return cmp < 0
		}
		return entries[i].AlternativeID < entries[j].AlternativeID
	})

	for idx := range entries {
		entries[idx].Rank = idx + 1
	}

	return Ranking{entries: entries}
}

// Entries returns a copy of the ranked entries.
func (r Ranking) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Count returns the number of ranked alternatives.
func (r Ranking) Count() int {
	return len(r.entries)
}

// Top returns the rank 1 entry, or false when nothing was ranked.
func (r Ranking) Top() (Entry, bool) {
	return r.ByRank(1)
}

// ByRank returns the entry at a 1-based rank, or false when out of range.
func (r Ranking) ByRank(rank int) (Entry, bool) {
	if rank < 1 || rank > len(r.entries) {
		return Entry{}, false
	}
	return r.entries[rank-1], true
}

// Stats computes max, min and mean score rounded to 4 decimals. All values are
// zero for an empty ranking.
func (r Ranking) Stats() Stats {
	if len(r.entries) == 0 {
		return Stats{}
	}

	maxScore := r.entries[0].Score
	minScore := r.entries[0].Score
	sum := 0.0
	for _, entry := range r.entries {
		if entry.Score > maxScore {
			maxScore = entry.Score
		}
		if entry.Score < minScore {
			minScore = entry.Score
		}
		sum += entry.Score
	}

	return Stats{
		Count: len(r.entries),
		Max:   Round(maxScore, scorePrecision),
		Min:   Round(minScore, scorePrecision),
		Mean:  Round(sum/float64(len(r.entries)), scorePrecision),
	}
}
