// Package analytics derives read-only grading statistics from stored
// records: AI versus technician scores over time, the confidence
// distribution, and how often technicians agree with the model.
package analytics

import (
	"math"
	"slices"
	"time"

	"github.com/JaimeStill/grader/internal/records"
)

const confidenceBins = 10

// Point is one time bucket of the score series. TechnicianCombined is nil
// when no record in the bucket has been reviewed.
type Point struct {
	Start              time.Time `json:"start"`
	Count              int       `json:"count"`
	Reviewed           int       `json:"reviewed"`
	AICombined         float64   `json:"aiCombined"`
	TechnicianCombined *float64  `json:"technicianCombined"`
}

// Bin counts records whose confidence falls in [Lower, Upper). The last bin
// also includes 1.0.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary is the derived view over a set of records.
type Summary struct {
	Series     []Point `json:"series"`
	Confidence []Bin   `json:"confidence"`
	MatchRate  float64 `json:"matchRate"`
	Matches    int     `json:"matches"`
	Reviewed   int     `json:"reviewed"`
	Pending    int     `json:"pending"`
	Total      int     `json:"total"`
}

type accumulator struct {
	count, reviewed int
	aiSum, techSum  int
}

// Summarize aggregates recs. Series buckets are bucket wide, aligned to the
// Unix epoch, in ascending order. A non-positive bucket uses one hour.
func Summarize(recs []records.Record, bucket time.Duration) Summary {
	if bucket <= 0 {
		bucket = time.Hour
	}

	s := Summary{
		Series:     []Point{},
		Confidence: newBins(),
		Total:      len(recs),
	}

	buckets := make(map[time.Time]*accumulator)

	for _, rec := range recs {
		start := rec.Timestamps.CreatedAt.UTC().Truncate(bucket)
		acc, ok := buckets[start]
		if !ok {
			acc = &accumulator{}
			buckets[start] = acc
		}
		acc.count++
		acc.aiSum += rec.AIGrading.Combined

		s.Confidence[binIndex(rec.AIGrading.Confidence)].Count++

		if !rec.Review.Completed() || rec.Review.TechnicianCombined == nil {
			s.Pending++
			continue
		}

		tech := *rec.Review.TechnicianCombined
		acc.reviewed++
		acc.techSum += tech
		s.Reviewed++
		if tech == rec.AIGrading.Combined {
			s.Matches++
		}
	}

	if s.Reviewed > 0 {
		s.MatchRate = float64(s.Matches) / float64(s.Reviewed)
	}

	for start, acc := range buckets {
		p := Point{
			Start:      start,
			Count:      acc.count,
			Reviewed:   acc.reviewed,
			AICombined: mean(acc.aiSum, acc.count),
		}
		if acc.reviewed > 0 {
			tech := mean(acc.techSum, acc.reviewed)
			p.TechnicianCombined = &tech
		}
		s.Series = append(s.Series, p)
	}

	slices.SortFunc(s.Series, func(a, b Point) int {
		return a.Start.Compare(b.Start)
	})

	return s
}

func newBins() []Bin {
	bins := make([]Bin, confidenceBins)
	for i := range bins {
		bins[i] = Bin{
			Lower: round(float64(i) / confidenceBins),
			Upper: round(float64(i+1) / confidenceBins),
		}
	}
	return bins
}

func binIndex(confidence float64) int {
	if math.IsNaN(confidence) {
		return 0
	}
	i := int(math.Floor(confidence * confidenceBins))
	return min(max(i, 0), confidenceBins-1)
}

func mean(sum, n int) float64 {
	return round(float64(sum) / float64(n))
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}
