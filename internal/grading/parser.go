package grading

import (
	"regexp"
	"strconv"

	"github.com/JaimeStill/grader/pkg/formatting"
)

var (
	shininessPattern  = regexp.MustCompile(`(?i)shininess.*?(\d+)\s*/\s*5\b`)
	smoothnessPattern = regexp.MustCompile(`(?i)smoothness.*?(\d+)\s*/\s*5\b`)
	combinedPattern   = regexp.MustCompile(`(?i)combined.*?(\d+)\s*/\s*10\b`)
)

// Scores holds the values read from a model reply. Shininess and Smoothness
// are nil when their line could not be found.
type Scores struct {
	Shininess        *int
	Smoothness       *int
	Combined         int
	ReportedCombined *int

	shininess  int
	smoothness int
}

// ShininessValue returns the shininess grade to record. A missing line is
// filled from the reported Combined line when there is one, else 0.
func (s Scores) ShininessValue() int { return s.shininess }

// SmoothnessValue returns the smoothness grade to record, filled the same way
// as ShininessValue.
func (s Scores) SmoothnessValue() int { return s.smoothness }

// Complete reports whether both component scores were found.
func (s Scores) Complete() bool {
	return s.Shininess != nil && s.Smoothness != nil
}

// Inconsistent reports whether the model's own Combined line disagrees with
// the recorded Combined.
func (s Scores) Inconsistent() bool {
	return s.ReportedCombined != nil && *s.ReportedCombined != s.Combined
}

type jsonScores struct {
	Shininess  *int `json:"shininess"`
	Smoothness *int `json:"smoothness"`
	Combined   *int `json:"combined"`
}

// ParseScores extracts grades from free-form model text.
//
// Combined is always ShininessValue plus SmoothnessValue. When both
// component lines parse, a Combined line from the model is kept only as
// ReportedCombined. When a component is missing and a Combined line parsed,
// the missing part is taken from the reported total (clamped), so a reply
// of "Shininess: 4/5, Combined: 7/10" records smoothness 3. Without a
// Combined line missing parts count as 0. Components clamp to 0–5 and
// Combined to 0–10. A reply carrying JSON scores instead of score lines is
// also understood.
func ParseScores(text string) Scores {
	shininess := match(shininessPattern, text, 5)
	smoothness := match(smoothnessPattern, text, 5)
	reported := match(combinedPattern, text, 10)

	if shininess == nil && smoothness == nil && reported == nil {
		if js, err := formatting.Parse[jsonScores](text); err == nil {
			shininess = clampPtr(js.Shininess, 5)
			smoothness = clampPtr(js.Smoothness, 5)
			reported = clampPtr(js.Combined, 10)
		}
	}

	s := Scores{
		Shininess:        shininess,
		Smoothness:       smoothness,
		ReportedCombined: reported,
		shininess:        valueOr(shininess),
		smoothness:       valueOr(smoothness),
	}

	if !s.Complete() && reported != nil {
		s.shininess, s.smoothness = fillFromTotal(*reported, shininess, smoothness)
	}
	s.Combined = s.shininess + s.smoothness

	return s
}

// fillFromTotal resolves missing components so they sum to total where the
// 0–5 range allows. With both missing the total is split, shininess taking
// the odd point.
func fillFromTotal(total int, shininess, smoothness *int) (int, int) {
	switch {
	case shininess != nil:
		return *shininess, clamp(total-*shininess, 5)
	case smoothness != nil:
		return clamp(total-*smoothness, 5), *smoothness
	default:
		return (total + 1) / 2, total / 2
	}
}

func match(re *regexp.Regexp, text string, upper int) *int {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return nil
	}
	return clampPtr(&n, upper)
}

func clampPtr(n *int, upper int) *int {
	if n == nil {
		return nil
	}
	v := clamp(*n, upper)
	return &v
}

func clamp(n, upper int) int {
	return min(max(n, 0), upper)
}

func valueOr(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}
