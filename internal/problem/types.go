package problem

// Track is the subject scope a problem is written for.
type Track string

const (
	TrackMath1       Track = "math1"       // 수학 I
	TrackMath2       Track = "math2"       // 수학 II
	TrackCalculus    Track = "calculus"    // 미적분
	TrackProbability Track = "probability" // 확률과 통계
	TrackGeometry    Track = "geometry"    // 기하
)

// Label returns the Korean curriculum name of the track.
func (t Track) Label() string {
	switch t {
	case TrackMath1:
		return "수학I"
	case TrackMath2:
		return "수학II"
	case TrackCalculus:
		return "미적분"
	case TrackProbability:
		return "확률과 통계"
	case TrackGeometry:
		return "기하"
	default:
		return string(t)
	}
}

// Tier is the requested difficulty tier.
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// Format describes how the problem is answered.
type Format string

const (
	// FormatMultipleChoice is the five-option ①–⑤ format.
	FormatMultipleChoice Format = "multiple_choice"

	// FormatShortAnswer expects a single numeric answer.
	FormatShortAnswer Format = "short_answer"
)

// ChoiceCount is the number of options in a multiple-choice problem.
const ChoiceCount = 5

// Category tags an ultra-hard ("killer") request.
type Category string

const (
	CategoryIdentity   Category = "identity_master"
	CategoryFusion     Category = "fusion_master"
	CategoryInequality Category = "inequality_master"
	CategoryLimit      Category = "limit_master"
)

// categoryMinScores holds the minimum difficulty score a candidate in each
// ultra-hard category must reach.
var categoryMinScores = map[Category]int{
	CategoryIdentity:   90,
	CategoryFusion:     92,
	CategoryInequality: 88,
	CategoryLimit:      95,
}

// MinScore returns the minimum difficulty score for the category, or 0 if
// the category is unknown or unset.
func (c Category) MinScore() int {
	return categoryMinScores[c]
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	_, ok := categoryMinScores[c]
	return ok
}

// Draft is the content of a candidate as produced by the generation or
// revision service, after repair and normalization.
type Draft struct {
	Stem     string
	Choices  []string
	Answer   Answer
	Solution string

	// Provenance records where the draft came from.
	Provenance Provenance
}

// Answer is the canonical answer of a candidate. Exactly one of Index and
// Value is meaningful, depending on the request format.
type Answer struct {
	// Index is the zero-based choice index for multiple-choice problems.
	Index *int `json:"index,omitempty"`

	// Value is the canonical numeric literal for short-answer problems,
	// e.g. "12", "-3/4", "2.5".
	Value string `json:"value,omitempty"`
}

// ChoiceAnswer returns an Answer pointing at choice i.
func ChoiceAnswer(i int) Answer {
	return Answer{Index: &i}
}

// NumericAnswer returns an Answer holding a canonical numeric literal.
func NumericAnswer(v string) Answer {
	return Answer{Value: v}
}

// IsZero reports whether the answer is unset.
func (a Answer) IsZero() bool {
	return a.Index == nil && a.Value == ""
}

// Provenance keeps the raw service response and the repair steps applied
// to it. Used for debugging, never shown to users.
type Provenance struct {
	Raw      string   `json:"raw"`
	Repaired string   `json:"repaired,omitempty"`
	Steps    []string `json:"steps,omitempty"`
}
