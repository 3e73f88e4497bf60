package problem

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Request is the immutable input to a pipeline run. Callers build it once;
// the pipeline derives new requests (e.g. on escalation) instead of
// mutating it.
type Request struct {
	Track  Track  `json:"track" yaml:"track" validate:"required,oneof=math1 math2 calculus probability geometry"`
	Topic  string `json:"topic" yaml:"topic" validate:"required"`
	Tier   Tier   `json:"tier" yaml:"tier" validate:"required,oneof=low mid high"`
	Format Format `json:"format" yaml:"format" validate:"required,oneof=multiple_choice short_answer"`
	Points int    `json:"points" yaml:"points" validate:"oneof=2 3 4"`

	// Category marks the request as ultra-hard. Empty for regular requests.
	Category Category `json:"category,omitempty" yaml:"category,omitempty" validate:"omitempty,oneof=identity_master fusion_master inequality_master limit_master"`

	// FusionLevel is the number of units to combine. Zero means unset.
	FusionLevel int `json:"fusion_level,omitempty" yaml:"fusion_level,omitempty" validate:"omitempty,min=2,max=4"`

	// Pattern is an optional problem pattern hint, e.g. "매개변수미분".
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Escalated is set on requests derived by ultra-hard escalation.
	Escalated bool `json:"escalated,omitempty" yaml:"-"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared struct validator.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks field values and the ultra-hard invariants.
func (r Request) Validate() error {
	if err := Validator().Struct(r); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	if r.UltraHard() && r.Points != 4 {
		return fmt.Errorf("invalid request: ultra-hard problems are worth 4 points, got %d", r.Points)
	}
	return nil
}

// UltraHard reports whether the request targets the killer level.
func (r Request) UltraHard() bool {
	return r.Category != ""
}

// Escalate returns the ultra-hard variant of r used when a high-tier
// candidate scores below the tier minimum. r itself is not modified.
func (r Request) Escalate() Request {
	out := r
	if out.Category == "" {
		out.Category = CategoryFusion
	}
	level := r.FusionLevel + 1
	if level < 3 {
		level = 3
	}
	if level > 4 {
		level = 4
	}
	out.FusionLevel = level
	out.Points = 4
	out.Escalated = true
	return out
}

// String renders a compact human-readable description.
func (r Request) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s/%s/%s/%s/%dpt", r.Track, r.Topic, r.Tier, r.Format, r.Points)
	if r.Category != "" {
		fmt.Fprintf(&b, "/%s", r.Category)
	}
	if r.FusionLevel > 0 {
		fmt.Fprintf(&b, "/fusion=%d", r.FusionLevel)
	}
	return b.String()
}
