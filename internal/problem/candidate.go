package problem

import "slices"

// Grade is the difficulty label derived from a score.
type Grade string

const (
	GradeKiller     Grade = "killer"
	GradeSemiKiller Grade = "semi-killer"
	GradeHighest    Grade = "highest"
	GradeHigh       Grade = "high"
	GradeMid        Grade = "mid"
	GradeLow        Grade = "low"
)

// Bonus is one itemized contribution to a difficulty score.
type Bonus struct {
	Reason string `json:"reason"`
	Points int    `json:"points"`
}

// DifficultyAnalysis is the scorer's verdict for one candidate revision.
// It is recomputed wholesale after every revision.
type DifficultyAnalysis struct {
	Base            int      `json:"base"`
	Bonuses         []Bonus  `json:"bonuses,omitempty"`
	Score           int      `json:"score"`
	Grade           Grade    `json:"grade"`
	ExpectedMinutes int      `json:"expected_minutes"`
	Units           []string `json:"units,omitempty"`
}

func (a DifficultyAnalysis) clone() *DifficultyAnalysis {
	a.Bonuses = slices.Clone(a.Bonuses)
	a.Units = slices.Clone(a.Units)
	return &a
}

// IssueKind classifies a review issue.
type IssueKind string

const (
	IssueCurriculum IssueKind = "curriculum_violation"
	IssueMath       IssueKind = "mathematical_error"
	IssueDifficulty IssueKind = "difficulty_mismatch"
	IssueValidation IssueKind = "validation"
	IssueOther      IssueKind = "other"
)

// Blocking reports whether an issue of this kind prevents acceptance
// regardless of the review score.
func (k IssueKind) Blocking() bool {
	switch k {
	case IssueCurriculum, IssueMath, IssueValidation:
		return true
	}
	return false
}

// Issue is one itemized problem found in a candidate.
type Issue struct {
	Kind   IssueKind `json:"kind"`
	Detail string    `json:"detail"`
}

// ReviewCritique is the outcome of one review cycle. A new critique
// supersedes the previous one.
type ReviewCritique struct {
	Pass        bool    `json:"pass"`
	Score       int     `json:"score"`
	Issues      []Issue `json:"issues,omitempty"`
	Suggestions string  `json:"suggestions,omitempty"`

	// Synthesized is set when the critique was produced locally (curriculum
	// or difficulty checks) without calling the review service.
	Synthesized bool `json:"synthesized,omitempty"`
}

func (c ReviewCritique) clone() *ReviewCritique {
	c.Issues = slices.Clone(c.Issues)
	return &c
}

// Blocking reports whether any issue blocks acceptance.
func (c *ReviewCritique) Blocking() bool {
	for _, is := range c.Issues {
		if is.Kind.Blocking() {
			return true
		}
	}
	return false
}

// Candidate is a problem flowing through the pipeline. The orchestrator owns
// it exclusively; content, analysis and critique are replaced as a whole and
// never shared between candidates.
type Candidate struct {
	ID            string
	Request       Request
	Stem          string
	Choices       []string
	Answer        Answer
	Solution      string
	Status        Status
	RevisionCount int

	Difficulty *DifficultyAnalysis
	Critique   *ReviewCritique

	// CurriculumApproved is set by the curriculum filter for the current
	// content and cleared whenever the content changes.
	CurriculumApproved bool

	// Corrections lists deterministic fixes applied by the curriculum filter.
	Corrections []string

	// Provenance holds one entry per generation or revision response.
	Provenance []Provenance

	// Failure is the typed reason of a REJECTED or FAILED candidate.
	Failure error
}

// NewCandidate returns a candidate in the REQUESTED state.
func NewCandidate(id string, req Request) *Candidate {
	return &Candidate{ID: id, Request: req, Status: StatusRequested}
}

// Transition moves the candidate to status to, enforcing the state machine.
func (c *Candidate) Transition(to Status) error {
	if !CanTransition(c.Status, to) {
		return &TransitionError{From: c.Status, To: to}
	}
	if to == StatusAccepted && !c.CurriculumApproved {
		return &TransitionError{From: c.Status, To: to, Reason: "curriculum filter has not approved the content"}
	}
	c.Status = to
	return nil
}

// Apply replaces the candidate content with d. Analysis, critique and
// curriculum approval belong to the old content and are dropped.
func (c *Candidate) Apply(d Draft) {
	c.Stem = d.Stem
	c.Choices = slices.Clone(d.Choices)
	c.Answer = d.Answer.clone()
	c.Solution = d.Solution
	c.Difficulty = nil
	c.Critique = nil
	c.CurriculumApproved = false
	c.Corrections = nil
	c.Provenance = append(c.Provenance, d.Provenance)
}

// Correct replaces the content with a deterministically corrected version
// of itself. Unlike Apply it adds no provenance entry. Analysis and
// critique are dropped.
func (c *Candidate) Correct(d Draft, corrections []string) {
	c.Stem = d.Stem
	c.Choices = slices.Clone(d.Choices)
	c.Answer = d.Answer.clone()
	c.Solution = d.Solution
	c.Difficulty = nil
	c.Critique = nil
	c.CurriculumApproved = false
	c.Corrections = slices.Clone(corrections)
}

// Draft returns the current content as a Draft.
func (c *Candidate) Draft() Draft {
	return Draft{
		Stem:     c.Stem,
		Choices:  slices.Clone(c.Choices),
		Answer:   c.Answer.clone(),
		Solution: c.Solution,
	}
}

// SetDifficulty stores a copy of a.
func (c *Candidate) SetDifficulty(a DifficultyAnalysis) {
	c.Difficulty = a.clone()
}

// SetCritique stores a copy of r.
func (c *Candidate) SetCritique(r ReviewCritique) {
	c.Critique = r.clone()
}

// Fail moves the candidate to FAILED with err as the reason.
func (c *Candidate) Fail(err error) {
	c.Failure = err
	if !c.Status.Terminal() {
		c.Status = StatusFailed
	}
}

func (a Answer) clone() Answer {
	if a.Index == nil {
		return Answer{Value: a.Value}
	}
	i := *a.Index
	return Answer{Index: &i, Value: a.Value}
}
