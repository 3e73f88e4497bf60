package problem

import (
	"errors"
	"fmt"
	"strings"
)

// ParseFailure indicates a service response that could not be repaired
// into a well-formed record.
type ParseFailure struct {
	Raw   string
	Steps []string
	Err   error
}

func (e *ParseFailure) Error() string {
	return fmt.Sprintf("unparseable response: %v", e.Err)
}

func (e *ParseFailure) Unwrap() error { return e.Err }

// TransientServiceFailure wraps network, timeout, rate-limit and other
// service errors that may succeed on retry.
type TransientServiceFailure struct {
	Op  string // "generate", "review" or "revise"
	Err error
}

func (e *TransientServiceFailure) Error() string {
	return fmt.Sprintf("%s: service failure: %v", e.Op, e.Err)
}

func (e *TransientServiceFailure) Unwrap() error { return e.Err }

// CurriculumViolation reports operators or topics outside the track scope
// that could not be substituted safely.
type CurriculumViolation struct {
	Track  Track
	Issues []Issue
}

func (e *CurriculumViolation) Error() string {
	return fmt.Sprintf("curriculum violation for %s: %s", e.Track, joinIssues(e.Issues))
}

// ValidationFailure reports content that fails the deterministic checks,
// e.g. an answer index outside the choices.
type ValidationFailure struct {
	Issues []Issue
}

func (e *ValidationFailure) Error() string {
	return "validation failure: " + joinIssues(e.Issues)
}

// ReviewRejected reports a content-level rejection by the reviewer.
type ReviewRejected struct {
	Critique ReviewCritique
}

func (e *ReviewRejected) Error() string {
	if len(e.Critique.Issues) == 0 {
		return fmt.Sprintf("review rejected (score %d)", e.Critique.Score)
	}
	return fmt.Sprintf("review rejected (score %d): %s", e.Critique.Score, joinIssues(e.Critique.Issues))
}

// RevisionExhausted reports that the revision limit was reached. Last holds
// the error describing the final critique.
type RevisionExhausted struct {
	Revisions int
	Last      error
}

func (e *RevisionExhausted) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("revision limit reached after %d revisions", e.Revisions)
	}
	return fmt.Sprintf("revision limit reached after %d revisions: %v", e.Revisions, e.Last)
}

func (e *RevisionExhausted) Unwrap() error { return e.Last }

// Retryable reports whether err is covered by the local retry budget.
// Content-level failures are resolved by revision, never by retry.
func Retryable(err error) bool {
	var tf *TransientServiceFailure
	if errors.As(err, &tf) {
		return true
	}
	var pf *ParseFailure
	return errors.As(err, &pf)
}

// CritiqueError converts a failing critique into the matching typed error.
func CritiqueError(track Track, c ReviewCritique) error {
	var curriculum, validation []Issue
	for _, is := range c.Issues {
		switch is.Kind {
		case IssueCurriculum:
			curriculum = append(curriculum, is)
		case IssueValidation:
			validation = append(validation, is)
		}
	}
	switch {
	case c.Synthesized && len(curriculum) > 0:
		return &CurriculumViolation{Track: track, Issues: curriculum}
	case c.Synthesized && len(validation) > 0:
		return &ValidationFailure{Issues: validation}
	default:
		return &ReviewRejected{Critique: c}
	}
}

func joinIssues(issues []Issue) string {
	parts := make([]string, len(issues))
	for i, is := range issues {
		parts[i] = fmt.Sprintf("[%s] %s", is.Kind, is.Detail)
	}
	return strings.Join(parts, "; ")
}
