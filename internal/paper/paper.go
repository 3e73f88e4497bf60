// Package paper renders problem records for people: a detailed text view
// of one record and a Markdown exam sheet with an answer key.
package paper

import (
	"fmt"
	"io"
	"strings"

	"github.com/abhisek/suneung/internal/problem"
)

// Detail renders every field of rec that explains how it was produced.
func Detail(rec problem.Record) string {
	var b strings.Builder
	req := rec.Request

	fmt.Fprintf(&b, "ID       %s\n", rec.ID)
	fmt.Fprintf(&b, "Status   %s\n", rec.Status)
	fmt.Fprintf(&b, "Request  %s (%s, %s)\n", req.String(), req.Track.Label(), req.Topic)
	if req.Escalated {
		b.WriteString("         escalated to ultra-hard\n")
	}
	fmt.Fprintf(&b, "Revised  %d times\n", rec.RevisionCount)

	if rec.Stem != "" {
		b.WriteString("\n")
		writeProblem(&b, rec)
		fmt.Fprintf(&b, "\n정답: %s\n", rec.Answer.Display(rec.Choices))
		if rec.Solution != "" {
			fmt.Fprintf(&b, "풀이: %s\n", rec.Solution)
		}
	}

	if a := rec.DifficultyAnalysis; a != nil {
		fmt.Fprintf(&b, "\nDifficulty %d (%s), about %d min\n", a.Score, a.Grade, a.ExpectedMinutes)
		fmt.Fprintf(&b, "  base %d\n", a.Base)
		for _, bonus := range a.Bonuses {
			fmt.Fprintf(&b, "  %+d %s\n", bonus.Points, bonus.Reason)
		}
		if len(a.Units) > 0 {
			fmt.Fprintf(&b, "  units: %s\n", strings.Join(a.Units, ", "))
		}
	}

	if c := rec.Critique; c != nil {
		source := "review"
		if c.Synthesized {
			source = "local check"
		}
		fmt.Fprintf(&b, "\nCritique (%s) pass=%t score=%d/10\n", source, c.Pass, c.Score)
		for _, is := range c.Issues {
			fmt.Fprintf(&b, "  - [%s] %s\n", is.Kind, is.Detail)
		}
		if c.Suggestions != "" {
			fmt.Fprintf(&b, "  suggestions: %s\n", c.Suggestions)
		}
	}

	if rec.Failure != "" {
		fmt.Fprintf(&b, "\nFailure: %s\n", rec.Failure)
	}
	return b.String()
}

// Markdown writes recs as a numbered exam sheet followed by an answer key.
func Markdown(w io.Writer, title string, recs []problem.Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	for i, rec := range recs {
		fmt.Fprintf(&b, "## %d. [%d점] %s · %s\n\n", i+1, rec.Request.Points, rec.Request.Track.Label(), rec.Request.Topic)
		writeProblem(&b, rec)
		b.WriteString("\n")
	}

	b.WriteString("## 정답\n\n")
	b.WriteString("| 번호 | 정답 | 난이도 |\n|---|---|---|\n")
	for i, rec := range recs {
		grade := "-"
		if a := rec.DifficultyAnalysis; a != nil {
			grade = fmt.Sprintf("%d (%s)", a.Score, a.Grade)
		}
		fmt.Fprintf(&b, "| %d | %s | %s |\n", i+1, rec.Answer.Display(rec.Choices), grade)
	}

	b.WriteString("\n## 풀이\n\n")
	for i, rec := range recs {
		if rec.Solution == "" {
			continue
		}
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, rec.Solution)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeProblem(b *strings.Builder, rec problem.Record) {
	b.WriteString(rec.Stem)
	b.WriteString("\n")
	if len(rec.Choices) == 0 {
		return
	}
	b.WriteString("\n")
	for i, ch := range rec.Choices {
		fmt.Fprintf(b, "%s %s  ", problem.Marker(i), ch)
	}
	b.WriteString("\n")
}
