package problemgen

import (
	"fmt"
	"strings"
)

// buildDedup formats prior stems for the prompt, respecting the max limit.
// Returns "없음" if there are no prior stems.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "없음"
	}

	// Keep only the most recent N stems.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, s := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, oneLine(s))
	}
	return strings.TrimRight(b.String(), "\n")
}

// oneLine collapses whitespace so a multi-line stem stays one list item.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
