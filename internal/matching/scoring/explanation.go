package scoring

import (
	"fmt"
	"strings"
)

// maxExplanationReasons caps how many reason clauses make it into the
// one-line explanation shown to consumers.
const maxExplanationReasons = 3

// Band returns the qualitative label for a 0-100 score.
func Band(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Average"
	default:
		return "Low"
	}
}

// Explanation renders a score and its reasons into a single human-readable
// sentence. Pure formatting, no I/O.
func Explanation(score int, reasons []string) string {
	kept := make([]string, 0, maxExplanationReasons)
	for _, reason := range reasons {
		if strings.TrimSpace(reason) == "" {
			continue
		}
		kept = append(kept, reason)
		if len(kept) == maxExplanationReasons {
			break
		}
	}

	if len(kept) == 0 {
		return fmt.Sprintf("%s match (%d/100).", Band(score), score)
	}
	return fmt.Sprintf("%s match (%d/100): %s.", Band(score), score, strings.Join(kept, "; "))
}
