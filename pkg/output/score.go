package output

import "github.com/danpilch/winmem/pkg/use"

// Per-status deductions from a perfect score.
const (
	errorPenalty   = 15
	warningPenalty = 5
	unknownPenalty = 3
)

// HealthScore computes a 0-100 health score from check results.
func HealthScore(checks []use.Check) int {
	score := 100
	for _, c := range checks {
		switch c.Status {
		case use.StatusError:
			score -= errorPenalty
		case use.StatusWarning:
			score -= warningPenalty
		case use.StatusUnknown:
			score -= unknownPenalty
		}
	}
	return max(score, 0)
}

// ScoreLabel returns a human-readable label for a health score.
func ScoreLabel(score int) string {
	switch {
	case score >= 80:
		return "Healthy"
	case score >= 50:
		return "Degraded"
	default:
		return "Critical"
	}
}
