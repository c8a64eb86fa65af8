package baseline

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/winmem/pkg/use"
)

// Severity indicates the magnitude of a metric drift.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityRegress  Severity = "regression"
)

// Comparison holds the drift analysis for a single metric.
type Comparison struct {
	Resource    string         `json:"resource"`
	Type        use.MetricType `json:"type"`
	BaselineVal float64        `json:"baseline"`
	CurrentVal  float64        `json:"current"`
	DeltaPct    float64        `json:"delta_pct"`
	Severity    Severity       `json:"severity"`
}

var (
	blTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	blHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	blCell   = lipgloss.NewStyle().Padding(0, 1)
	blDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	blErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blMinor  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Compare matches checks by Resource+Type and calculates drift. Checks that
// were unknown on either side are skipped.
func Compare(baseline *Baseline, current []use.Check) []Comparison {
	key := func(c use.Check) string { return c.Resource + "|" + string(c.Type) }

	baselineMap := make(map[string]use.Check, len(baseline.Checks))
	for _, c := range baseline.Checks {
		baselineMap[key(c)] = c
	}

	var comparisons []Comparison
	for _, cur := range current {
		base, ok := baselineMap[key(cur)]
		if !ok || base.Status == use.StatusUnknown || cur.Status == use.StatusUnknown {
			continue
		}

		var deltaPct float64
		switch {
		case base.RawValue != 0:
			deltaPct = (cur.RawValue - base.RawValue) / math.Abs(base.RawValue) * 100
		case cur.RawValue != 0:
			deltaPct = 100
		}

		comparisons = append(comparisons, Comparison{
			Resource:    cur.Resource,
			Type:        cur.Type,
			BaselineVal: base.RawValue,
			CurrentVal:  cur.RawValue,
			DeltaPct:    deltaPct,
			Severity:    classifySeverity(deltaPct),
		})
	}
	return comparisons
}

// classifySeverity grades a relative change. Every compared metric grows
// with memory pressure, so a large increase is a regression.
func classifySeverity(deltaPct float64) Severity {
	switch abs := math.Abs(deltaPct); {
	case abs < 5:
		return SeverityNone
	case abs < 15:
		return SeverityMinor
	case abs < 30:
		return SeverityModerate
	case deltaPct > 0:
		return SeverityRegress
	default:
		return SeverityMajor
	}
}

// Regressions counts the comparisons graded major or regression.
func Regressions(comparisons []Comparison) int {
	n := 0
	for _, c := range comparisons {
		if c.Severity == SeverityRegress || c.Severity == SeverityMajor {
			n++
		}
	}
	return n
}

// RenderComparison outputs a styled comparison table.
func RenderComparison(w io.Writer, baseline *Baseline, comparisons []Comparison) {
	fmt.Fprintln(w, blTitle.Render("Baseline Comparison"))
	fmt.Fprintln(w, blDim.Render(strings.Repeat("═", 60)))
	fmt.Fprintf(w, "Comparing against %s (from %s on %s)\n\n",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%q", baseline.Name)),
		blDim.Render(baseline.Timestamp.Format("2006-01-02 15:04:05")),
		baseline.Hostname)

	rows := make([][]string, len(comparisons))
	for i, c := range comparisons {
		rows[i] = []string{
			c.Resource,
			string(c.Type),
			fmt.Sprintf("%.2f", c.BaselineVal),
			fmt.Sprintf("%.2f", c.CurrentVal),
			fmt.Sprintf("%+.1f%%", c.DeltaPct),
			renderSeverity(c.Severity),
		}
	}
	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(blDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return blHeader
			}
			return blCell
		}).
		Headers("RESOURCE", "TYPE", "BASELINE", "CURRENT", "DELTA", "SEVERITY").
		Rows(rows...))

	fmt.Fprintln(w)
	if n := Regressions(comparisons); n > 0 {
		fmt.Fprintf(w, "  %s\n", blErr.Render(fmt.Sprintf("%d potential regressions detected.", n)))
	} else {
		fmt.Fprintf(w, "  %s\n", blOK.Render("No significant regressions detected."))
	}
}

func renderSeverity(s Severity) string {
	switch s {
	case SeverityRegress:
		return blErr.Render("REGRESSION")
	case SeverityMajor:
		return blErr.Render("MAJOR")
	case SeverityModerate:
		return blWarn.Render("moderate")
	case SeverityMinor:
		return blMinor.Render("minor")
	default:
		return blOK.Render("none")
	}
}
