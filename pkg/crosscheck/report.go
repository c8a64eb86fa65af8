package crosscheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"

	"github.com/danpilch/winmem/pkg/use"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	validStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	suspectStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	conflictStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Result is the outcome of a full cross-check run.
type Result struct {
	Validations []ValidationResult `json:"validations"`
	Sanity      []SanityResult     `json:"sanity"`
}

// Failed reports whether any sanity check failed or any metric conflicts.
func (r Result) Failed() bool {
	for _, v := range r.Validations {
		if v.Status == StatusConflict {
			return true
		}
	}
	for _, s := range r.Sanity {
		if !s.Passed {
			return true
		}
	}
	return false
}

// RunCrossChecks gathers a snapshot, compares the sources and runs the
// sanity checks over both the snapshot and the derived checks.
func RunCrossChecks(ctx context.Context, c Collections, alt Independent, checks []use.Check, logger *logrus.Logger) (Result, error) {
	snap, err := Gather(ctx, c, alt, logger)
	if err != nil {
		return Result{}, err
	}

	validator := NewValidator()
	var res Result
	for _, m := range []struct {
		name    string
		sources []Source
	}{
		{"Memory Utilization", MemorySources(snap)},
		{"Physical Memory Total", PhysicalTotalSources(snap)},
		{"Process Count", ProcessCountSources(snap)},
	} {
		if len(m.sources) > 0 {
			res.Validations = append(res.Validations, validator.CrossCheck(m.name, m.sources))
		}
	}

	res.Sanity = append(SnapshotSanity(snap), RunSanityChecks(checks)...)
	return res, nil
}

// Report outputs cross-check results as styled tables.
func Report(w io.Writer, r Result) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Cross-Check Validation Report"))
	fmt.Fprintln(w, dimStyle.Render(strings.Repeat("═", 60)))

	if len(r.Validations) > 0 {
		rows := make([][]string, len(r.Validations))
		for i, v := range r.Validations {
			sourceNames := make([]string, len(v.Sources))
			for j, s := range v.Sources {
				sourceNames[j] = fmt.Sprintf("%s=%.1f", s.Name, s.Value)
			}
			rows[i] = []string{
				v.Metric,
				fmt.Sprintf("%.1f", v.Consensus),
				fmt.Sprintf("%.1f%%", v.MaxDeviation),
				renderStatus(v.Status),
				strings.Join(sourceNames, ", "),
			}
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Metric Cross-Checks"))
		fmt.Fprintln(w, table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(dimStyle).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("METRIC", "CONSENSUS", "MAX DEV", "STATUS", "SOURCES").
			Rows(rows...))
	}

	if len(r.Sanity) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, titleStyle.Render("Sanity Checks"))
		failed := 0
		for _, s := range r.Sanity {
			icon := validStyle.Render("PASS")
			if !s.Passed {
				icon = conflictStyle.Render("FAIL")
				failed++
			}
			fmt.Fprintf(w, "  [%s] %-42s %s\n", icon, s.Check, dimStyle.Render(s.Details))
		}
		fmt.Fprintln(w)
		if failed == 0 {
			fmt.Fprintf(w, "  %s\n", validStyle.Render(fmt.Sprintf("All %d sanity checks passed.", len(r.Sanity))))
		} else {
			fmt.Fprintf(w, "  %s\n", conflictStyle.Render(fmt.Sprintf("%d of %d sanity checks failed.", failed, len(r.Sanity))))
		}
	}
}

func renderStatus(s ValidationStatus) string {
	switch s {
	case StatusConflict:
		return conflictStyle.Render("CONFLICT")
	case StatusSuspect:
		return suspectStyle.Render("SUSPECT")
	default:
		return validStyle.Render("VALID")
	}
}

// ReportJSON outputs cross-check results as JSON.
func ReportJSON(w io.Writer, r Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
