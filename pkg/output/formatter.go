// Package output renders checks and memory reports as tables, JSON, TSV or
// Markdown.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/danpilch/winmem/pkg/use"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatAI    Format = "ai"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTable, FormatJSON, FormatAI, FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json, tsv or ai)", s)
}

// Formatter handles output formatting.
type Formatter struct {
	format    Format
	writer    io.Writer
	showScore bool
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// SetShowScore enables health score display.
func (f *Formatter) SetShowScore(show bool) {
	f.showScore = show
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	cellStyle  = lipgloss.NewStyle().Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1)
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	statusStyles = map[use.Status]lipgloss.Style{
		use.StatusOK:      lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true), // Green
		use.StatusWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
		use.StatusError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
		use.StatusUnknown: lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Bold(true),  // Gray
	}
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
}

func (f *Formatter) title(s string) {
	fmt.Fprintln(f.writer, titleStyle.Render(s))
	fmt.Fprintln(f.writer, strings.Repeat("═", 60))
	fmt.Fprintln(f.writer)
}

func (f *Formatter) encodeJSON(v any) error {
	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Render outputs the checks in the configured format.
func (f *Formatter) Render(checks []use.Check) error {
	switch f.format {
	case FormatJSON:
		return f.renderJSON(checks)
	case FormatAI:
		return f.renderAI(checks)
	case FormatTSV:
		return f.renderTSV(checks)
	default:
		return f.renderTable(checks)
	}
}

func (f *Formatter) renderJSON(checks []use.Check) error {
	out := struct {
		Checks  []use.Check `json:"checks"`
		Summary use.Summary `json:"summary"`
		Score   *int        `json:"score,omitempty"`
	}{
		Checks:  checks,
		Summary: use.Summarize(checks),
	}
	if f.showScore {
		score := HealthScore(checks)
		out.Score = &score
	}
	return f.encodeJSON(out)
}

func (f *Formatter) renderTable(checks []use.Check) error {
	f.title("Windows Memory Check")

	rows := make([][]string, len(checks))
	for i, check := range checks {
		rows[i] = []string{
			check.Resource,
			string(check.Type),
			check.Value,
			statusStyles[check.Status].Render(strings.ToUpper(string(check.Status))),
		}
	}
	fmt.Fprintln(f.writer, newTable([]string{"RESOURCE", "TYPE", "VALUE", "STATUS"}, rows))

	fmt.Fprintln(f.writer)
	f.renderSummary(use.Summarize(checks))

	if f.showScore {
		score := HealthScore(checks)
		scoreStyle := statusStyles[use.StatusOK]
		if score < 80 {
			scoreStyle = statusStyles[use.StatusWarning]
		}
		if score < 50 {
			scoreStyle = statusStyles[use.StatusError]
		}
		fmt.Fprintf(f.writer, "Health Score: %s\n",
			scoreStyle.Render(fmt.Sprintf("%d/100 (%s)", score, ScoreLabel(score))))
	}
	return nil
}

func (f *Formatter) renderSummary(summary use.Summary) {
	var parts []string
	if summary.Errors > 0 {
		parts = append(parts, statusStyles[use.StatusError].Render(fmt.Sprintf("%d errors", summary.Errors)))
	}
	if summary.Warnings > 0 {
		parts = append(parts, statusStyles[use.StatusWarning].Render(fmt.Sprintf("%d warnings", summary.Warnings)))
	}
	if summary.Unknown > 0 {
		parts = append(parts, statusStyles[use.StatusUnknown].Render(fmt.Sprintf("%d unknown", summary.Unknown)))
	}

	if len(parts) == 0 {
		fmt.Fprintln(f.writer, statusStyles[use.StatusOK].Render("All checks passed"))
	} else {
		fmt.Fprintf(f.writer, "Summary: %s\n", strings.Join(parts, ", "))
	}
}

// renderAI outputs checks as Markdown for pasting into a chat or ticket.
func (f *Formatter) renderAI(checks []use.Check) error {
	summary := use.Summarize(checks)

	if summary.Errors == 0 && summary.Warnings == 0 {
		fmt.Fprintln(f.writer, "# Memory Health: OK")
		fmt.Fprintln(f.writer, "\nAll memory checks passed. No issues detected.")
		fmt.Fprintln(f.writer)
	} else {
		fmt.Fprintln(f.writer, "# Memory Health: Issues Detected")
		fmt.Fprintf(f.writer, "\n**Status:** %d errors, %d warnings, %d ok\n\n",
			summary.Errors, summary.Warnings, summary.OK)
	}

	if issues := filterByStatus(checks, use.StatusError, use.StatusWarning); len(issues) > 0 {
		fmt.Fprintln(f.writer, "## Issues Requiring Attention")
		fmt.Fprintln(f.writer)
		for _, check := range issues {
			severity := "WARNING"
			if check.Status == use.StatusError {
				severity = "ERROR"
			}
			fmt.Fprintf(f.writer, "- **[%s] %s %s:** %s\n",
				severity, check.Resource, check.Type, check.Value)
			fmt.Fprintf(f.writer, "  - %s\n", interpret(check))
		}
		fmt.Fprintln(f.writer)
	}

	resourceChecks := make(map[string][]use.Check)
	var resourceOrder []string
	for _, check := range checks {
		if _, exists := resourceChecks[check.Resource]; !exists {
			resourceOrder = append(resourceOrder, check.Resource)
		}
		resourceChecks[check.Resource] = append(resourceChecks[check.Resource], check)
	}

	fmt.Fprintln(f.writer, "## All Metrics")
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "| Resource | Utilization | Saturation | Errors |")
	fmt.Fprintln(f.writer, "|----------|-------------|------------|--------|")
	for _, resource := range resourceOrder {
		util, sat, errs := "-", "-", "-"
		for _, c := range resourceChecks[resource] {
			val := c.Value
			if c.Status != use.StatusOK {
				val = fmt.Sprintf("**%s**", val)
			}
			switch c.Type {
			case use.Utilization:
				util = val
			case use.Saturation:
				sat = val
			case use.Errors:
				errs = val
			}
		}
		fmt.Fprintf(f.writer, "| %s | %s | %s | %s |\n", resource, util, sat, errs)
	}

	if suggestions := GetDrillDownSuggestions(checks); len(suggestions) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "## Suggested Next Steps")
		fmt.Fprintln(f.writer)
		for _, group := range suggestions {
			fmt.Fprintf(f.writer, "**%s:**\n", group.Metric)
			for _, s := range group.Suggestions {
				fmt.Fprintf(f.writer, "- `%s` - %s\n", s.Command, s.Reason)
			}
			fmt.Fprintln(f.writer)
		}
	}
	return nil
}

func (f *Formatter) renderTSV(checks []use.Check) error {
	fmt.Fprintln(f.writer, "RESOURCE\tTYPE\tVALUE\tRAW_VALUE\tSTATUS\tDESCRIPTION\tSOURCE")
	for _, c := range checks {
		fmt.Fprintf(f.writer, "%s\t%s\t%s\t%.4f\t%s\t%s\t%s\n",
			c.Resource, c.Type, c.Value, c.RawValue,
			c.Status, c.Description, c.Source)
	}
	return nil
}

// filterByStatus returns checks matching any of the given statuses.
func filterByStatus(checks []use.Check, statuses ...use.Status) []use.Check {
	var result []use.Check
	statusSet := make(map[use.Status]bool)
	for _, s := range statuses {
		statusSet[s] = true
	}
	for _, c := range checks {
		if statusSet[c.Status] {
			result = append(result, c)
		}
	}
	return result
}

// interpret returns actionable context for a check with an issue.
func interpret(check use.Check) string {
	switch check.Resource {
	case "Memory":
		if check.Type == use.Saturation {
			return "Page file heavily used. The system is paging committed memory out of RAM."
		}
		return "Physical memory is nearly exhausted. Expect hard faults and trimmed working sets."
	case "Commit":
		if check.Type == use.Saturation {
			return "Commit charge has approached the limit since boot. Allocations may have failed."
		}
		return "Commit charge near the limit. New allocations fail once it is reached."
	case "Processes":
		if check.Type == use.Errors {
			return "No process could be queried. Run elevated to read protected processes."
		}
		return "A single process holds a large share of physical memory."
	}
	return check.Description
}
