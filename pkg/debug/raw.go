package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/danpilch/winmem/pkg/use"
)

// DumpRawMetrics outputs every check with its raw value and the native call
// it came from, before threshold evaluation is applied.
func DumpRawMetrics(w io.Writer, checks []use.Check) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Metrics Dump"))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 85)))
	fmt.Fprintf(w, "  %-12s %-12s %-15s %-28s %s\n", "RESOURCE", "TYPE", "RAW VALUE", "VALUE", "SOURCE")
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 85)))

	for _, c := range checks {
		fmt.Fprintf(w, "  %-12s %-12s %-15.4f %-28s %s\n",
			c.Resource, c.Type, c.RawValue, c.Value, dim.Render(c.Source))
	}
}
