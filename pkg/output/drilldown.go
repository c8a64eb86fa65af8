package output

import "github.com/danpilch/winmem/pkg/use"

// Suggestion represents a diagnostic next-step.
type Suggestion struct {
	Tool    string
	Command string
	Reason  string
}

// SuggestionGroup collects the suggestions for one failing metric.
type SuggestionGroup struct {
	Metric      string
	Suggestions []Suggestion
}

// DrillDown returns diagnostic suggestions for a check with issues.
func DrillDown(check use.Check) []Suggestion {
	if check.Status != use.StatusError && check.Status != use.StatusWarning {
		return nil
	}

	switch check.Resource {
	case "Memory":
		s := []Suggestion{
			{"winmem", "winmem workload --top 10", "Largest working sets and private bytes"},
		}
		if check.Type == use.Saturation {
			s = append(s, Suggestion{"winmem", "winmem processes --sort pagefile", "Processes holding page-file backed memory"})
		}
		return s

	case "Commit":
		return []Suggestion{
			{"winmem", "winmem processes --sort private --top 10", "Largest private commit per process"},
			{"winmem", "winmem perf", "Kernel pool and system cache breakdown"},
		}

	case "Processes":
		if check.Type == use.Errors {
			return []Suggestion{
				{"winmem", "winmem processes --failed", "List the processes that could not be opened"},
			}
		}
		return []Suggestion{
			{"winmem", "winmem processes --sort working-set --top 5", "Confirm the dominant working set"},
		}
	}
	return nil
}

// GetDrillDownSuggestions returns suggestions for checks with issues, in
// check order.
func GetDrillDownSuggestions(checks []use.Check) []SuggestionGroup {
	var groups []SuggestionGroup
	for _, c := range checks {
		if suggestions := DrillDown(c); len(suggestions) > 0 {
			groups = append(groups, SuggestionGroup{
				Metric:      c.Resource + " " + string(c.Type),
				Suggestions: suggestions,
			})
		}
	}
	return groups
}
