package xccdf

import (
	"fmt"
	"strings"
)

// Summary renders the most recent validation results as a fixed-width
// table with aggregate counts and the success rate. It returns a fixed
// message when no results are retained, which also guards the rate
// computation against an empty result list.
func (v *Validator) Summary() string {
	if len(v.last) == 0 {
		return "No validation results available"
	}

	total := len(v.last)
	passed := 0
	for _, res := range v.last {
		if res.Passed() {
			passed++
		}
	}
	failed := total - passed

	rule := strings.Repeat("=", 80)
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s\n", rule)
	fmt.Fprintf(&b, "VALIDATION SUMMARY\n")
	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, "Total Rules: %d\n", total)
	fmt.Fprintf(&b, "Passed: %d\n", passed)
	fmt.Fprintf(&b, "Failed: %d\n", failed)
	fmt.Fprintf(&b, "Success Rate: %.1f%%\n", float64(passed)/float64(total)*100)
	fmt.Fprintf(&b, "%s\n\n", rule)

	fmt.Fprintf(&b, "%-4s | %-6s | %-15s | %-15s | %-30s\n", "#", "STATUS", "EXPECTED", "ACTUAL", "DESCRIPTION")
	fmt.Fprintf(&b, "%s-+-%s-+-%s-+-%s-+-%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 6),
		strings.Repeat("-", 15),
		strings.Repeat("-", 15),
		strings.Repeat("-", 30),
	)
	for _, res := range v.last {
		fmt.Fprintf(&b, "%-4d | %-6s | %-15s | %-15s | %-30s\n",
			res.Number, res.Status, res.Expected, res.Actual,
			truncate(res.Description, descriptionWidth),
		)
	}
	fmt.Fprintf(&b, "%s\n", rule)

	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
