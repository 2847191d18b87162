package evaluation

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	reportWidth     = 80
	maxListedNames  = 10
	maxListedErrors = 5
)

type reportStyles struct {
	title   lipgloss.Style
	section lipgloss.Style
	good    lipgloss.Style
	bad     lipgloss.Style
	muted   lipgloss.Style
}

func newReportStyles(w io.Writer) reportStyles {
	r := lipgloss.NewRenderer(w)
	return reportStyles{
		title:   r.NewStyle().Bold(true).Width(reportWidth).Align(lipgloss.Center),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		good:    r.NewStyle().Foreground(lipgloss.Color("42")),
		bad:     r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// WriteReport prints the human-readable evaluation report.
func WriteReport(w io.Writer, r *Results) error {
	s := newReportStyles(w)
	rule := strings.Repeat("=", reportWidth)
	thin := s.muted.Render(strings.Repeat("-", reportWidth))
	var b strings.Builder

	totalGT := len(r.Matches) + len(r.UnmatchedGroundTruth)
	totalPred := len(r.Matches) + len(r.UnmatchedPredicted)

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n\n", rule, s.title.Render("ORG CHART EVALUATION RESULTS"), rule)

	fmt.Fprintln(&b, s.section.Render("📊 NAME MATCHING"))
	fmt.Fprintln(&b, thin)
	fmt.Fprintf(&b, "  Ground Truth Names:  %d\n", totalGT)
	fmt.Fprintf(&b, "  Predicted Names:     %d\n", totalPred)
	fmt.Fprintf(&b, "  Matched:             %d (%.1f%%)\n", len(r.Matches), r.Coverage.Percent)
	fmt.Fprintf(&b, "  Unmatched (GT):      %d\n", len(r.UnmatchedGroundTruth))
	fmt.Fprintf(&b, "  Unmatched (Pred):    %d\n", len(r.UnmatchedPredicted))
	writeNames(&b, s, "Missing from Predicted", r.UnmatchedGroundTruth)
	writeNames(&b, s, "Extra in Predicted", r.UnmatchedPredicted)

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, s.section.Render("📈 COVERAGE METRICS"), thin)
	fmt.Fprintf(&b, "  Employee Coverage: %.1f%% (%d/%d)\n", r.Coverage.Percent, len(r.Matches), totalGT)

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, s.section.Render("👔 MANAGER RELATIONSHIP ACCURACY"), thin)
	fmt.Fprintf(&b, "  Accuracy: %.1f%% (%d/%d)\n", r.Managers.Percent, r.Managers.Correct, r.Managers.Total)
	fmt.Fprintf(&b, "  Correct:  %s\n", s.good.Render(fmt.Sprint(r.Managers.Correct)))
	fmt.Fprintf(&b, "  Errors:   %s\n", s.bad.Render(fmt.Sprint(len(r.Managers.Errors))))
	writeErrors(&b, s, r)

	fmt.Fprintf(&b, "\n%s\n%s\n%s\n", rule, s.section.Render("✅ OVERALL SUMMARY"), thin)
	fmt.Fprintf(&b, "  Name Matching:       %.1f%%\n", r.Coverage.Percent)
	fmt.Fprintf(&b, "  Manager Accuracy:    %.1f%%\n", r.Managers.Percent)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeNames(b *strings.Builder, s reportStyles, heading string, names []string) {
	if len(names) == 0 {
		return
	}
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	fmt.Fprintf(b, "\n  %s (%d):\n", heading, len(sorted))
	for _, name := range sorted[:min(len(sorted), maxListedNames)] {
		fmt.Fprintf(b, "    • %s\n", name)
	}
	if len(sorted) > maxListedNames {
		fmt.Fprintf(b, "    %s\n", s.muted.Render(fmt.Sprintf("... and %d more", len(sorted)-maxListedNames)))
	}
}

func writeErrors(b *strings.Builder, s reportStyles, r *Results) {
	if len(r.Managers.Errors) == 0 {
		return
	}
	fmt.Fprintf(b, "\n  Manager Errors (%d):\n", len(r.Managers.Errors))

	byType := r.ErrorsByType()
	kinds := make([]string, 0, len(byType))
	for k := range byType {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)

	caser := cases.Title(language.English)
	for _, k := range kinds {
		errs := byType[ErrorType(k)]
		fmt.Fprintf(b, "\n  %s (%d):\n", s.bad.Render(caser.String(strings.ReplaceAll(k, "_", " "))), len(errs))
		for _, e := range errs[:min(len(errs), maxListedErrors)] {
			fmt.Fprintf(b, "    • %s\n", e.Employee)
			fmt.Fprintf(b, "      Expected: %s\n", orNone(e.ExpectedManager))
			fmt.Fprintf(b, "      Got:      %s\n", orNone(e.GotManager))
		}
		if len(errs) > maxListedErrors {
			fmt.Fprintf(b, "    %s\n", s.muted.Render(fmt.Sprintf("... and %d more", len(errs)-maxListedErrors)))
		}
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// WriteJSON writes results as indented JSON. Absent managers are empty strings.
func WriteJSON(w io.Writer, r *Results) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(r)
}
