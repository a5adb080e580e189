package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/triage/internal/ranking/application/queries"
	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// ScoreBand buckets a score for display.
type ScoreBand string

const (
	BandHigh   ScoreBand = "high"
	BandMedium ScoreBand = "medium"
	BandLow    ScoreBand = "low"
)

// BandFor returns high above 70, medium above 40, otherwise low.
func BandFor(score float64) ScoreBand {
	switch {
	case score > 70:
		return BandHigh
	case score > 40:
		return BandMedium
	default:
		return BandLow
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)
	bandStyles = map[ScoreBand]lipgloss.Style{
		BandHigh:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		BandMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		BandLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	}
)

func renderBand(score float64) string {
	band := BandFor(score)
	return bandStyles[band].Render(fmt.Sprintf("%6.2f %-6s", score, band))
}

// renderAnalysis prints a ranked batch as a table.
func renderAnalysis(w io.Writer, analysis *queries.AnalysisDTO) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Ranking (%s, %d tasks, today %s)",
		analysis.Strategy, len(analysis.Tasks), analysis.Today)))
	if analysis.CycleDetected {
		fmt.Fprintln(w, warnStyle.Render("Circular dependency: "+strings.Join(analysis.Cycle, " -> ")))
	}
	if len(analysis.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks to rank.")
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for i, t := range analysis.Tasks {
		fmt.Fprintf(w, "%2d. %s  %s\n", i+1, renderBand(t.Score), t.Title)
		fmt.Fprintf(w, "    %s %s", labelStyle.Render("ID:"), t.ID)
		if t.DueDate != nil {
			fmt.Fprintf(w, "  %s %s", labelStyle.Render("Due:"), *t.DueDate)
		}
		if t.QuadrantLabel != "" {
			fmt.Fprintf(w, "  %s %s", labelStyle.Render("Quadrant:"), t.QuadrantLabel)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    %s\n", labelStyle.Render(t.Reason))
	}
}

// renderSuggestions prints the top suggestions.
func renderSuggestions(w io.Writer, strategy string, suggestions []queries.SuggestionDTO) {
	if len(suggestions) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Work on next (%s):", strategy)))
	for i, s := range suggestions {
		fmt.Fprintf(w, "%d. %s  %s\n", i+1, renderBand(s.Score), s.Title)
		fmt.Fprintf(w, "   %s\n", labelStyle.Render(s.Reason))
	}
}

// renderWeights prints one line per strategy with its four weights.
func renderWeights(w io.Writer, source string, weights map[string]domain.WeightVector) {
	if source != "" {
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Weights (%s)", source)))
	}
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-18s", labelStyle.Render("strategy"))
	for _, sig := range domain.Signals() {
		fmt.Fprintf(w, " %11s", labelStyle.Render(sig.String()))
	}
	fmt.Fprintln(w)
	for _, name := range names {
		fmt.Fprintf(w, "%-18s", name)
		for _, sig := range domain.Signals() {
			fmt.Fprintf(w, " %11.4f", weights[name][sig])
		}
		fmt.Fprintln(w)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
