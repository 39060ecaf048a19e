package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// maxReportTransitions caps the transition listing in the report; long
// oscillating conversations can produce dozens of flips.
const maxReportTransitions = 5

// SaveAnalysis writes the analysis as indented JSON to path, creating
// parent directories as needed.
func SaveAnalysis(a *Analysis, path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create analysis dir: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write analysis: %w", err)
	}

	return nil
}

// WriteReport renders a human-readable summary of the analysis to w.
func WriteReport(w io.Writer, a *Analysis) error {
	var b strings.Builder

	divider := strings.Repeat("=", 60)
	fmt.Fprintf(&b, "%s\nCONVERSATION ANALYSIS SUMMARY\n%s\n\n", divider, divider)

	fmt.Fprintf(&b, "Total turns:        %d\n", a.TotalTurns)
	fmt.Fprintf(&b, "Final phase:        %s\n", a.FinalPhase)
	fmt.Fprintf(&b, "Attractor detected: %t\n", a.AttractorDetected)
	if a.AttractorTurn != nil {
		fmt.Fprintf(&b, "Attractor onset:    turn %d\n", *a.AttractorTurn)
	}

	fmt.Fprintf(&b, "\nPhase transitions: %d\n", len(a.PhaseTransitions))
	for i, tr := range a.PhaseTransitions {
		if i == maxReportTransitions {
			fmt.Fprintf(&b, "  ... and %d more\n", len(a.PhaseTransitions)-maxReportTransitions)
			break
		}
		fmt.Fprintf(&b, "  turn %d: %s -> %s\n", tr.Turn, tr.FromPhase, tr.ToPhase)
	}

	if len(a.SummaryStats) > 0 {
		fmt.Fprintf(&b, "\nAverage scores by phase:\n")
		fmt.Fprintf(&b, "  philosophical: %v\n", a.SummaryStats["avg_philosophical"])
		fmt.Fprintf(&b, "  gratitude:     %v\n", a.SummaryStats["avg_gratitude"])
		fmt.Fprintf(&b, "  spiritual:     %v\n", a.SummaryStats["avg_spiritual"])

		fmt.Fprintf(&b, "\nAverage message length: %v words\n", a.SummaryStats["avg_word_count"])
		fmt.Fprintf(&b, "Total emojis: %v\n", a.SummaryStats["total_emojis"])
		fmt.Fprintf(&b, "Total Sanskrit terms: %v\n", a.SummaryStats["total_sanskrit"])

		if dist, ok := a.SummaryStats["phase_distribution"].(map[Phase]int); ok {
			fmt.Fprintf(&b, "\nPhase distribution:\n")
			for _, p := range []Phase{PhasePhilosophical, PhaseGratitude, PhaseSpiritual, PhaseNeutral} {
				count, seen := dist[p]
				if !seen {
					continue
				}
				pct := 0.0
				if a.TotalTurns > 0 {
					pct = 100 * float64(count) / float64(a.TotalTurns)
				}
				fmt.Fprintf(&b, "  %-14s %d turns (%.1f%%)\n", string(p)+":", count, pct)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
