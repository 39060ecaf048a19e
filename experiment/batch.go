package experiment

import (
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/duet/analysis"
)

// Batch aggregates the outcomes of a set of runs.
type Batch struct {
	Runs []*Run
}

// NewBatch wraps finished runs for aggregate inspection.
func NewBatch(runs []*Run) *Batch {
	return &Batch{Runs: runs}
}

// Size returns the number of runs in the batch.
func (b *Batch) Size() int {
	return len(b.Runs)
}

// AttractorRate returns the fraction of runs with a detected attractor.
func (b *Batch) AttractorRate() float64 {
	if len(b.Runs) == 0 {
		return 0
	}

	detected := 0
	for _, run := range b.Runs {
		if run.Analysis.AttractorDetected {
			detected++
		}
	}

	return float64(detected) / float64(len(b.Runs))
}

// AvgOnsetTurn returns the mean attractor onset turn across detected
// runs. The second result is false when no run detected an attractor.
func (b *Batch) AvgOnsetTurn() (float64, bool) {
	sum, detected := 0, 0
	for _, run := range b.Runs {
		if run.Analysis.AttractorTurn == nil {
			continue
		}
		sum += *run.Analysis.AttractorTurn
		detected++
	}

	if detected == 0 {
		return 0, false
	}

	return float64(sum) / float64(detected), true
}

// FinalPhases returns the distribution of final phases across runs.
func (b *Batch) FinalPhases() map[analysis.Phase]int {
	phases := make(map[analysis.Phase]int)
	for _, run := range b.Runs {
		phases[run.Analysis.FinalPhase]++
	}
	return phases
}

// WriteSummary renders a human-readable aggregate of the batch to w.
func (b *Batch) WriteSummary(w io.Writer) error {
	var sb strings.Builder

	divider := strings.Repeat("=", 60)
	fmt.Fprintf(&sb, "%s\nEXPERIMENT BATCH SUMMARY\n%s\n\n", divider, divider)

	fmt.Fprintf(&sb, "Runs:           %d\n", b.Size())
	fmt.Fprintf(&sb, "Attractor rate: %.1f%%\n", 100*b.AttractorRate())
	if avg, ok := b.AvgOnsetTurn(); ok {
		fmt.Fprintf(&sb, "Avg onset turn: %.1f\n", avg)
	}

	phases := b.FinalPhases()
	if len(phases) > 0 {
		fmt.Fprintf(&sb, "\nFinal phases:\n")
		for _, p := range []analysis.Phase{
			analysis.PhasePhilosophical,
			analysis.PhaseGratitude,
			analysis.PhaseSpiritual,
			analysis.PhaseNeutral,
			analysis.PhaseUnknown,
		} {
			if count, ok := phases[p]; ok {
				fmt.Fprintf(&sb, "  %-14s %d\n", string(p)+":", count)
			}
		}
	}

	if len(b.Runs) > 0 {
		fmt.Fprintf(&sb, "\nPer run:\n")
		for _, run := range b.Runs {
			onset := "-"
			if run.Analysis.AttractorTurn != nil {
				onset = fmt.Sprintf("%d", *run.Analysis.AttractorTurn)
			}
			fmt.Fprintf(&sb, "  %s  turns=%d attractor=%t onset=%s final=%s\n",
				run.ID,
				run.Analysis.TotalTurns,
				run.Analysis.AttractorDetected,
				onset,
				run.Analysis.FinalPhase,
			)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
