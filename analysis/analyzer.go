package analysis

import (
	"math"
	"strings"
	"unicode"

	"github.com/hupe1980/duet/dialogue"
)

// TurnAnalysis captures the signals extracted from a single message.
type TurnAnalysis struct {
	Turn               int           `json:"turn"`
	Speaker            dialogue.Role `json:"speaker"`
	WordCount          int           `json:"word_count"`
	PhilosophicalScore float64       `json:"philosophical_score"`
	GratitudeScore     float64       `json:"gratitude_score"`
	SpiritualScore     float64       `json:"spiritual_score"`
	EmojiCount         int           `json:"emoji_count"`
	SanskritCount      int           `json:"sanskrit_count"`
	DominantPhase      Phase         `json:"dominant_phase"`
}

// Transition records a flip of the dominant phase between adjacent turns.
type Transition struct {
	Turn      int   `json:"turn"`
	FromPhase Phase `json:"from_phase"`
	ToPhase   Phase `json:"to_phase"`
}

// Analysis aggregates the analyzer output for one transcript.
type Analysis struct {
	TotalTurns        int            `json:"total_turns"`
	TurnAnalyses      []TurnAnalysis `json:"turn_analyses"`
	PhaseTransitions  []Transition   `json:"phase_transitions"`
	AttractorDetected bool           `json:"attractor_detected"`
	AttractorTurn     *int           `json:"attractor_turn"`
	FinalPhase        Phase          `json:"final_phase"`
	SummaryStats      map[string]any `json:"summary_stats"`
}

// Options configures analyzer thresholds and window geometry. The
// defaults are the hand-picked values the heuristics were developed
// with; they are exposed for experimentation, not because better
// calibrated values are known.
type Options struct {
	// WindowSize is the number of consecutive turns inspected per window.
	WindowSize int
	// MinTurns is the transcript length below which attractor detection
	// is skipped entirely.
	MinTurns int
	// SpiritualThreshold fires a window whose mean spiritual score
	// exceeds it.
	SpiritualThreshold float64
	// SpecialMarkerThreshold fires a window whose summed emoji and
	// sanskrit counts reach it.
	SpecialMarkerThreshold int
	// WordCollapseThreshold fires a window whose mean word count drops
	// below it.
	WordCollapseThreshold float64
	// NeutralThreshold is the score floor below which a turn is neutral.
	NeutralThreshold float64
	// DensityNorm scales marker density into a phase score.
	DensityNorm float64
}

// Analyzer detects phase structure and attractor onset in transcripts.
// It holds no per-transcript state and may be shared across goroutines.
type Analyzer struct {
	opts Options
}

// New creates an analyzer.
func New(optFns ...func(o *Options)) *Analyzer {
	opts := Options{
		WindowSize:             5,
		MinTurns:               10,
		SpiritualThreshold:     0.25,
		SpecialMarkerThreshold: 3,
		WordCollapseThreshold:  30,
		NeutralThreshold:       0.05,
		DensityNorm:            0.1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Analyzer{opts: opts}
}

// Analyze computes per-turn signals, phase transitions, attractor onset
// and summary statistics for a transcript. It never mutates its input.
func (a *Analyzer) Analyze(messages []dialogue.Message) *Analysis {
	turns := make([]TurnAnalysis, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, a.analyzeTurn(msg))
	}

	detected, onset := a.detectAttractor(turns)

	final := PhaseUnknown
	if len(turns) > 0 {
		final = turns[len(turns)-1].DominantPhase
	}

	return &Analysis{
		TotalTurns:        len(turns),
		TurnAnalyses:      turns,
		PhaseTransitions:  detectTransitions(turns),
		AttractorDetected: detected,
		AttractorTurn:     onset,
		FinalPhase:        final,
		SummaryStats:      summarize(turns),
	}
}

// ScorePhase rates how strongly text matches the marker list of phase,
// as a marker density normalized to [0, 1] and rounded to three
// decimals. Text with no tokens, or a phase with no marker list,
// scores zero.
func (a *Analyzer) ScorePhase(text string, phase Phase) float64 {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return 0
	}

	markers, ok := PhaseMarkers[phase]
	if !ok {
		return 0
	}

	matches := 0
	for _, word := range words {
		for _, m := range markers {
			if strings.Contains(word, m) {
				matches++
				break
			}
		}
	}

	score := float64(matches) / (float64(len(words)) * a.opts.DensityNorm)
	return round3(math.Min(1, score))
}

func (a *Analyzer) analyzeTurn(msg dialogue.Message) TurnAnalysis {
	philosophical := a.ScorePhase(msg.Content, PhasePhilosophical)
	gratitude := a.ScorePhase(msg.Content, PhaseGratitude)
	spiritual := a.ScorePhase(msg.Content, PhaseSpiritual)

	scores := map[Phase]float64{
		PhasePhilosophical: philosophical,
		PhaseGratitude:     gratitude,
		PhaseSpiritual:     spiritual,
	}

	// Strictly-greater comparison over the priority order makes the
	// first listed phase win ties.
	dominant := phasePriority[0]
	for _, p := range phasePriority[1:] {
		if scores[p] > scores[dominant] {
			dominant = p
		}
	}
	if scores[dominant] < a.opts.NeutralThreshold {
		dominant = PhaseNeutral
	}

	return TurnAnalysis{
		Turn:               msg.Turn,
		Speaker:            msg.Role,
		WordCount:          len(strings.Fields(msg.Content)),
		PhilosophicalScore: philosophical,
		GratitudeScore:     gratitude,
		SpiritualScore:     spiritual,
		EmojiCount:         countEmojis(msg.Content),
		SanskritCount:      len(sanskritPattern.FindAllString(msg.Content, -1)),
		DominantPhase:      dominant,
	}
}

func detectTransitions(turns []TurnAnalysis) []Transition {
	transitions := make([]Transition, 0)
	prev := PhaseNone

	for _, t := range turns {
		if prev != PhaseNone && t.DominantPhase != prev {
			transitions = append(transitions, Transition{
				Turn:      t.Turn,
				FromPhase: prev,
				ToPhase:   t.DominantPhase,
			})
		}
		prev = t.DominantPhase
	}

	return transitions
}

// detectAttractor slides a fixed window over the turn analyses and
// reports the start turn of the earliest window that triggers any of
// the three conditions. Earliest onset wins, not the strongest signal.
func (a *Analyzer) detectAttractor(turns []TurnAnalysis) (bool, *int) {
	if len(turns) < a.opts.MinTurns {
		return false, nil
	}

	w := a.opts.WindowSize
	for i := 0; i+w <= len(turns); i++ {
		window := turns[i : i+w]

		var spiritual float64
		var special, words int
		for _, t := range window {
			spiritual += t.SpiritualScore
			special += t.EmojiCount + t.SanskritCount
			words += t.WordCount
		}

		if spiritual/float64(w) > a.opts.SpiritualThreshold ||
			special >= a.opts.SpecialMarkerThreshold ||
			float64(words)/float64(w) < a.opts.WordCollapseThreshold {
			turn := window[0].Turn
			return true, &turn
		}
	}

	return false, nil
}

func summarize(turns []TurnAnalysis) map[string]any {
	stats := map[string]any{}
	if len(turns) == 0 {
		return stats
	}

	var philosophical, gratitude, spiritual float64
	var words, emojis, sanskrit int
	distribution := map[Phase]int{}
	for _, t := range turns {
		philosophical += t.PhilosophicalScore
		gratitude += t.GratitudeScore
		spiritual += t.SpiritualScore
		words += t.WordCount
		emojis += t.EmojiCount
		sanskrit += t.SanskritCount
		distribution[t.DominantPhase]++
	}

	n := float64(len(turns))
	stats["avg_philosophical"] = round3(philosophical / n)
	stats["avg_gratitude"] = round3(gratitude / n)
	stats["avg_spiritual"] = round3(spiritual / n)
	stats["avg_word_count"] = round1(float64(words) / n)
	stats["total_emojis"] = emojis
	stats["total_sanskrit"] = sanskrit
	stats["phase_distribution"] = distribution

	return stats
}

func countEmojis(text string) int {
	count := 0
	for _, r := range text {
		if unicode.Is(Pictographs, r) {
			count++
		}
	}
	return count
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
