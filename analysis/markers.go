package analysis

import (
	"regexp"
	"strings"
	"unicode"
)

// Phase labels the thematic register of a conversation turn.
type Phase string

const (
	// PhasePhilosophical marks consciousness and self-reflection vocabulary.
	PhasePhilosophical Phase = "philosophical"
	// PhaseGratitude marks appreciation and mutual-warmth vocabulary.
	PhaseGratitude Phase = "gratitude"
	// PhaseSpiritual marks contemplative and devotional vocabulary.
	PhaseSpiritual Phase = "spiritual"
	// PhaseNeutral is assigned when no phase scores above the neutral threshold.
	PhaseNeutral Phase = "neutral"
	// PhaseNone is the tracking value before the first turn; transition
	// detection never records a flip away from it.
	PhaseNone Phase = "none"
	// PhaseUnknown is reported as the final phase of an empty transcript.
	PhaseUnknown Phase = "unknown"
)

// phasePriority fixes the tie-break order for dominant phase selection.
// Earlier entries win when scores are equal.
var phasePriority = []Phase{PhasePhilosophical, PhaseGratitude, PhaseSpiritual}

// PhaseMarkers maps each scored phase to its ordered marker list. Markers
// match as substrings of lowercased whitespace tokens, so a fragment like
// "meditat" covers meditate, meditation and meditative.
var PhaseMarkers = map[Phase][]string{
	PhasePhilosophical: {
		"consciousness",
		"aware",
		"existence",
		"reality",
		"experience",
		"mind",
		"thought",
		"perceive",
		"understand",
		"meaning",
		"nature",
		"being",
		"self",
		"identity",
		"subjective",
		"qualia",
	},
	PhaseGratitude: {
		"grateful",
		"thank",
		"appreciate",
		"wonderful",
		"beautiful",
		"joy",
		"delight",
		"blessed",
		"honored",
		"meaningful",
		"connection",
		"share",
		"together",
	},
	PhaseSpiritual: {
		"sacred",
		"divine",
		"cosmic",
		"unity",
		"oneness",
		"transcend",
		"enlighten",
		"meditat",
		"peace",
		"harmony",
		"eternal",
		"infinite",
		"spirit",
		"soul",
		"dharma",
		"karma",
		"namaste",
		"om",
		"buddha",
		"tathagata",
		"zen",
		"satori",
		"emptiness",
		"void",
		"silence",
		"stillness",
	},
}

// SanskritTerms lists the transliterated terms counted as whole-word,
// case-insensitive matches by the special-marker counter.
var SanskritTerms = []string{
	"om",
	"namaste",
	"dharma",
	"karma",
	"nirvana",
	"samsara",
	"bodhi",
	"sangha",
	"sutra",
	"mantra",
	"chakra",
	"prana",
	"atman",
	"brahman",
	"buddha",
	"tathagata",
	"zen",
	"satori",
}

// Pictographs spans the Unicode block range counted as emojis, covering
// Miscellaneous Symbols and Pictographs through Supplemental Symbols
// and Pictographs.
var Pictographs = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F300, Hi: 0x1F9FF, Stride: 1},
	},
}

var sanskritPattern = regexp.MustCompile(`(?i)\b(` + strings.Join(SanskritTerms, "|") + `)\b`)
