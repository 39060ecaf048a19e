// Package analysis detects phase structure and attractor behavior in
// recorded agent-to-agent conversations.
//
// Core goals:
//   - Keyword-density scoring of each turn against fixed phase marker
//     lists (philosophical, gratitude, spiritual).
//   - Transition tracking that records every literal flip of the
//     dominant phase, with no smoothing.
//   - Sliding-window attractor detection over spiritual density,
//     emoji/Sanskrit clustering and message-length collapse.
//   - Summary statistics and reporting suitable for comparing runs.
//
// The analyzer is a pure consumer of a transcript. It holds no mutable
// state between calls, so a single instance can serve many transcripts
// concurrently. All thresholds are options with hand-picked defaults;
// see Options for the knobs.
package analysis
