// Package experiment orchestrates batches of agent-to-agent dialogue
// runs and collects their outputs.
//
// Core goals:
//   - One-call runs: conversation, analysis and persistence chained
//     behind RunOne, with partial transcripts treated as valid results.
//   - Batching with bounded parallelism and launch-order aggregation.
//   - Pluggable persistence through the OutputStore interface, with
//     directory-backed and in-memory implementations.
//   - Cancellation of in-flight runs by ID without losing the partial
//     transcript.
package experiment
