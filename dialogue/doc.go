// Package dialogue implements the conversation engine: a fixed-length,
// strictly alternating two-party dialogue driven against an injected
// completion model.
//
// Core goals:
//   - Deterministic turn bookkeeping: contiguous turn numbers from 0, role A
//     seeding, role B on odd turns
//   - Perspective-relative history: each speaker sees its own messages as
//     "assistant" and the counterpart's as "user", in chronological order
//   - Partial success as a first-class outcome: completion failures and
//     callback cancellations stop the loop and keep the transcript
//   - Durable transcripts: JSON persistence with a tolerant reader (unknown
//     config fields ignored, missing required fields rejected)
//
// A Conversation is single-use: construct with New, drive with Run exactly
// once, then read, save or analyze the result.
package dialogue
