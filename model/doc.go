// Package model defines the provider-agnostic completion abstraction the
// dialogue engine is built against.
//
// Core goals:
//   - Keep the boundary to exactly one blocking call per turn (no streaming)
//   - Normalize the request shape: system prompt, relabeled history, model
//     id, token budget
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate deterministic, network-free testing (MockModel)
//
// Providers (e.g. Anthropic, OpenAI) implement the Model interface from this
// package so the engine and experiment runner remain decoupled from vendor
// SDKs.
package model
