// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - Normaliser: Cleans raw markdown for one corpus kind
//   - PathResolver: Derives classification metadata from a relative path
//   - IDGenerator: Mints child fragment identifiers
//   - PostProcessor: Splits and enriches parent documents into fragments
//   - SimilarityIndex: Builds, saves and loads searchable fragment indexes
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates for the query pipeline
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - GenerationBackend: Without it, ask is unavailable but ingest, browse and stats work.
//   - FragmentStore: Without it, the index is rebuilt on every start.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
