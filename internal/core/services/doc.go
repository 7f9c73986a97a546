// Package services implements the driving port interfaces.
// Services contain the ingestion and query pipelines and orchestrate
// calls to driven ports (adapters).
//
// Services depend only on domain types and port interfaces.
package services
