// Package services holds error classification shared by the external service
// clients and the pipeline orchestrator.
package services
