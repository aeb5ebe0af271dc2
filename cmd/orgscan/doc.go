// Package main hosts the orgscan CLI entrypoint and command graph.
//
// The Cobra-based command tree runs the API server with its worker pool,
// inspects and maintains the job queue, and scaffolds configuration. Keep
// this package lean: new functionality belongs in the internal packages
// first, surfaced here through dedicated commands or flags.
package main
