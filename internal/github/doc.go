// Package github resolves organization names against the GitHub REST API.
//
// Lookups are best-effort enrichments: rate limits are waited out, network
// errors are retried with backoff, and anything that still fails degrades to
// an absent result rather than an error, so a flaky directory service can
// never fail the owning job.
package github
