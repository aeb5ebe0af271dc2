// Package pipeline coordinates the document processing stages. A processor
// claims a pending job, extracts text, infers the company name, enriches it
// with directory data, and commits exactly one terminal state. Failures are
// recorded on the job record; callers only see store-level errors.
package pipeline
