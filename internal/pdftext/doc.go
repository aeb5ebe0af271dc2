// Package pdftext extracts plain text from uploaded PDF documents via the
// Poppler pdftotext tool. Extraction failures are tagged as external tool
// errors, which the pipeline treats as fatal for the owning job.
package pdftext
