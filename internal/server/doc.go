// Package server is the HTTP surface of the document pipeline: an upload
// endpoint that accepts PDFs and queues processing, status and listing
// endpoints over the job store, and a health probe.
package server
