// Package jobs persists document-processing jobs and their lifecycle state.
//
// A job is created pending, driven through processing by the pipeline, and
// lands in exactly one of the terminal states completed or failed. All
// mutations go through Store.Update, which commits whole records atomically;
// the daemon lock guarantees a single writer process.
package jobs
