// Package worker moves accepted uploads into background processing. A
// dispatcher stamps a task token on the job and either runs the pipeline on
// an in-process goroutine or publishes the task to a NATS subject where a
// queue-group worker pool picks it up.
package worker
