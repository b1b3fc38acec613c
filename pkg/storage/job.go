package storage

import (
	"context"

	"github.com/riverqueue/river"
)

// JobStorage defines the minimal interface for enqueueing background jobs
// (currently only abandoned-cart reaping). Implementations persist the job
// into the underlying queue backend; the args parameter carries the payload
// and opts customizes insertion (queue name, delay, priority).
//
// The boolean result reports whether a job was actually inserted; false means
// an equivalent unique job already existed.
type JobStorage interface {
	// AddJob enqueues a new job with the given arguments. It should be atomic
	// with respect to any surrounding transaction when supported by the backend.
	AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error)
}
