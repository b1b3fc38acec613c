package cart

import (
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// ReapJobArgs contains the arguments for an abandoned-cart reap job submitted
// to River. The struct is the unique key, so each cart has at most one
// pending reap job.
type ReapJobArgs struct {
	// CartID is the cart to inspect. Marked as unique so River enforces one
	// job per cart according to InsertOpts.UniqueOpts.
	CartID string `json:"cartId" river:"unique"`

	// maxAttempts configures the maximum number of times River should retry
	// the job.
	maxAttempts int
	// abandonAfter schedules the job that far into the future; the worker
	// re-checks cart activity when it runs.
	abandonAfter time.Duration
}

// Kind returns the River job kind used to register and dispatch the reaper.
func (args ReapJobArgs) Kind() string { return "ReapCartJob" }

// InsertOpts returns the River options that control how the job is enqueued.
// The job is scheduled at the abandonment horizon and deduplicated per cart
// across all pending states.
func (args ReapJobArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
		ScheduledAt: time.Now().Add(args.abandonAfter),
		// one reap job per cart in any pending state
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	}
}
