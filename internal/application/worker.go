package application

import "context"

// Worker is a long-running background process such as the cron scheduler.
// Implementations must run until the context is canceled.
type Worker interface {
	Start(ctx context.Context)
}
