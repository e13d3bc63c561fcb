// Package queue carries ItemChanged events over Redis with hibiken/asynq and
// provides the distributed per-item lock (bsm/redislock) used when several
// workers or API replicas reconcile concurrently.
//
// The Publisher enqueues events, the Worker consumes them and calls the
// reconciliation engine. Retryable engine failures (apperr.IsRetryable) are
// redelivered; the rest are wrapped with asynq.SkipRetry.
package queue
