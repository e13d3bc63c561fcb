// Package apperr provides typed domain errors for the planning service.
//
// The reconciliation engine distinguishes three failure classes:
//
//   - Not found: the item is gone or a remote case was already deleted. These are benign
//     and usually never reach the caller.
//   - Remote: the remote case or folder service failed. The run is aborted and the error
//     is returned so the message bus can redeliver the event.
//   - Consistency: a persisted invariant does not hold (two Active planning cases for one
//     item). The run is aborted and the error is logged for an operator.
//
// The HTTP layer maps kinds to status codes with HTTPStatus / StatusOf, and the queue
// worker uses IsRetryable to decide whether a task should be retried.
package apperr
