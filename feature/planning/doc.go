// Package planning exposes the reconciliation engine over HTTP.
//
// # HTTP Endpoints
//
//   - POST /planning/items/:id/reconcile : Runs a reconciliation for the item, or enqueues it
//     when the task queue is enabled (?sync=true forces an inline run).
//   - GET /planning/items/:id/cases : Lists the planning cases of the item with their site rows.
//   - GET /planning/items/:id/reports : Lists archived run ids for the item.
//   - GET /planning/items/:id/reports/:run : Returns one archived run report.
//
// Errors are returned as {"error": ..., "kind": ...} with the status derived from the
// apperr kind (404 not found, 400 validation, 409 conflict, 502 remote, 500 otherwise).
package planning
