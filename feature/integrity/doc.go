// Package integrity provides system health checks.
//
// Unlike the 'planning' package which reconciles item state, this package validates
// the infrastructure the reconciliation engine depends on.
//
// # Checks Provided
//
//   - Storage: Checks that the report bucket and the report prefix exist (e.g., /reports).
//   - Schema: Validates that the planning tables match the GORM models (columns, types).
//   - Remote: Pings the remote case and folder service.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs storage check (supports ?fix=true).
//   - GET /integrity/schema : Runs schema check.
//   - GET /integrity/remote : Pings the remote service.
package integrity
