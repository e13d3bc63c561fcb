// Package middleware groups the HTTP middleware mounted in front of every feature.
//
//   - auth: rejects requests whose X-API-Key header does not match server.api_key
//     with 401. An empty key disables the check, which is how local runs work.
//   - rayid: stores a request id under the "ray_id" locals key and echoes it in the
//     X-Ray-ID response header. logger.WithRayID picks it up so every log line of a
//     request, including the reconciliation run it triggers, can be correlated.
//
// Order matters: rayid first, then request logging, then the public swagger route,
// then auth.
package middleware
