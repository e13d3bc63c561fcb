// Package eform is the HTTP client of the remote case and folder service.
//
// It reads templates, creates, looks up and deletes case instances at sites, and
// lists and creates folders. Requests are rate limited with golang.org/x/time/rate
// and transient failures are retried with github.com/sethvargo/go-retry.
//
// A 404 is an absent result (nil record, nil handle, successful delete) so that
// the reconciliation engine can treat "already gone" remote state as benign.
// ReadTemplate is the exception: a missing template is apperr.KindNotFound.
package eform
