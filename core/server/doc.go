// Package server holds the HTTP server configuration.
//
// The cmd package builds the Fiber application from this configuration; features
// only see the API key through the auth middleware.
package server
