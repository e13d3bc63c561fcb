// Package config provides configuration management for the planning service.
//
// It utilizes Viper for loading configuration from environment variables and an
// optional .env file. Defaults are declared on the partial config structs with a
// `default` tag and registered reflectively, so every key can be overridden by an
// environment variable (e.g. QUEUE_REDIS_ADDR -> queue.redis_addr).
//
// # Configuration Structure
//
//   - Server: HTTP port and API key
//   - Database: MySQL (or SQLite) connection details
//   - Storage: S3/MinIO credentials and report archive settings
//   - Log: Logging level and format
//   - Remote: remote case/folder service endpoint, timeouts, retries and rate limit
//   - Queue: Redis-backed task queue and distributed per-item lock
//   - Reconcile: fallback site ids, cleanup strictness, lock timeout
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Remote.BaseURL)
package config
