// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM to configure MySQL (production) or SQLite
// (local runs and tests) connections based on the application's configuration.
//
// # Connect
//
// Connect opens the connection, applies pool settings and verifies it with a ping
// bounded by the configured timeout.
//
// # Schema Inspection
//
// GetTableColumns returns the live column definitions of a table. The integrity
// feature compares them against the planning models to detect schema drift.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "planning_case_sites")
package database
