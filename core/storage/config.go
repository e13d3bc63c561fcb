package storage

// Config holds configuration for the report archive object store.
type Config struct {
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket reconciliation reports are written to.
	Bucket string `mapstructure:"bucket" default:"planning-reports"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ReportPrefix is the key prefix under which run reports are stored.
	ReportPrefix string `mapstructure:"report_prefix" default:"reports"`
	// ArchiveReports enables writing a JSON report per reconciliation run.
	ArchiveReports bool `mapstructure:"archive_reports" default:"false"`
}
