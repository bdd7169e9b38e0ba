package config

const (
	// DefaultDatabasePath is the default path for the sqlite database
	DefaultDatabasePath = "./liftlog.db"

	// DefaultSingleUserID owns every workout when authentication is disabled
	DefaultSingleUserID = "local"

	// DefaultProxyHeader carries the caller identity set by an upstream identity-aware proxy
	DefaultProxyHeader = "X-Forwarded-User"
)

// Supported database drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)
