// Package config provides centralized configuration management for sitereg.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

// Config holds all application configuration.
// All settings can be configured via environment variables; the generate
// command can override the input, output and site settings with flags.
type Config struct {
	Input   InputConfig
	Output  OutputConfig
	Sites   SiteConfig
	Apply   ApplyConfig
	Logging LoggingConfig
}

// InputConfig holds spreadsheet source settings.
type InputConfig struct {
	// Path is the spreadsheet to read (.xlsx, .xlsm, .xltx or .csv)
	Path string `env:"SITEREG_INPUT" default:"Data ATP endik.xlsx"`

	// Sheet is the worksheet name; empty selects the first sheet
	Sheet string `env:"SITEREG_SHEET"`
}

// OutputConfig holds output file settings. Both files are overwritten.
type OutputConfig struct {
	// SQLPath is where the INSERT script is written (default: bulk_register_sites.sql)
	SQLPath string `env:"SITEREG_SQL_OUTPUT" default:"bulk_register_sites.sql"`

	// CSVPath is where the bulk-upload CSV is written (default: bulk_sites_register.csv)
	CSVPath string `env:"SITEREG_CSV_OUTPUT" default:"bulk_sites_register.csv"`
}

// SiteConfig holds settings that shape the derived site records.
type SiteConfig struct {
	// CSVATPType selects the ATP type written to the bulk CSV: "both" or "inferred" (default: both)
	CSVATPType string `env:"SITEREG_CSV_ATP_TYPE" default:"both"`

	// ProjectYear is the year embedded in generated project codes (default: 2025)
	ProjectYear int `env:"SITEREG_PROJECT_YEAR" default:"2025"`

	// BaseLatitude is the origin of the placeholder coordinate grid (default: -6.0)
	BaseLatitude float64 `env:"SITEREG_COORD_BASE_LAT" default:"-6.0"`

	// BaseLongitude is the origin of the placeholder coordinate grid (default: 113.0)
	BaseLongitude float64 `env:"SITEREG_COORD_BASE_LNG" default:"113.0"`
}

// ApplyConfig holds the values printed in the "to execute" reminder.
// sitereg never connects to the database itself.
type ApplyConfig struct {
	// SSHTarget is the user@host the operator pipes the script to (default: root@localhost)
	SSHTarget string `env:"SITEREG_SSH_TARGET" default:"root@localhost"`

	// Database is the psql database name (default: apms_staging)
	Database string `env:"SITEREG_PSQL_DATABASE" default:"apms_staging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// CSV ATP type policies accepted by SiteConfig.CSVATPType.
const (
	CSVATPTypeBoth     = "both"
	CSVATPTypeInferred = "inferred"
)
