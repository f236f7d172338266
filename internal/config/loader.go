package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg, err := LoadRaw()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadRaw reads configuration from environment variables and applies
// defaults without validating. Callers that overlay other sources, such as
// command flags, call Validate once the overlay is done.
func LoadRaw() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		if !fieldVal.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		envName := field.Tag.Get("env")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		value := strings.TrimSpace(os.Getenv(envName))
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// databaseNamePattern matches database names that can be embedded in the
// apply command without quoting.
var databaseNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Input / output validation
	if strings.TrimSpace(c.Input.Path) == "" {
		errs = append(errs, "SITEREG_INPUT is required")
	}
	if strings.TrimSpace(c.Output.SQLPath) == "" {
		errs = append(errs, "SITEREG_SQL_OUTPUT is required")
	}
	if strings.TrimSpace(c.Output.CSVPath) == "" {
		errs = append(errs, "SITEREG_CSV_OUTPUT is required")
	}
	if c.Output.SQLPath != "" && filepath.Clean(c.Output.SQLPath) == filepath.Clean(c.Output.CSVPath) {
		errs = append(errs, fmt.Sprintf("SITEREG_SQL_OUTPUT and SITEREG_CSV_OUTPUT must differ (both %q)", c.Output.SQLPath))
	}
	if c.Input.Path != "" && (filepath.Clean(c.Input.Path) == filepath.Clean(c.Output.SQLPath) ||
		filepath.Clean(c.Input.Path) == filepath.Clean(c.Output.CSVPath)) {
		errs = append(errs, fmt.Sprintf("SITEREG_INPUT (%q) must not be an output path", c.Input.Path))
	}

	// Site validation
	validPolicies := map[string]bool{CSVATPTypeBoth: true, CSVATPTypeInferred: true}
	if !validPolicies[strings.ToLower(strings.TrimSpace(c.Sites.CSVATPType))] {
		errs = append(errs, fmt.Sprintf("SITEREG_CSV_ATP_TYPE (%q) must be one of: both, inferred", c.Sites.CSVATPType))
	}
	if c.Sites.ProjectYear < 1 || c.Sites.ProjectYear > 9999 {
		errs = append(errs, fmt.Sprintf("SITEREG_PROJECT_YEAR (%d) must be 1-9999", c.Sites.ProjectYear))
	}
	if c.Sites.BaseLatitude < -90 || c.Sites.BaseLatitude > 90 {
		errs = append(errs, fmt.Sprintf("SITEREG_COORD_BASE_LAT (%v) must be -90..90", c.Sites.BaseLatitude))
	}
	if c.Sites.BaseLongitude < -180 || c.Sites.BaseLongitude > 180 {
		errs = append(errs, fmt.Sprintf("SITEREG_COORD_BASE_LNG (%v) must be -180..180", c.Sites.BaseLongitude))
	}

	// Apply reminder validation
	if strings.TrimSpace(c.Apply.SSHTarget) == "" {
		errs = append(errs, "SITEREG_SSH_TARGET must not be empty")
	}
	if strings.TrimSpace(c.Apply.Database) == "" {
		errs = append(errs, "SITEREG_PSQL_DATABASE must not be empty")
	} else if !databaseNamePattern.MatchString(c.Apply.Database) {
		errs = append(errs, fmt.Sprintf("SITEREG_PSQL_DATABASE (%q) must be a plain database name (letters, digits, _ and -)", c.Apply.Database))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a compact representation of the config for logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Input: {Path: %q, Sheet: %q}, ", c.Input.Path, c.Input.Sheet))
	b.WriteString(fmt.Sprintf("Output: {SQLPath: %q, CSVPath: %q}, ", c.Output.SQLPath, c.Output.CSVPath))
	b.WriteString(fmt.Sprintf("Sites: {CSVATPType: %q, ProjectYear: %d, Base: (%v, %v)}, ",
		c.Sites.CSVATPType, c.Sites.ProjectYear, c.Sites.BaseLatitude, c.Sites.BaseLongitude))
	b.WriteString(fmt.Sprintf("Apply: {SSHTarget: %q, Database: %q}, ", c.Apply.SSHTarget, c.Apply.Database))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
