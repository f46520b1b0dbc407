package config

import (
	"fmt"
	"strings"
)

// validateConfig reports every invalid value at once.
func validateConfig(config *Config) error {
	var validationErrors []string

	validationErrors = append(validationErrors, validateLogging(config)...)
	validationErrors = append(validationErrors, validateFaviconStore(config)...)
	validationErrors = append(validationErrors, validateFaviconLimits(config)...)
	validationErrors = append(validationErrors, validateFaviconNetwork(config)...)
	validationErrors = append(validationErrors, validateServer(config)...)

	if len(validationErrors) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(validationErrors, "\n  - "))
	}
	return nil
}

func validateLogging(config *Config) []string {
	var validationErrors []string
	switch config.Logging.Level {
	case "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.level must be one of trace, debug, info, warn, error, disabled (got %q)", config.Logging.Level))
	}
	switch config.Logging.Format {
	case "console", "json":
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("logging.format must be console or json (got %q)", config.Logging.Format))
	}
	return validationErrors
}

func validateFaviconStore(config *Config) []string {
	var validationErrors []string
	f := config.Favicon

	switch f.Store {
	case StoreSQLite, StoreFile, StoreMemory:
	case StoreValkey:
		if strings.TrimSpace(config.Valkey.Address) == "" {
			validationErrors = append(validationErrors, "valkey.address is required when favicon.store is valkey")
		}
	default:
		validationErrors = append(validationErrors,
			fmt.Sprintf("favicon.store must be one of sqlite, file, memory, valkey (got %q)", f.Store))
	}
	if f.StoreQuotaBytes < 0 {
		validationErrors = append(validationErrors, "favicon.store_quota_bytes must be non-negative")
	}
	if config.Valkey.DB < 0 {
		validationErrors = append(validationErrors, "valkey.db must be non-negative")
	}
	return validationErrors
}

func validateFaviconLimits(config *Config) []string {
	var validationErrors []string
	f := config.Favicon

	if f.CacheTTL <= 0 {
		validationErrors = append(validationErrors, "favicon.cache_ttl must be positive")
	}
	if f.FailureCooldown <= 0 {
		validationErrors = append(validationErrors, "favicon.failure_cooldown must be positive")
	}
	if f.MaxEntryBytes <= 0 {
		validationErrors = append(validationErrors, "favicon.max_entry_bytes must be positive")
	}
	if f.MaxTotalBytes < f.MaxEntryBytes {
		validationErrors = append(validationErrors, "favicon.max_total_bytes must be at least favicon.max_entry_bytes")
	}
	if f.StoreQuotaBytes > 0 && f.StoreQuotaBytes < f.MaxTotalBytes {
		validationErrors = append(validationErrors, "favicon.store_quota_bytes must be 0 or at least favicon.max_total_bytes")
	}
	if f.MaxDimension < 0 {
		validationErrors = append(validationErrors, "favicon.max_dimension must be non-negative")
	}
	if f.JobConcurrency < 1 {
		validationErrors = append(validationErrors, "favicon.job_concurrency must be at least 1")
	}
	return validationErrors
}

func validateFaviconNetwork(config *Config) []string {
	var validationErrors []string
	f := config.Favicon

	if strings.Count(f.IconServiceURL, "%s") != 1 {
		validationErrors = append(validationErrors, "favicon.icon_service_url must contain exactly one %s placeholder for the domain")
	}
	if f.ProxyURL != "" && !strings.HasPrefix(f.ProxyURL, "http://") && !strings.HasPrefix(f.ProxyURL, "https://") {
		validationErrors = append(validationErrors, "favicon.proxy_url must be an http(s) URL")
	}
	if f.DirectScheme != "http" && f.DirectScheme != "https" {
		validationErrors = append(validationErrors, "favicon.direct_scheme must be http or https")
	}
	if len(f.DirectPaths) == 0 {
		validationErrors = append(validationErrors, "favicon.direct_paths must not be empty")
	}
	for _, p := range f.DirectPaths {
		if !strings.HasPrefix(p, "/") {
			validationErrors = append(validationErrors, fmt.Sprintf("favicon.direct_paths entry %q must start with /", p))
		}
	}
	if f.TierTimeout <= 0 {
		validationErrors = append(validationErrors, "favicon.tier_timeout must be positive")
	}
	return validationErrors
}

func validateServer(config *Config) []string {
	if strings.TrimSpace(config.Server.Listen) == "" {
		return []string{"server.listen must not be empty"}
	}
	return nil
}
