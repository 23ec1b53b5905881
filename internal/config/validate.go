package config

import "claimstats/pkg/claims"

// Severity classifies a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one validation finding, with a dotted path into the config.
type Issue struct {
	Severity Severity
	Path     string
	Message  string
}

// Validate checks a config for problems. Errors make the config unusable;
// warnings are advisory.
func Validate(c Config) []Issue {
	var issues []Issue
	errf := func(path, msg string) { issues = append(issues, Issue{SeverityError, path, msg}) }
	warnf := func(path, msg string) { issues = append(issues, Issue{SeverityWarning, path, msg}) }

	switch c.Storage.Kind {
	case "postgres", "sqlite":
	case "":
		errf("storage.kind", "storage kind is required (postgres or sqlite)")
	default:
		errf("storage.kind", "unknown storage kind "+c.Storage.Kind)
	}

	if c.Runtime.BatchSize < 0 {
		errf("runtime.batch_size", "batch size must not be negative")
	}
	if c.Runtime.BatchSize > 1000 {
		warnf("runtime.batch_size", "very large batch sizes make the per-record fallback expensive")
	}

	known := map[string]bool{}
	for _, col := range claims.Columns() {
		known[col] = true
	}
	for header, target := range c.HeaderMap {
		if !known[target] {
			errf("header_map."+header, "unknown canonical column "+target)
		}
	}

	return issues
}
