// Package config defines the JSON-serializable configuration model for the
// claims pipeline. It is intentionally small, explicit, and dependency-free
// so configs can be loaded from disk and passed through the program without
// additional glue code; decoding is performed by the standard library.
//
// Example (trimmed):
//
//	{
//	  "source":  { "path": "claims_2023.csv", "delimiter": "," },
//	  "storage": { "kind": "postgres", "dsn": "postgresql://...", "claims_table": "claims" },
//	  "runtime": { "batch_size": 50 },
//	  "header_map": { "Chg Amt": "charge_amount" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Source describes the input file for CLI runs. Uploads through the
	// surrounding application bypass this block.
	Source Source `json:"source"`

	// Storage selects and configures the record/summary store backend.
	Storage Storage `json:"storage"`

	// Runtime controls batching.
	Runtime Runtime `json:"runtime"`

	// HeaderMap adds source-header aliases on top of the built-in table.
	// Keys are source header text (any spelling; they are normalized), values
	// are canonical column names such as "charge_amount".
	HeaderMap map[string]string `json:"header_map,omitempty"`
}

// Source identifies the input file.
type Source struct {
	// Path is the local filesystem path to the input file. Files ending in
	// .xlsx go through the spreadsheet reader; everything else is parsed as
	// delimited text.
	Path string `json:"path"`

	// Delimiter is the field delimiter for delimited text. Empty means ','.
	Delimiter string `json:"delimiter,omitempty"`
}

// Storage selects the store backend.
type Storage struct {
	// Kind selects the backend: "postgres" or "sqlite".
	Kind string `json:"kind"`

	// DSN is the backend connection string. For postgres a pgx URL, for
	// sqlite a file path or file: URL. Falls back to the DATABASE_URL
	// environment variable when empty.
	DSN string `json:"dsn"`

	// ClaimsTable and MetricsTable override the default table names
	// ("claims" and "claim_metrics").
	ClaimsTable  string `json:"claims_table,omitempty"`
	MetricsTable string `json:"metrics_table,omitempty"`
}

// Runtime controls batching.
type Runtime struct {
	// BatchSize is the bulk-insert batch size. Zero means the default (50).
	BatchSize int `json:"batch_size"`
}

// Load reads and decodes a config file.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c Config
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return c, nil
}
