package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `{
		"source":  { "path": "claims.csv", "delimiter": ";" },
		"storage": { "kind": "sqlite", "dsn": "file:claims.db" },
		"runtime": { "batch_size": 25 },
		"header_map": { "Chg Amt": "charge_amount" }
	}`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Source.Path != "claims.csv" || c.Source.Delimiter != ";" {
		t.Errorf("source = %+v", c.Source)
	}
	if c.Storage.Kind != "sqlite" || c.Storage.DSN != "file:claims.db" {
		t.Errorf("storage = %+v", c.Storage)
	}
	if c.Runtime.BatchSize != 25 {
		t.Errorf("batch size = %d", c.Runtime.BatchSize)
	}
	if c.HeaderMap["Chg Amt"] != "charge_amount" {
		t.Errorf("header map = %v", c.HeaderMap)
	}
}

func TestLoadUnknownField(t *testing.T) {
	path := writeConfig(t, `{"storge": {"kind": "sqlite"}}`)
	if _, err := Load(path); err == nil {
		t.Fatal("misspelled key should fail to decode")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("missing file should error")
	}
}

func hasIssue(issues []Issue, sev Severity, path string) bool {
	for _, i := range issues {
		if i.Severity == sev && i.Path == path {
			return true
		}
	}
	return false
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Config
		sev     Severity
		path    string
		wantHit bool
	}{
		{
			name:    "valid postgres config",
			c:       Config{Storage: Storage{Kind: "postgres", DSN: "postgresql://x"}},
			wantHit: false,
		},
		{
			name:    "missing storage kind",
			c:       Config{},
			sev:     SeverityError,
			path:    "storage.kind",
			wantHit: true,
		},
		{
			name:    "unknown storage kind",
			c:       Config{Storage: Storage{Kind: "oracle"}},
			sev:     SeverityError,
			path:    "storage.kind",
			wantHit: true,
		},
		{
			name:    "negative batch size",
			c:       Config{Storage: Storage{Kind: "sqlite"}, Runtime: Runtime{BatchSize: -1}},
			sev:     SeverityError,
			path:    "runtime.batch_size",
			wantHit: true,
		},
		{
			name:    "oversized batch size warns",
			c:       Config{Storage: Storage{Kind: "sqlite"}, Runtime: Runtime{BatchSize: 5000}},
			sev:     SeverityWarning,
			path:    "runtime.batch_size",
			wantHit: true,
		},
		{
			name: "header map to unknown column",
			c: Config{
				Storage:   Storage{Kind: "sqlite"},
				HeaderMap: map[string]string{"Chg Amt": "not_a_column"},
			},
			sev:     SeverityError,
			path:    "header_map.Chg Amt",
			wantHit: true,
		},
		{
			name: "header map to known column is clean",
			c: Config{
				Storage:   Storage{Kind: "sqlite"},
				HeaderMap: map[string]string{"Chg Amt": "charge_amount"},
			},
			wantHit: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Validate(tt.c)
			if !tt.wantHit {
				if len(issues) != 0 {
					t.Fatalf("unexpected issues: %+v", issues)
				}
				return
			}
			if !hasIssue(issues, tt.sev, tt.path) {
				t.Fatalf("want %s at %s, got %+v", tt.sev, tt.path, issues)
			}
		})
	}
}
