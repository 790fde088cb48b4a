package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("SEQUENCE_BACKEND", "")

	cfg, err := Load("", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "./billing.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.DatabaseDriver != "sqlite3" {
		t.Errorf("DatabaseDriver = %q", cfg.DatabaseDriver)
	}
	if cfg.SequenceBackend != SequenceStore {
		t.Errorf("SequenceBackend = %q", cfg.SequenceBackend)
	}
	if cfg.ArchiveEnabled() {
		t.Error("archive should be disabled without a bucket")
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	yaml := "database_url: ./from-yaml.db\nsequence_backend: local\ncompany:\n  name: Yaml Plumbing\n"
	if err := os.WriteFile(filepath.Join(dir, "billing.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SEQUENCE_BACKEND", "redis")
	t.Setenv("ARCHIVE_BUCKET", "documents")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "./from-yaml.db" {
		t.Errorf("DatabaseURL = %q, want the yaml value", cfg.DatabaseURL)
	}
	if cfg.SequenceBackend != SequenceRedis {
		t.Errorf("SequenceBackend = %q, env should win over yaml", cfg.SequenceBackend)
	}
	if cfg.Company.Name != "Yaml Plumbing" {
		t.Errorf("Company.Name = %q", cfg.Company.Name)
	}
	if !cfg.ArchiveEnabled() || cfg.Archive.Bucket != "documents" {
		t.Errorf("Archive.Bucket = %q", cfg.Archive.Bucket)
	}
	if got := cfg.GetLoggerConfig().Level; got != "debug" {
		t.Errorf("log level = %q", got)
	}

	cfg, err = Load("./flag.db", "", "local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DatabaseURL != "./flag.db" || cfg.SequenceBackend != SequenceLocal {
		t.Errorf("flags should win, got %q %q", cfg.DatabaseURL, cfg.SequenceBackend)
	}
}

func TestLoadRejectsUnknownBackends(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load("", "", "etcd"); err == nil {
		t.Error("expected an unknown sequence backend to be rejected")
	}
	if _, err := Load("", "mysql", ""); err == nil {
		t.Error("expected an unsupported driver to be rejected")
	}
}

// chdir changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir in Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore working directory: %v", err)
		}
	})
}
