package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Credentials.Tidal.BaseURL != "https://openapi.tidal.com" {
		t.Errorf("base url = %q", config.Credentials.Tidal.BaseURL)
	}
	if config.Credentials.Tidal.TokenEndpoint != "/v1/oauth2/token" {
		t.Errorf("token endpoint = %q", config.Credentials.Tidal.TokenEndpoint)
	}
	if config.Sync.DefaultQuery != "best rock songs" {
		t.Errorf("default query = %q", config.Sync.DefaultQuery)
	}
	if config.Sync.DefaultTrackLimit != 50 {
		t.Errorf("default track limit = %d", config.Sync.DefaultTrackLimit)
	}
	if config.Database.Path != "tidalbridge.db" {
		t.Errorf("database path = %q", config.Database.Path)
	}
	if config.Server.Port != 8080 {
		t.Errorf("port = %d", config.Server.Port)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("loads a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.tidal]
client_id = "id"
client_secret = "secret"

[sync]
default_query = "jazz classics"
default_track_limit = 25
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.Credentials.Tidal.ClientID != "id" {
			t.Errorf("client id = %q", config.Credentials.Tidal.ClientID)
		}
		if config.Sync.DefaultQuery != "jazz classics" {
			t.Errorf("default query = %q", config.Sync.DefaultQuery)
		}
	})

	t.Run("missing file is an error", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed file")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing credentials rejected", func(t *testing.T) {
		config := DefaultConfig()
		err := config.Validate()
		if !errors.Is(err, ErrMissingCredentials) {
			t.Fatalf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("dummy mode needs no credentials", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Tidal.UseDummy = true
		if err := config.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("non-positive track limit rejected", func(t *testing.T) {
		config := DefaultConfig()
		config.Credentials.Tidal.UseDummy = true
		config.Sync.DefaultTrackLimit = 0
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("creates a loadable template", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile failed: %v", err)
		}
		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config does not load: %v", err)
		}
		if config.Sync.DefaultTrackLimit != 50 {
			t.Errorf("default track limit = %d", config.Sync.DefaultTrackLimit)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists")
		}
	})
}

func TestMigrations(t *testing.T) {
	t.Run("apply and rollback", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := RunMigrations(db); err != nil {
			t.Fatalf("RunMigrations failed: %v", err)
		}

		for _, table := range []string{"artists", "albums"} {
			var name string
			err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
			if err != nil {
				t.Errorf("table %s missing after migration: %v", table, err)
			}
		}

		// Re-running is a no-op.
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second RunMigrations failed: %v", err)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("RollbackMigration failed: %v", err)
		}
		var count int
		if err := db.QueryRow("SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='artists'").Scan(&count); err != nil {
			t.Fatalf("schema query failed: %v", err)
		}
		if count != 0 {
			t.Error("artists table should be gone after rollback")
		}
	})

	t.Run("rollback with nothing applied is an error", func(t *testing.T) {
		db, err := NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with no applied migrations")
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 418, Body: "teapot"}
	if !errors.Is(err, ErrAPIRequest) {
		t.Error("APIError should unwrap to ErrAPIRequest")
	}
	if err.Error() == "" {
		t.Error("expected a message")
	}
}
