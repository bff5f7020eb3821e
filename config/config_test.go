package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/attachly/config"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, 5708, cfg.Server.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Server.MaxUploadSize)
	assert.False(t, cfg.Server.Metrics)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "attachly.db", cfg.Database.DSN)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "attachments", cfg.Database.Tables.Attachments)
	assert.Equal(t, "user_preferences", cfg.Database.Tables.Preferences)
	assert.Equal(t, "jwt", cfg.Identity.Type)
	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"authorization", "x-client-info", "apikey", "content-type"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 9000, cfg.Devstore.Port)
	assert.Equal(t, "./data", cfg.Devstore.Storage)
	assert.Equal(t, "us-east-1", cfg.Devstore.Region)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
env: prod
server:
  port: 8080
  max_upload_size: 1048576
  metrics: true
database:
  type: postgres
  dsn: postgres://localhost/test
  tables:
    attachments: note_attachments
    preferences: profiles
identity:
  type: oidc
  oidc:
    issuer: https://id.example.com
    client_id: notes-app
devstore:
  port: 9100
  storage: /tmp/objects
  region: eu-west-1
  keys:
    inline:
      - access_key: AKIADEV
        secret_key: devsecret
log:
  level: debug
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadSize)
	assert.True(t, cfg.Server.Metrics)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "postgres://localhost/test", cfg.Database.DSN)
	assert.Equal(t, "note_attachments", cfg.Database.Tables.Attachments)
	assert.Equal(t, "profiles", cfg.Database.Tables.Preferences)
	assert.Equal(t, "oidc", cfg.Identity.Type)
	assert.Equal(t, "https://id.example.com", cfg.Identity.OIDC.Issuer)
	assert.Equal(t, "notes-app", cfg.Identity.OIDC.ClientID)
	assert.Equal(t, 9100, cfg.Devstore.Port)
	assert.Equal(t, "/tmp/objects", cfg.Devstore.Storage)
	assert.Equal(t, "eu-west-1", cfg.Devstore.Region)
	require.Len(t, cfg.Devstore.Keys.Inline, 1)
	assert.Equal(t, "AKIADEV", cfg.Devstore.Keys.Inline[0].AccessKey)
	assert.Equal(t, "devsecret", cfg.Devstore.Keys.Inline[0].SecretKey)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	basePath := writeConfig(t, "base.yaml", `
server:
  port: 5708
database:
  type: sqlite
  dsn: attachly.db
identity:
  type: jwt
  jwt:
    secret: base-secret
    issuer: notes
log:
  level: info
`)

	overridePath := writeConfig(t, "override.yaml", `
server:
  port: 9000
identity:
  jwt:
    secret: override-secret
`)

	// Load with merge (later files override earlier)
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "override-secret", cfg.Identity.JWT.Secret)

	// Preserved values from base
	assert.Equal(t, "notes", cfg.Identity.JWT.Issuer)
	assert.Equal(t, "sqlite", cfg.Database.Type)
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid port", content: "server:\n  port: 70000\n"},
		{name: "upload limit above 50MB", content: "server:\n  max_upload_size: 52428801\n"},
		{name: "unknown database", content: "database:\n  type: mysql\n"},
		{name: "unknown identity provider", content: "identity:\n  type: basic\n"},
		{name: "unknown env", content: "env: staging\n"},
		{name: "invalid log level", content: "log:\n  level: trace\n"},
		{name: "invalid table name", content: "database:\n  tables:\n    attachments: Bad-Name\n"},
		{name: "same table twice", content: "database:\n  tables:\n    attachments: data\n    preferences: data\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)

			_, err := config.Load([]string{path}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "validate config")
		})
	}
}

func TestLoad_WithCORS(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", `
cors:
  enabled: true
  allowed_origins:
    - https://notes.example.com
  allowed_methods:
    - POST
  allowed_headers:
    - Authorization
  max_age: 600
`)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.True(t, cfg.CORS.Enabled)
	assert.Equal(t, []string{"https://notes.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, []string{"POST"}, cfg.CORS.AllowedMethods)
	assert.Equal(t, []string{"Authorization"}, cfg.CORS.AllowedHeaders)
	assert.Equal(t, 600, cfg.CORS.MaxAge)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ATTACHLY_SERVER_PORT", "9090")
	t.Setenv("ATTACHLY_DATABASE_TYPE", "postgres")
	t.Setenv("ATTACHLY_IDENTITY_JWT_SECRET", "from-env")

	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "from-env", cfg.Identity.JWT.Secret)
}

func TestLoad_Flags(t *testing.T) {
	configPath := writeConfig(t, "config.yaml", "server:\n  port: 8080\ndatabase:\n  dsn: from-file.db\n")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 5708, "")
	flags.String("db-dsn", "attachly.db", "")
	flags.String("log-level", "info", "")
	require.NoError(t, flags.Parse([]string{"--port", "7000", "--log-level", "warn"}))

	cfg, err := config.Load([]string{configPath}, flags)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port, "explicit flag wins over file")
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "from-file.db", cfg.Database.DSN, "unset flag does not override file")
}

func TestFromContext_Missing(t *testing.T) {
	_, err := config.FromContext(context.Background())
	assert.Error(t, err)
}
