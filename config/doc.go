// Package config provides configuration loading and validation for attachly.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (ATTACHLY_ prefix)
//  4. CLI flags that were explicitly set
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = config.WithContext(ctx, cfg)
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// Config keys map to environment variables with the ATTACHLY_ prefix:
//   - server.port → ATTACHLY_SERVER_PORT
//   - database.dsn → ATTACHLY_DATABASE_DSN
//   - identity.jwt.secret → ATTACHLY_IDENTITY_JWT_SECRET
//
// # Configuration Structure
//
//   - Server: port, max_upload_size and the metrics switch
//   - Database: type (sqlite or postgres), DSN, auto_migrate and table names
//   - Identity: bearer token verification, jwt or oidc
//   - CORS: cross-origin resource sharing settings
//   - Devstore: port, storage path, region and access keys of the local store
//   - Log: logging level
//
// # Validation
//
//   - Port must be 1-65535
//   - max_upload_size may not exceed 50 MiB
//   - Table names must be distinct lowercase identifiers
//   - Log level must be debug, info, warn, or error
package config
