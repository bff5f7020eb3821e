// Package database connects to the gateway's relational backend.
//
// Two tables are kept: attachment metadata rows and the per-user preference
// blob the storage configuration is read from. Both names are configurable.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, preferences stored as JSONB
//   - SQLite: modernc.org/sqlite, suitable for development and single-node deployments
//
// # Usage
//
//	cfg := database.Config{
//	    Type:        "sqlite",
//	    DSN:         "attachly.db",
//	    AutoMigrate: true,
//	    Tables: attachly.Tables{
//	        Attachments: "attachments",
//	        Preferences: "user_preferences",
//	    },
//	}
//
//	db, err := database.Open(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	svc := attachly.NewAttachmentService(db.Attachments(), store)
//	resolver := prefs.NewResolver(db.Preferences())
//
// Connect only opens the connection. Open additionally pings, migrates when
// AutoMigrate is set and validates the schema.
package database
