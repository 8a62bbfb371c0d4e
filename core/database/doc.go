// Package database handles database connections and schema migration.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and
// tests) connections from the application's configuration.
//
// # Connect
//
// Connect opens the configured driver, enables error translation so unique
// constraint violations surface as gorm.ErrDuplicatedKey, sizes the pool and
// pings the database with the configured timeout.
//
// # Migrate
//
// Migrate runs GORM AutoMigrate for the mirror tables and the starboard
// tables. Unique indexes declared on the models are what serialize concurrent
// writes to the same identity across guilds.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//	err = database.Migrate(db, models.All()...)
package database
