// Package config provides configuration management for guildkeeper.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags of each
// partial configuration.
//
// # Configuration Structure
//
//   - Server: admin HTTP port and API key
//   - Discord: bot token and gateway intents
//   - Database: driver (mysql, sqlite) and connection details
//   - Storage: S3/MinIO settings for the sync report archive
//   - Log: logging level and format
//   - Reconcile: worker count per apply stage
//   - Locks: shard count of the per-guild lock table
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Discord.Token)
package config
