// Package config loads configuration for fetchkit programs and watches
// configuration files for changes.
//
// LoadConfig uses Viper to read a YAML file found in standard locations (or
// given explicitly), then overlays environment variables carrying the
// FETCH_ prefix and any .env file loaded with godotenv:
//
//	var cfg AppConfig
//	err := config.LoadConfig("fetch", &cfg, config.WithConfigFile("fetch.yml"))
//
// FETCH_CLIENT_BASE=https://api.example.com overrides client.base.
//
// Watch reports writes to a file through fsnotify so long-running programs
// can apply configuration changes without a restart.
package config
