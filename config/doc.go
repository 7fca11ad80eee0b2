// Package config loads appsettings files, .env files and environment
// variables through viper and resolves them into the typed Settings the
// infrastructure layer is wired from.
package config
