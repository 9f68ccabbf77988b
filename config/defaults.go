package config

import "github.com/spf13/viper"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{})

	// Store defaults
	v.SetDefault("store.path", "trail-data")
	v.SetDefault("store.branch", "main")
	v.SetDefault("store.data_file", "data.json")
	v.SetDefault("store.version_file", "version.json")
	v.SetDefault("store.uploads_dir", "uploads")
	v.SetDefault("store.author_name", "trailhead")
	v.SetDefault("store.author_email", "trailhead@mariposa-trails.app")

	// Auth defaults
	v.SetDefault("auth.token_expiry", "1h")
}

// BindSensitiveEnvVars explicitly binds sensitive configuration to the
// environment variable names the deployment environment provides.
func BindSensitiveEnvVars(v *viper.Viper) {
	v.BindEnv("store.token", "GITHUB_TOKEN")
	v.BindEnv("store.repo", "REPO")
	v.BindEnv("auth.admin_password_hash", "ADMIN_PASSWORD_HASH")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("server.port", "PORT")
}
