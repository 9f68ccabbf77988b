// Package config provides Trailhead configuration loading via Viper.
//
// Configuration is resolved from (lowest to highest precedence): built-in
// defaults, an optional trailhead.toml in the working directory, then
// environment variables. The configuration object is constructed once at
// startup and passed down explicitly; nothing in this package is consulted
// at request time.
package config

// Config represents the full Trailhead configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Auth   AuthConfig   `mapstructure:"auth"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Port           int      `mapstructure:"port"`            // Listen port (default: 5000)
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS origins; empty = allow any
}

// StoreConfig configures the versioned blob store backing the trail dataset
type StoreConfig struct {
	Path        string `mapstructure:"path"`         // Local path of the git repository acting as the database
	Repo        string `mapstructure:"repo"`         // owner/name slug of the upstream repository (informational)
	Token       string `mapstructure:"token"`        // Access token for the upstream repository host
	Branch      string `mapstructure:"branch"`       // Branch committed to (default: main)
	DataFile    string `mapstructure:"data_file"`    // Dataset document path within the repo (default: data.json)
	VersionFile string `mapstructure:"version_file"` // Version counter document path (default: version.json)
	UploadsDir  string `mapstructure:"uploads_dir"`  // Directory for relocated attachments (default: uploads)
	AuthorName  string `mapstructure:"author_name"`  // Commit author for store writes
	AuthorEmail string `mapstructure:"author_email"`
}

// AuthConfig configures the write-path auth gate
type AuthConfig struct {
	AdminPasswordHash string `mapstructure:"admin_password_hash"` // bcrypt hash checked at login
	JWTSecret         string `mapstructure:"jwt_secret"`          // HMAC secret for token signing
	TokenExpiry       string `mapstructure:"token_expiry"`        // Duration string (default: 1h)
}

// DefaultServerPort is the listen port when none is configured
const DefaultServerPort = 5000
