package config

import "time"

// Config holds all application configuration
type Config struct {
	Listener ListenerConfig `yaml:"listener" json:"listener"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Store    StoreConfig    `yaml:"store" json:"store"`
	Auth     AuthConfig     `yaml:"auth" json:"auth"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Features FeaturesConfig `yaml:"features" json:"features"`
}

// ListenerConfig holds the configuration of the sysdbd frontend socket that
// speaks the SysDB wire protocol to clients.
type ListenerConfig struct {
	Network        string        `yaml:"network" json:"network"` // "tcp" or "unix"
	Address        string        `yaml:"address" json:"address"` // host:port or socket path
	ReadTimeout    time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout" json:"idleTimeout"`
	MaxConnections int           `yaml:"maxConnections" json:"maxConnections"`
	TLS            TLSConfig     `yaml:"tls" json:"tls"`
}

// StoreConfig holds configuration for the in-memory hierarchical catalog.
type StoreConfig struct {
	// IntervalSmoothing is validated to lie in [0, 1]. internal/store
	// does not read it: the store always gives the previous interval
	// estimate a weight of 0.9 when averaging in a new update.
	IntervalSmoothing float64 `yaml:"intervalSmoothing" json:"intervalSmoothing"`
}

// ServerConfig holds the admin HTTP server configuration (health, metrics,
// login) which is served on a port separate from the socket listener.
type ServerConfig struct {
	Host           string        `yaml:"host" json:"host"`
	Port           int           `yaml:"port" json:"port"`
	Mode           string        `yaml:"mode" json:"mode"`
	ReadTimeout    time.Duration `yaml:"readTimeout" json:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout" json:"writeTimeout"`
	MaxHeaderBytes int           `yaml:"maxHeaderBytes" json:"maxHeaderBytes"`
	TLS            TLSConfig     `yaml:"tls" json:"tls"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled      bool   `yaml:"enabled" json:"enabled"`
	CertFile     string `yaml:"certFile" json:"certFile"`
	KeyFile      string `yaml:"keyFile" json:"keyFile"`
	MinVersion   string `yaml:"minVersion" json:"minVersion"`
	MaxVersion   string `yaml:"maxVersion" json:"maxVersion"`
	CipherSuites string `yaml:"cipherSuites" json:"cipherSuites"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	Enabled         bool          `yaml:"enabled" json:"enabled"`
	JWTSecretKey    string        `yaml:"jwtSecretKey" json:"jwtSecretKey"`
	Issuer          string        `yaml:"issuer" json:"issuer"`
	Audience        string        `yaml:"audience" json:"audience"`
	TokenExpiration time.Duration `yaml:"tokenExpiration" json:"tokenExpiration"`
	SigningMethod   string        `yaml:"signingMethod" json:"signingMethod"`
	DefaultUsers    []DefaultUser `yaml:"defaultUsers" json:"defaultUsers"`
}

// DefaultUser represents a default user to create during system initialization
type DefaultUser struct {
	Username string   `yaml:"username" json:"username"`
	Password string   `yaml:"password" json:"password"`
	Email    string   `yaml:"email" json:"email"`
	Roles    []string `yaml:"roles" json:"roles"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	Format     string `yaml:"format" json:"format"`
	FilePath   string `yaml:"filePath" json:"filePath"`
	MaxSize    int    `yaml:"maxSize" json:"maxSize"`
	MaxBackups int    `yaml:"maxBackups" json:"maxBackups"`
	MaxAge     int    `yaml:"maxAge" json:"maxAge"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// FeaturesConfig holds feature flags
type FeaturesConfig struct {
	Metrics     bool `yaml:"metrics" json:"metrics"`
	RBACEnabled bool `yaml:"rbacEnabled" json:"rbacEnabled"`
	AdminServer bool `yaml:"adminServer" json:"adminServer"`
}
