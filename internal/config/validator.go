package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
)

const localhostHost = "localhost"

// Common errors.
var (
	ErrEmptyValue         = errors.New("value cannot be empty")
	ErrFileNotAccessible  = errors.New("file is not accessible")
	ErrDirectoryNotExists = errors.New("directory does not exist")
	ErrInvalidPort        = errors.New("invalid port number")
	ErrInvalidTimeout     = errors.New("invalid timeout value")
	ErrInvalidFormat      = errors.New("invalid format")
)

// Validate checks if the configuration is valid.
func Validate(cfg *Config) error {
	if err := ValidateListener(cfg.Listener); err != nil {
		return fmt.Errorf("listener config: %w", err)
	}

	if err := ValidateServer(cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := ValidateAuth(cfg.Auth); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := ValidateLogging(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	if err := ValidateStore(cfg.Store); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	return nil
}

// ValidateServer validates server configuration.
func ValidateServer(server ServerConfig) error {
	// Validate host if specified.
	if server.Host != "" {
		if ip := net.ParseIP(server.Host); ip == nil && server.Host != localhostHost {
			if _, err := net.LookupHost(server.Host); err != nil {
				return fmt.Errorf("invalid host: %w", err)
			}
		}
	}

	// Validate port.
	if server.Port < 1 || server.Port > 65535 {
		return fmt.Errorf("port %d: %w", server.Port, ErrInvalidPort)
	}

	// Validate timeouts.
	if server.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout: %w", ErrInvalidTimeout)
	}

	if server.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout: %w", ErrInvalidTimeout)
	}

	// Validate TLS settings if enabled.
	if server.TLS.Enabled {
		if server.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert file: %w", ErrEmptyValue)
		}

		if server.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file: %w", ErrEmptyValue)
		}

		// Check if cert and key files exist and are readable.
		if err := checkFileReadable(server.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file: %w", err)
		}

		if err := checkFileReadable(server.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file: %w", err)
		}
	}

	return nil
}

// ValidateListener validates the frontend socket listener configuration.
func ValidateListener(listener ListenerConfig) error {
	switch listener.Network {
	case "tcp":
		host, port, err := net.SplitHostPort(listener.Address)
		if err != nil {
			return fmt.Errorf("address %s: %w", listener.Address, err)
		}
		if host != "" && host != localhostHost {
			if ip := net.ParseIP(host); ip == nil {
				if _, err := net.LookupHost(host); err != nil {
					return fmt.Errorf("invalid host: %w", err)
				}
			}
		}
		if port == "" {
			return fmt.Errorf("port: %w", ErrEmptyValue)
		}
	case "unix":
		if listener.Address == "" {
			return fmt.Errorf("socket path: %w", ErrEmptyValue)
		}
	default:
		return fmt.Errorf("network %s: %w", listener.Network, ErrInvalidFormat)
	}

	if listener.MaxConnections < 1 {
		return fmt.Errorf("max connections must be at least 1")
	}

	if listener.TLS.Enabled {
		if listener.TLS.CertFile == "" {
			return fmt.Errorf("TLS cert file: %w", ErrEmptyValue)
		}
		if listener.TLS.KeyFile == "" {
			return fmt.Errorf("TLS key file: %w", ErrEmptyValue)
		}
		if err := checkFileReadable(listener.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file: %w", err)
		}
		if err := checkFileReadable(listener.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file: %w", err)
		}
	}

	return nil
}

// ValidateStore validates the in-memory catalog configuration.
func ValidateStore(store StoreConfig) error {
	if store.IntervalSmoothing < 0 || store.IntervalSmoothing > 1 {
		return fmt.Errorf("interval smoothing %v: %w", store.IntervalSmoothing, ErrInvalidFormat)
	}
	return nil
}

// ValidateAuth validates authentication configuration.
func ValidateAuth(auth AuthConfig) error {
	// If auth is disabled, no need to validate further.
	if !auth.Enabled {
		return nil
	}

	// JWT secret should not be empty.
	if auth.JWTSecretKey == "" {
		return fmt.Errorf("JWT secret key: %w", ErrEmptyValue)
	}

	// Token expiration should be positive.
	if auth.TokenExpiration <= 0 {
		return fmt.Errorf("token expiration: %w", ErrInvalidTimeout)
	}

	// Validate signing method.
	validMethods := map[string]bool{
		"HS256": true,
		"HS384": true,
		"HS512": true,
		"RS256": true,
		"RS384": true,
		"RS512": true,
		"ES256": true,
		"ES384": true,
		"ES512": true,
	}

	if !validMethods[auth.SigningMethod] {
		return fmt.Errorf("signing method %s: %w", auth.SigningMethod, ErrInvalidFormat)
	}

	return nil
}

// ValidateLogging validates logging configuration.
func ValidateLogging(logging LoggingConfig) error {
	// Validate log level.
	validLevels := map[string]bool{
		"debug":  true,
		"info":   true,
		"warn":   true,
		"error":  true,
		"dpanic": true,
		"panic":  true,
		"fatal":  true,
	}

	if !validLevels[strings.ToLower(logging.Level)] {
		return fmt.Errorf("log level %s: %w", logging.Level, ErrInvalidFormat)
	}

	// Validate log format.
	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[strings.ToLower(logging.Format)] {
		return fmt.Errorf("log format %s: %w", logging.Format, ErrInvalidFormat)
	}

	// If file path is specified, ensure directory exists.
	if logging.FilePath != "" {
		dir := filepath.Dir(logging.FilePath)
		if err := checkDirWritable(dir); err != nil {
			return fmt.Errorf("log directory: %w", err)
		}
	}

	// Max size should be positive if set.
	if logging.MaxSize < 0 {
		return fmt.Errorf("max size must be non-negative")
	}

	// Max backups should be non-negative.
	if logging.MaxBackups < 0 {
		return fmt.Errorf("max backups must be non-negative")
	}

	// Max age should be non-negative.
	if logging.MaxAge < 0 {
		return fmt.Errorf("max age must be non-negative")
	}

	return nil
}

// Helper functions.

// checkFileReadable checks if a file exists and is readable.
func checkFileReadable(path string) error {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, ErrFileNotAccessible)
	}
	if err != nil {
		return fmt.Errorf("accessing %s: %w", path, err)
	}

	// Check if file is readable.
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	return nil
}

// checkDirWritable checks if a directory exists and is writable.
func checkDirWritable(path string) error {
	fi, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", path, ErrDirectoryNotExists)
	}
	if err != nil {
		return fmt.Errorf("accessing %s: %w", path, err)
	}

	// Check if it's a directory.
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	// Check if directory is writable by attempting to create a temporary file.
	tempFile := filepath.Join(path, ".sysdbd-write-test")
	f, err := os.Create(tempFile)
	if err != nil {
		return fmt.Errorf("directory %s is not writable: %w", path, err)
	}

	// Clean up the temporary file.
	f.Close()
	os.Remove(tempFile)

	return nil
}
