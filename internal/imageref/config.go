package imageref

import "time"

// Config holds the configuration for the image resolver
type Config struct {
	// BaseDirs are tried in order for relative references and for
	// references under UploadPrefix.
	BaseDirs     []string
	UploadPrefix string
	Timeout      time.Duration
	MaxBytes     int64
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseDirs:     []string{"/srv", "/app"},
		UploadPrefix: "/uploads",
		Timeout:      10 * time.Second,
		MaxBytes:     20 * 1024 * 1024,
	}
}
