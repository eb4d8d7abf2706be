package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Face match
	FaceProvider  string `envconfig:"FACE_PROVIDER" default:"dlib"`
	FaceModelRoot string `envconfig:"FACE_MODEL_ROOT" default:"/srv/models"`
	FaceModel     string `envconfig:"FACE_MODEL" default:"dlib_resnet_v1"`
	AWSRegion     string `envconfig:"AWS_REGION" default:"us-east-1"`

	// DeepFace sidecar (FACE_PROVIDER=deepface)
	DeepFaceURL      string        `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	DeepFaceModel    string        `envconfig:"DEEPFACE_MODEL" default:"ArcFace"`
	DeepFaceDetector string        `envconfig:"DEEPFACE_DETECTOR" default:"retinaface"`
	DeepFaceTimeout  time.Duration `envconfig:"DEEPFACE_TIMEOUT" default:"30s"`

	// Liveness
	LivenessProvider string `envconfig:"LIVENESS_PROVIDER" default:"opencv"`
	LivenessModel    string `envconfig:"LIVENESS_MODEL" default:"/srv/models/silentface.onnx"`
	LivenessDisabled bool   `envconfig:"LIVENESS_DISABLED" default:"false"`

	// Image resolution
	ImageBaseDirs     []string      `envconfig:"IMAGE_BASE_DIRS" default:"/srv,/app"`
	UploadPrefix      string        `envconfig:"UPLOAD_PREFIX" default:"/uploads"`
	ImageFetchTimeout time.Duration `envconfig:"IMAGE_FETCH_TIMEOUT" default:"10s"`
	ImageMaxBytes     int64         `envconfig:"IMAGE_MAX_BYTES" default:"20971520"`

	// Response shape
	ExposeResultStatus bool `envconfig:"EXPOSE_RESULT_STATUS" default:"false"`

	// Audit trail (optional)
	DatabaseURL string `envconfig:"DATABASE_URL"`
	// AuditRetention of 0 keeps audit records forever
	AuditRetention         time.Duration `envconfig:"AUDIT_RETENTION" default:"2160h"`
	AuditRetentionInterval time.Duration `envconfig:"AUDIT_RETENTION_INTERVAL" default:"1h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// AuditEnabled reports whether inference events are persisted to Postgres.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}
