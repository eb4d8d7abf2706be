package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(*Config) bool
	}{
		{
			name: "loads explicit vars",
			envVars: map[string]string{
				"PORT":                 "8080",
				"ENV":                  "production",
				"FACE_PROVIDER":        "rekognition",
				"FACE_MODEL":           "custom",
				"DEEPFACE_URL":         "http://deepface:5005",
				"LIVENESS_DISABLED":    "1",
				"LIVENESS_PROVIDER":    "mock",
				"IMAGE_BASE_DIRS":      "/data,/mnt/shared",
				"IMAGE_FETCH_TIMEOUT":  "3s",
				"EXPOSE_RESULT_STATUS": "true",
				"DATABASE_URL":         "postgres://localhost/test",
			},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 8080 &&
					c.Environment == "production" &&
					c.FaceProvider == "rekognition" &&
					c.FaceModel == "custom" &&
					c.DeepFaceURL == "http://deepface:5005" &&
					c.LivenessDisabled &&
					c.LivenessProvider == "mock" &&
					len(c.ImageBaseDirs) == 2 &&
					c.ImageBaseDirs[0] == "/data" &&
					c.ImageBaseDirs[1] == "/mnt/shared" &&
					c.ImageFetchTimeout == 3*time.Second &&
					c.ExposeResultStatus &&
					c.AuditEnabled()
			},
		},
		{
			name:    "uses defaults when optional vars missing",
			envVars: map[string]string{},
			wantErr: false,
			check: func(c *Config) bool {
				return c.Port == 3000 &&
					c.Environment == "development" &&
					c.FaceProvider == "dlib" &&
					c.FaceModelRoot == "/srv/models" &&
					c.LivenessModel == "/srv/models/silentface.onnx" &&
					c.LivenessProvider == "opencv" &&
					c.DeepFaceURL == "http://localhost:5005" &&
					c.DeepFaceModel == "ArcFace" &&
					c.DeepFaceTimeout == 30*time.Second &&
					!c.LivenessDisabled &&
					len(c.ImageBaseDirs) == 2 &&
					c.ImageBaseDirs[0] == "/srv" &&
					c.ImageBaseDirs[1] == "/app" &&
					c.UploadPrefix == "/uploads" &&
					c.ImageFetchTimeout == 10*time.Second &&
					c.ImageMaxBytes == 20*1024*1024 &&
					!c.ExposeResultStatus &&
					c.AuditRetention == 90*24*time.Hour &&
					c.AuditRetentionInterval == time.Hour &&
					!c.AuditEnabled()
			},
		},
		{
			name: "fails on malformed port",
			envVars: map[string]string{
				"PORT": "not-a-number",
			},
			wantErr: true,
			check:   nil,
		},
		{
			name: "fails on malformed disable flag",
			envVars: map[string]string{
				"LIVENESS_DISABLED": "maybe",
			},
			wantErr: true,
			check:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg, err := Load()

			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Load() unexpected error: %v", err)
				return
			}

			if tt.check != nil && !tt.check(cfg) {
				t.Errorf("Load() config check failed, got: %+v", cfg)
			}
		})
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"development", "development", true},
		{"production", "production", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsDevelopment(); got != tt.want {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_IsProduction(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want bool
	}{
		{"production", "production", true},
		{"development", "development", false},
		{"staging", "staging", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{Environment: tt.env}
			if got := c.IsProduction(); got != tt.want {
				t.Errorf("IsProduction() = %v, want %v", got, tt.want)
			}
		})
	}
}
