package face

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/config"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/imageref"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/dlib"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/opencv"
	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider/rekognition"
)

// ProviderType defines supported model providers
type ProviderType string

const (
	// ProviderTypeDlib is the local dlib ResNet face model (default for face-match)
	ProviderTypeDlib ProviderType = "dlib"
	// ProviderTypeDeepFace is a DeepFace HTTP sidecar computing embeddings
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is the AWS Rekognition CompareFaces API
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeOpenCV is the local ONNX liveness network (default for liveness)
	ProviderTypeOpenCV ProviderType = "opencv"
	// ProviderTypeMock is deterministic and needs no weights, for dev/test
	ProviderTypeMock ProviderType = "mock"
)

// FaceBackend is what the face-match service scores with. Exactly one of
// Analyzer and Comparer is set.
type FaceBackend struct {
	Analyzer provider.FaceAnalyzer
	Comparer provider.FaceComparer
	Loader   provider.Loader
	close    func()
}

// Close releases native resources held by the backend
func (b *FaceBackend) Close() {
	if b.close != nil {
		b.close()
	}
}

// LivenessBackend is what the liveness service scores with
type LivenessBackend struct {
	Model     provider.LivenessModel
	Sharpness provider.SharpnessMeter
	Loader    provider.Loader
	close     func()
}

// Close releases native resources held by the backend
func (b *LivenessBackend) Close() {
	if b.close != nil {
		b.close()
	}
}

// NewFaceBackend creates the face-match backend selected by configuration.
//
// Environment variables:
//   - FACE_PROVIDER: "dlib", "deepface", "rekognition" or "mock" (default: "dlib")
//   - FACE_MODEL_ROOT, FACE_MODEL: dlib weights directory
//   - DEEPFACE_URL, DEEPFACE_MODEL, DEEPFACE_DETECTOR, DEEPFACE_TIMEOUT: sidecar settings
//   - AWS_REGION: AWS region for Rekognition (default: "us-east-1")
//   - AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY: via the AWS SDK credential chain
func NewFaceBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*FaceBackend, error) {
	switch ProviderType(cfg.FaceProvider) {
	case ProviderTypeDlib, "":
		rec := dlib.NewRecognizer(dlib.Config{
			ModelRoot: cfg.FaceModelRoot,
			Model:     cfg.FaceModel,
		}, logger)
		return &FaceBackend{Analyzer: rec, Loader: rec, close: rec.Close}, nil

	case ProviderTypeDeepFace:
		analyzer := deepface.NewAnalyzer(deepFaceConfig(cfg))
		return &FaceBackend{Analyzer: analyzer, Loader: analyzer}, nil

	case ProviderTypeRekognition:
		return createRekognitionBackend(ctx, cfg)

	case ProviderTypeMock:
		p := mock.New()
		return &FaceBackend{Analyzer: p, Loader: p}, nil

	default:
		return nil, fmt.Errorf("unknown face provider: %s (supported: %s, %s, %s, %s)",
			cfg.FaceProvider, ProviderTypeDlib, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

func deepFaceConfig(cfg *config.Config) deepface.Config {
	dfConfig := deepface.DefaultConfig()
	if cfg.DeepFaceURL != "" {
		dfConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		dfConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceDetector != "" {
		dfConfig.Detector = cfg.DeepFaceDetector
	}
	if cfg.DeepFaceTimeout > 0 {
		dfConfig.Timeout = cfg.DeepFaceTimeout
	}
	return dfConfig
}

// createRekognitionBackend creates an AWS Rekognition comparer
func createRekognitionBackend(ctx context.Context, cfg *config.Config) (*FaceBackend, error) {
	rekogConfig := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rekogConfig.Region = cfg.AWSRegion
	}

	client, err := rekognition.NewClient(ctx, rekogConfig)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}

	return &FaceBackend{
		Comparer: rekognition.NewComparer(client, rekogConfig),
		Loader:   remoteLoader{},
	}, nil
}

// NewLivenessBackend creates the liveness backend selected by configuration.
//
// Environment variables:
//   - LIVENESS_PROVIDER: "opencv" or "mock" (default: "opencv")
//   - LIVENESS_MODEL: ONNX network path
//   - LIVENESS_DISABLED: skip the network and score sharpness only
func NewLivenessBackend(cfg *config.Config, logger *slog.Logger) (*LivenessBackend, error) {
	switch ProviderType(cfg.LivenessProvider) {
	case ProviderTypeOpenCV, "":
		l := opencv.NewLiveness(opencv.Config{
			ModelPath: cfg.LivenessModel,
			Disabled:  cfg.LivenessDisabled,
		}, logger)
		return &LivenessBackend{Model: l, Sharpness: l, Loader: l, close: l.Close}, nil

	case ProviderTypeMock:
		p := mock.New()
		var model provider.LivenessModel = p
		if cfg.LivenessDisabled {
			model = disabledModel{}
		}
		return &LivenessBackend{Model: model, Sharpness: p, Loader: p}, nil

	default:
		return nil, fmt.Errorf("unknown liveness provider: %s (supported: %s, %s)",
			cfg.LivenessProvider, ProviderTypeOpenCV, ProviderTypeMock)
	}
}

// remoteLoader reports a hosted model as always loaded
type remoteLoader struct{}

func (remoteLoader) Loaded() bool { return true }

// disabledModel always routes callers to the heuristic
type disabledModel struct{}

func (disabledModel) Available() bool { return false }

func (disabledModel) Predict(context.Context, image.Image) (float64, error) {
	return 0, provider.ErrModelUnavailable
}

// NewImageResolver builds the image resolver shared by both services
func NewImageResolver(cfg *config.Config, logger *slog.Logger) *imageref.Resolver {
	resolverConfig := imageref.DefaultConfig()
	if len(cfg.ImageBaseDirs) > 0 {
		resolverConfig.BaseDirs = cfg.ImageBaseDirs
	}
	if cfg.UploadPrefix != "" {
		resolverConfig.UploadPrefix = cfg.UploadPrefix
	}
	if cfg.ImageFetchTimeout > 0 {
		resolverConfig.Timeout = cfg.ImageFetchTimeout
	}
	if cfg.ImageMaxBytes > 0 {
		resolverConfig.MaxBytes = cfg.ImageMaxBytes
	}
	return imageref.NewResolver(resolverConfig, logger)
}
