package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/saturnino-fabrica-de-software/kycscore/internal/provider"
)

const (
	errCodeAccessDenied      = "AccessDeniedException"
	errCodeInvalidParameter  = "InvalidParameterException"
	errCodeInvalidSignature  = "InvalidSignatureException"
	errCodeUnrecognizedToken = "UnrecognizedClientException"
)

// API is the subset of the Rekognition client used by the comparer
type API interface {
	CompareFaces(ctx context.Context, params *rekognition.CompareFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.CompareFacesOutput, error)
}

// NewClient creates a Rekognition client with the provided configuration.
// It uses the AWS default credential chain to authenticate.
func NewClient(ctx context.Context, cfg Config) (*rekognition.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// ParseCompareError interprets CompareFaces errors. Rekognition reports an
// input without a detectable face as InvalidParameterException.
func ParseCompareError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case errCodeInvalidParameter:
			if msg := apiErr.ErrorMessage(); msg != "" {
				return fmt.Errorf("%w: %s", provider.ErrNoFaceDetected, msg)
			}
			return provider.ErrNoFaceDetected
		case errCodeAccessDenied, errCodeInvalidSignature, errCodeUnrecognizedToken:
			return fmt.Errorf("%w: %s", ErrInvalidCredentials, apiErr.ErrorMessage())
		}
	}

	return err
}
