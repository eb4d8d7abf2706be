package rekognition

// Config holds configuration for the AWS Rekognition comparer
type Config struct {
	// Region is the AWS region where Rekognition service will be used (e.g., "us-east-1")
	Region string

	// SimilarityThreshold is the minimum similarity (0.0 to 1.0) Rekognition
	// reports as a match. Zero returns every face pair.
	SimilarityThreshold float64

	// JPEGQuality is used when re-encoding decoded images for upload.
	JPEGQuality int
}

// DefaultConfig returns a Config with default values
func DefaultConfig() Config {
	return Config{
		Region:              "us-east-1",
		SimilarityThreshold: 0,
		JPEGQuality:         92,
	}
}
