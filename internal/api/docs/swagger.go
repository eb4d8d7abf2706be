package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// FaceMatchRequest represents the body of a face-match request
type FaceMatchRequest struct {
	ICFrontURL string `json:"icFrontUrl" example:"/uploads/kyc/ic-front.jpg"`
	SelfieURL  string `json:"selfieUrl" example:"https://cdn.example.com/selfie.jpg"`
}

// LivenessRequest represents the body of a liveness request
type LivenessRequest struct {
	SelfieURL string `json:"selfieUrl" example:"/uploads/kyc/selfie.jpg"`
}

// ScoreResponse represents a score. Status is present only when the service
// exposes result statuses.
type ScoreResponse struct {
	Score  float64 `json:"score" example:"0.8731"`
	Status string  `json:"status,omitempty" example:"scored"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

// HealthResponse represents the liveness probe response
type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Service string `json:"service" example:"face-match"`
	Version string `json:"version" example:"0.1.0"`
}

// ReadyResponse represents the readiness probe response
type ReadyResponse struct {
	Status       string `json:"status" example:"ready"`
	ModelLoaded  bool   `json:"model_loaded" example:"true"`
	LivenessMode string `json:"liveness_mode,omitempty" example:"model"`
	Database     string `json:"database,omitempty" example:"up"`
}

func scoringErrors() []response.Response {
	return []response.Response{
		response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request body"}, "400", "Bad Request"),
		response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "Request validation failed"}, "422", "Unprocessable Entity"),
		response.New(ErrorResponse{Code: "MODEL_FAILED", Message: "Model inference failed"}, "500", "Internal Server Error"),
		response.New(ErrorResponse{Code: "IMAGE_FETCH_FAILED", Message: "Failed to fetch remote image"}, "502", "Bad Gateway"),
	}
}

func healthEndpoints() []*endpoint.EndPoint {
	return []*endpoint.EndPoint{
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is running"),
			}),
		),
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Reports whether the model is loaded. Models load on first use."),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ReadyResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ReadyResponse{Status: "unavailable"}, "503", "Audit database unreachable"),
			}),
		),
	}
}

func newSwagger(title, description string) *swagno.Swagger {
	return swagno.New(swagno.Config{
		Title:       title,
		Version:     "v0.1.0",
		Description: description,
		Host:        "localhost:3000",
		Path:        "/",
	})
}

// NewFaceMatchSwagger documents the face-match service
func NewFaceMatchSwagger() *swagno.Swagger {
	sw := newSwagger("KYC Face Match API", "Scores the similarity between an identity document photo and a selfie")

	endpoints := append(healthEndpoints(),
		endpoint.New(
			endpoint.POST,
			"/face-match",
			endpoint.WithTags("Scoring"),
			endpoint.WithSummary("Compare an identity document photo with a selfie"),
			endpoint.WithDescription("Returns the cosine similarity of the largest face in each image, rounded to 4 decimals. Unresolvable images and images without a face score 0."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(FaceMatchRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScoreResponse{}, "200", "Score computed"),
			}),
			endpoint.WithErrors(scoringErrors()),
		),
	)

	sw.AddEndpoints(endpoints)

	return sw
}

// NewLivenessSwagger documents the liveness service
func NewLivenessSwagger() *swagno.Swagger {
	sw := newSwagger("KYC Liveness API", "Scores whether a selfie shows a live subject")

	endpoints := append(healthEndpoints(),
		endpoint.New(
			endpoint.POST,
			"/liveness",
			endpoint.WithTags("Scoring"),
			endpoint.WithSummary("Score a selfie for liveness"),
			endpoint.WithDescription("Returns the anti-spoofing network score, or a sharpness score when the network is disabled, rounded to 3 decimals."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(LivenessRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(ScoreResponse{Score: 0.912}, "200", "Score computed"),
			}),
			endpoint.WithErrors(scoringErrors()),
		),
	)

	sw.AddEndpoints(endpoints)

	return sw
}
