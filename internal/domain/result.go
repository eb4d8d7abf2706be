package domain

// ResultStatus tags how a scoring request ended.
type ResultStatus string

const (
	StatusScored         ResultStatus = "scored"
	StatusUnresolvable   ResultStatus = "unresolvable"
	StatusNoFaceDetected ResultStatus = "no_face_detected"
)

// ScoreMethod names what produced a score.
type ScoreMethod string

const (
	MethodEmbedding   ScoreMethod = "embedding"
	MethodRekognition ScoreMethod = "rekognition"
	MethodModel       ScoreMethod = "model"
	MethodHeuristic   ScoreMethod = "heuristic"
)

// Result is the outcome of a face-match or liveness request. Only a scored
// result carries a meaningful Score; the other statuses always report 0.
type Result struct {
	Status ResultStatus
	Score  float64
	Method ScoreMethod
}

func Scored(score float64, method ScoreMethod) Result {
	return Result{Status: StatusScored, Score: score, Method: method}
}

func Unresolvable() Result {
	return Result{Status: StatusUnresolvable}
}

func NoFaceDetected() Result {
	return Result{Status: StatusNoFaceDetected}
}

// Value is the number returned to callers: the score when scored, else 0.
func (r Result) Value() float64 {
	if r.Status != StatusScored {
		return 0
	}
	return r.Score
}
