package food

import (
	"fmt"

	"CalorAI/pkg/response"
)

var (
	ErrImageRequired          = response.NewKindError(400, "image_required", "image file is required")
	ErrInvalidLimit           = response.NewKindError(400, "invalid_limit", "limit must be between 1 and 100")
	ErrScanNotFound           = response.NewKindError(404, "scan_not_found", "analysis not found")
	ErrPayloadTooLarge        = response.NewKindError(413, "payload_too_large", "image exceeds the maximum upload size")
	ErrUnsupportedFormat      = response.NewKindError(415, "unsupported_format", "unsupported image format")
	ErrImageDecodeFailure     = response.NewKindError(415, "image_decode_failure", "image could not be decoded")
	ErrLowConfidenceDetection = response.NewKindError(422, "food_not_detected", "Unable to detect food with sufficient confidence. Please try another image.")
	ErrPersistenceFailure     = response.NewKindError(500, "persistence_failure", "failed to access analysis storage")
	ErrUploadFailure          = response.NewKindError(500, "upload_failure", "failed to store image")
	ErrRecognitionUnavailable = response.NewKindError(503, "recognition_unavailable", "food recognition is currently unavailable")
)

// LowConfidenceError carries the observed confidence of a rejected analysis.
// It matches ErrLowConfidenceDetection under errors.Is.
type LowConfidenceError struct {
	Confidence float64
}

func NewLowConfidenceError(confidence float64) error {
	return &LowConfidenceError{Confidence: confidence}
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("%s (confidence %.2f)", ErrLowConfidenceDetection.Error(), e.Confidence)
}

func (e *LowConfidenceError) Unwrap() error {
	return ErrLowConfidenceDetection
}
