// Package recognition turns a normalized meal photo into food detections.
//
// Three backends share one contract: Mock draws from the embedded nutrition
// table, Hosted asks a multimodal model, and Offline reports that recognition
// could not run at all. The backend is chosen once at startup by Select.
package recognition

import (
	"context"
	"strings"

	"CalorAI/internal/entity"
	"CalorAI/pkg/imaging"

	"github.com/sirupsen/logrus"
)

const (
	ModeAuto    = "auto"
	ModeMock    = "mock"
	ModeOffline = "offline"
)

// Result is the outcome of one recognition call. Unavailable is only set by
// the Offline backend. Degraded marks a hosted call that failed and was
// replaced by an empty result.
type Result struct {
	Detections  []entity.FoodDetection
	Confidence  float64
	Unavailable bool
	Degraded    bool
}

type Backend interface {
	Name() string
	Recognize(ctx context.Context, img *imaging.NormalizedImage) (Result, error)
}

// VisionModel is a hosted multimodal model that answers a prompt about an
// image with free text.
type VisionModel interface {
	Describe(ctx context.Context, image []byte, mimeType string, prompt string) (string, error)
}

type Selection struct {
	Mode              string
	Provider          string
	Vision            VisionModel
	AllowMockFallback bool
	MockOptions       []MockOption
	Logger            *logrus.Logger
}

// Select picks the backend for the lifetime of the process and explains why.
// A missing vision model in auto mode falls back to Mock when allowed and to
// Offline otherwise.
func Select(s Selection) (Backend, string) {
	switch strings.ToLower(strings.TrimSpace(s.Mode)) {
	case ModeMock:
		return NewMock(s.MockOptions...), "mock mode requested"
	case ModeOffline:
		return NewOffline(), "offline mode requested"
	}

	if s.Vision != nil {
		return NewHosted(s.Provider, s.Vision, s.Logger), "hosted vision model configured"
	}

	if s.AllowMockFallback {
		return NewMock(s.MockOptions...), "no hosted vision model configured, using mock fallback"
	}

	return NewOffline(), "no hosted vision model configured and mock fallback disabled"
}

type Offline struct{}

func NewOffline() *Offline {
	return &Offline{}
}

func (o *Offline) Name() string {
	return ModeOffline
}

func (o *Offline) Recognize(ctx context.Context, img *imaging.NormalizedImage) (Result, error) {
	return Result{Detections: []entity.FoodDetection{}, Unavailable: true}, nil
}
