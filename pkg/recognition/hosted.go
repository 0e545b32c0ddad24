package recognition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"CalorAI/internal/entity"
	"CalorAI/pkg/imaging"
	"CalorAI/pkg/log"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

const defaultItemConfidence = 0.8

const detectionPrompt = `You are a nutrition assistant. Identify every distinct food item visible in this meal photo.
Respond with ONLY a JSON array, no prose. Each element must be an object with exactly these fields:
"name" (lowercase common name), "confidence" (0 to 1), "calories" (kcal), "protein" (g), "carbs" (g),
"fats" (g), "fiber" (g), "sugar" (g), "sodium" (mg), "portion" (household measure such as "1 cup"),
"weight_grams" (estimated grams on the plate).
All nutrient values must already be scaled to the visible portion, not per 100g.
If no food is visible respond with [].`

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary
	validate = validator.New()

	errNoArray = errors.New("no JSON array in model output")
)

// detectionRecord mirrors the hosted output contract. Pointer fields are
// optional and get explicit defaults.
type detectionRecord struct {
	Name        string   `json:"name" validate:"required"`
	Confidence  *float64 `json:"confidence"`
	Calories    *float64 `json:"calories" validate:"required"`
	Protein     *float64 `json:"protein" validate:"required"`
	Carbs       *float64 `json:"carbs" validate:"required"`
	Fats        *float64 `json:"fats" validate:"required"`
	Fiber       *float64 `json:"fiber"`
	Sugar       *float64 `json:"sugar"`
	Sodium      *float64 `json:"sodium"`
	Portion     string   `json:"portion"`
	WeightGrams float64  `json:"weight_grams" validate:"gt=0"`
}

type Hosted struct {
	provider string
	model    VisionModel
	log      *logrus.Logger
}

func NewHosted(provider string, model VisionModel, logger *logrus.Logger) *Hosted {
	if logger == nil {
		logger = log.Discard()
	}
	return &Hosted{
		provider: provider,
		model:    model,
		log:      logger,
	}
}

func (h *Hosted) Name() string {
	if h.provider == "" {
		return "hosted"
	}
	return "hosted:" + h.provider
}

// Recognize never returns an error for transport or parse failures. Those
// collapse into an empty degraded result so the confidence gate rejects it.
func (h *Hosted) Recognize(ctx context.Context, img *imaging.NormalizedImage) (Result, error) {
	if img == nil {
		return Result{}, errors.New("nil image")
	}

	text, err := h.model.Describe(ctx, img.Data, img.MimeType, detectionPrompt)
	if err != nil {
		log.WithRequestID(ctx, h.log).WithFields(logrus.Fields{
			"backend": h.Name(),
			"error":   err.Error(),
		}).Warn("[Hosted.Recognize] vision model call failed")
		return degraded(), nil
	}

	detections, confidence, err := ParseDetections(text)
	if err != nil {
		log.WithRequestID(ctx, h.log).WithFields(logrus.Fields{
			"backend": h.Name(),
			"error":   err.Error(),
		}).Warn("[Hosted.Recognize] unreadable vision model output")
		return degraded(), nil
	}

	return Result{Detections: detections, Confidence: confidence}, nil
}

func degraded() Result {
	return Result{Detections: []entity.FoodDetection{}, Degraded: true}
}

// ParseDetections reads the hosted output contract: a JSON array of detection
// objects, optionally wrapped in a markdown code fence. Items that fail to
// decode or validate are dropped one by one. Confidence is the mean of the kept items.
func ParseDetections(text string) ([]entity.FoodDetection, float64, error) {
	body := StripCodeFences(text)

	start := strings.IndexByte(body, '[')
	end := strings.LastIndexByte(body, ']')
	if start < 0 || end < start {
		return nil, 0, errNoArray
	}

	var items []jsoniter.RawMessage
	if err := json.Unmarshal([]byte(body[start:end+1]), &items); err != nil {
		return nil, 0, fmt.Errorf("decode detections: %w", err)
	}

	detections := make([]entity.FoodDetection, 0, len(items))
	sum := 0.0
	for _, item := range items {
		var r detectionRecord
		if err := json.Unmarshal(item, &r); err != nil {
			continue
		}
		r.Name = strings.ToLower(strings.TrimSpace(r.Name))
		if err := validate.Struct(r); err != nil {
			continue
		}

		d := entity.FoodDetection{
			Name:        r.Name,
			Confidence:  clamp01(valueOr(r.Confidence, defaultItemConfidence)),
			Calories:    nonNegative(*r.Calories),
			Protein:     nonNegative(*r.Protein),
			Carbs:       nonNegative(*r.Carbs),
			Fats:        nonNegative(*r.Fats),
			Fiber:       nonNegative(valueOr(r.Fiber, 0)),
			Sugar:       nonNegative(valueOr(r.Sugar, 0)),
			Sodium:      nonNegative(valueOr(r.Sodium, 0)),
			Portion:     strings.TrimSpace(r.Portion),
			WeightGrams: r.WeightGrams,
		}
		if d.Portion == "" {
			d.Portion = PortionText(d.Name, d.WeightGrams)
		}

		sum += d.Confidence
		detections = append(detections, d)
	}

	if len(detections) == 0 {
		return detections, 0, nil
	}

	return detections, clamp01(sum / float64(len(detections))), nil
}

// StripCodeFences removes a surrounding markdown fence such as ```json ... ```.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	return v
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
