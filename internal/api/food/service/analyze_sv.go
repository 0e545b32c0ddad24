package foodService

import (
	"context"
	"errors"
	"time"

	"CalorAI/internal/api/food"
	"CalorAI/internal/entity"
	contextPkg "CalorAI/pkg/context"
	"CalorAI/pkg/imaging"
	"CalorAI/pkg/nutrition"
	"CalorAI/pkg/recognition"

	"github.com/sirupsen/logrus"
)

func (s *foodService) AnalyzeImage(ctx context.Context, data []byte, filename string) (entity.AnalysisReport, error) {
	requestID := contextPkg.GetRequestID(ctx)
	start := time.Now()

	img, err := imaging.Normalize(data, filename, s.cfg.Image)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"filename":   filename,
			"size":       len(data),
			"error":      err.Error(),
		}).Warn("Image rejected by normalizer")
		return entity.AnalysisReport{}, normalizeError(err)
	}

	if img.Degraded {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"format":     img.Format,
		}).Warn("Image passed through without re-encoding")
	}

	res, err := s.recognize(ctx, img)
	if err != nil {
		return entity.AnalysisReport{}, err
	}

	if res.Unavailable {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"backend":    s.backend.Name(),
		}).Warn("Recognition backend is offline")
		return entity.AnalysisReport{}, food.ErrRecognitionUnavailable
	}

	if len(res.Detections) == 0 || res.Confidence < s.cfg.ConfidenceThreshold {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"backend":    s.backend.Name(),
			"confidence": res.Confidence,
			"detections": len(res.Detections),
			"degraded":   res.Degraded,
		}).Info("Detection below confidence threshold")
		return entity.AnalysisReport{}, food.NewLowConfidenceError(res.Confidence)
	}

	totals := nutrition.Aggregate(res.Detections)
	grade := nutrition.Score(totals)

	report := entity.AnalysisReport{
		Detections:      res.Detections,
		NutritionTotals: totals,
		Confidence:      res.Confidence,
		Grade:           grade,
		Tags:            nutrition.Tag(res.Detections),
		Diet:            nutrition.Classify(res.Detections),
		Insights:        nutrition.Insights(totals, grade),
		Backend:         s.backend.Name(),
	}

	key := s.utils.NewObjectKey("scans", img.Extension())
	imageURL, err := s.store.UploadBytes(ctx, key, img.Data, img.MimeType)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"key":        key,
			"error":      err.Error(),
		}).Error("Failed to upload normalized image")
		return entity.AnalysisReport{}, food.ErrUploadFailure
	}
	report.ImageURL = imageURL

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		s.discardUpload(ctx, imageURL)
		return entity.AnalysisReport{}, food.ErrPersistenceFailure
	}
	report.ID = id
	report.CreatedAt = now
	report.AnalysisDuration = nutrition.Round(time.Since(start).Seconds(), 3)

	repo, err := s.foodRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		s.discardUpload(ctx, imageURL)
		return entity.AnalysisReport{}, food.ErrPersistenceFailure
	}

	if err := repo.Scan.CreateScan(ctx, report); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"scan_id":    id,
			"error":      err.Error(),
		}).Error("Failed to persist analysis")
		s.discardUpload(ctx, imageURL)
		return entity.AnalysisReport{}, food.ErrPersistenceFailure
	}

	s.cacheReport(ctx, report)

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"scan_id":     id,
		"backend":     report.Backend,
		"confidence":  report.Confidence,
		"detections":  len(report.Detections),
		"grade":       report.Grade,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Meal analysed")

	report.ImageURL = s.resolveImageURL(ctx, report.ImageURL)
	return report, nil
}

// recognize bounds the backend call by the configured timeout. A timeout that
// only hit the recognition call degrades to an empty result; cancellation of
// the caller's context is returned as is.
func (s *foodService) recognize(ctx context.Context, img *imaging.NormalizedImage) (recognition.Result, error) {
	recCtx := ctx
	if s.cfg.RecognitionTimeout > 0 {
		var cancel context.CancelFunc
		recCtx, cancel = context.WithTimeout(ctx, s.cfg.RecognitionTimeout)
		defer cancel()
	}

	res, err := s.backend.Recognize(recCtx, img)
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return recognition.Result{}, ctx.Err()
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"backend":    s.backend.Name(),
		"error":      err.Error(),
	}).Warn("Recognition failed, continuing with an empty result")

	return recognition.Result{Detections: []entity.FoodDetection{}, Degraded: true}, nil
}

func (s *foodService) discardUpload(ctx context.Context, imageURL string) {
	if err := s.store.DeleteFile(ctx, imageURL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"image_url":  imageURL,
			"error":      err.Error(),
		}).Error("Failed to delete image after persistence failure")
	}
}

func normalizeError(err error) error {
	switch {
	case errors.Is(err, imaging.ErrPayloadTooLarge):
		return food.ErrPayloadTooLarge
	case errors.Is(err, imaging.ErrImageDecode):
		return food.ErrImageDecodeFailure
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return food.ErrUnsupportedFormat
	default:
		return err
	}
}
