package foodService

import (
	"context"
	"errors"
	"strings"
	"time"

	"CalorAI/internal/api/food"
	"CalorAI/internal/entity"
	contextPkg "CalorAI/pkg/context"
	"CalorAI/pkg/redis"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func reportCacheKey(id string) string {
	return "food:scan:" + id
}

func (s *foodService) GetAnalysis(ctx context.Context, id string) (entity.AnalysisReport, error) {
	requestID := contextPkg.GetRequestID(ctx)

	id = strings.TrimSpace(id)
	if id == "" {
		return entity.AnalysisReport{}, food.ErrScanNotFound
	}

	if report, ok := s.cachedReport(ctx, id); ok {
		report.ImageURL = s.resolveImageURL(ctx, report.ImageURL)
		return report, nil
	}

	repo, err := s.foodRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.AnalysisReport{}, food.ErrPersistenceFailure
	}

	report, err := repo.Scan.GetScanByID(ctx, id)
	if err != nil {
		if errors.Is(err, food.ErrScanNotFound) {
			return entity.AnalysisReport{}, err
		}
		return entity.AnalysisReport{}, food.ErrPersistenceFailure
	}

	s.cacheReport(ctx, report)

	report.ImageURL = s.resolveImageURL(ctx, report.ImageURL)
	return report, nil
}

// GetHistory lists the newest scans first. A zero limit selects the
// configured default.
func (s *foodService) GetHistory(ctx context.Context, limit int) ([]entity.ScanSummary, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if limit == 0 {
		limit = s.cfg.HistoryLimit
	}
	if limit < 1 || limit > MaxHistoryLimit {
		return nil, food.ErrInvalidLimit
	}

	repo, err := s.foodRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return nil, food.ErrPersistenceFailure
	}

	scans, err := repo.Scan.GetScans(ctx, limit)
	if err != nil {
		return nil, food.ErrPersistenceFailure
	}

	for i := range scans {
		scans[i].ImageURL = s.resolveImageURL(ctx, scans[i].ImageURL)
	}

	return scans, nil
}

func (s *foodService) SubmitFeedback(ctx context.Context, req food.FeedbackRequest) (entity.ScanFeedback, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.foodRepository.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create new client")
		return entity.ScanFeedback{}, food.ErrPersistenceFailure
	}

	exists, err := repo.Scan.ScanExists(ctx, req.ScanID)
	if err != nil {
		return entity.ScanFeedback{}, food.ErrPersistenceFailure
	}
	if !exists {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"scan_id":    req.ScanID,
		}).Warn("Feedback for unknown scan")
		return entity.ScanFeedback{}, food.ErrScanNotFound
	}

	now := time.Now().UTC()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return entity.ScanFeedback{}, food.ErrPersistenceFailure
	}

	feedback := entity.ScanFeedback{
		ID:              id,
		ScanID:          req.ScanID,
		IsAccurate:      req.IsAccurate != nil && *req.IsAccurate,
		CorrectFoodName: strings.TrimSpace(req.CorrectFoodName),
		Comments:        strings.TrimSpace(req.Comments),
		CreatedAt:       now,
	}

	if err := repo.Scan.CreateFeedback(ctx, feedback); err != nil {
		return entity.ScanFeedback{}, food.ErrPersistenceFailure
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"scan_id":     feedback.ScanID,
		"is_accurate": feedback.IsAccurate,
	}).Info("Feedback stored")

	return feedback, nil
}

func (s *foodService) cachedReport(ctx context.Context, id string) (entity.AnalysisReport, bool) {
	if s.cache == nil {
		return entity.AnalysisReport{}, false
	}

	raw, err := s.cache.Get(ctx, reportCacheKey(id))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"error":      err.Error(),
			}).Warn("Report cache read failed")
		}
		return entity.AnalysisReport{}, false
	}

	var report entity.AnalysisReport
	if err := json.Unmarshal(raw, &report); err != nil {
		return entity.AnalysisReport{}, false
	}
	return report, true
}

func (s *foodService) cacheReport(ctx context.Context, report entity.AnalysisReport) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, reportCacheKey(report.ID), raw, s.cfg.CacheTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Report cache write failed")
	}
}

func (s *foodService) resolveImageURL(ctx context.Context, stored string) string {
	if stored == "" {
		return stored
	}

	resolved, err := s.store.PresignUrl(ctx, stored)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"image_url":  stored,
			"error":      err.Error(),
		}).Warn("Failed to presign image URL")
		return stored
	}
	return resolved
}
