package foodRepository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"CalorAI/internal/api/food"
	"CalorAI/internal/entity"
	contextPkg "CalorAI/pkg/context"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type FoodScanDB struct {
	ID              sql.NullString  `db:"id"`
	ImageURL        sql.NullString  `db:"image_url"`
	DetectedFoods   sql.NullString  `db:"detected_foods"`
	ConfidenceScore sql.NullFloat64 `db:"confidence_score"`
	TotalCalories   sql.NullFloat64 `db:"total_calories"`
	TotalProtein    sql.NullFloat64 `db:"total_protein"`
	TotalCarbs      sql.NullFloat64 `db:"total_carbs"`
	TotalFats       sql.NullFloat64 `db:"total_fats"`
	TotalFiber      sql.NullFloat64 `db:"total_fiber"`
	TotalSugar      sql.NullFloat64 `db:"total_sugar"`
	TotalSodium     sql.NullFloat64 `db:"total_sodium"`
	HealthScore     sql.NullString  `db:"health_score"`
	DietaryTags     sql.NullString  `db:"dietary_tags"`
	DietClass       sql.NullString  `db:"diet_class"`
	AIInsights      sql.NullString  `db:"ai_insights"`
	AnalysisTime    sql.NullFloat64 `db:"analysis_time"`
	Backend         sql.NullString  `db:"backend"`
	CreatedAt       time.Time       `db:"created_at"`
}

type ScanSummaryDB struct {
	ID            sql.NullString  `db:"id"`
	ImageURL      sql.NullString  `db:"image_url"`
	DetectedFoods sql.NullString  `db:"detected_foods"`
	TotalCalories sql.NullFloat64 `db:"total_calories"`
	CreatedAt     time.Time       `db:"created_at"`
}

func (r *scanRepository) CreateScan(c context.Context, report entity.AnalysisReport) error {
	requestID := contextPkg.GetRequestID(c)

	detections := report.Detections
	if detections == nil {
		detections = []entity.FoodDetection{}
	}
	detectedFoods, err := json.Marshal(detections)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode detected foods for CreateScan")
		return err
	}

	tags := report.Tags
	if tags == nil {
		tags = []string{}
	}
	dietaryTags, err := json.Marshal(tags)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to encode dietary tags for CreateScan")
		return err
	}

	argsKV := map[string]interface{}{
		"id":               report.ID,
		"image_url":        report.ImageURL,
		"detected_foods":   string(detectedFoods),
		"confidence_score": report.Confidence,
		"total_calories":   report.TotalCalories,
		"total_protein":    report.TotalProtein,
		"total_carbs":      report.TotalCarbs,
		"total_fats":       report.TotalFats,
		"total_fiber":      report.TotalFiber,
		"total_sugar":      report.TotalSugar,
		"total_sodium":     report.TotalSodium,
		"health_score":     string(report.Grade),
		"dietary_tags":     string(dietaryTags),
		"diet_class":       string(report.Diet),
		"ai_insights":      report.Insights,
		"analysis_time":    report.AnalysisDuration,
		"backend":          report.Backend,
		"created_at":       report.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateScan, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateScan")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating scan")
		return err
	}

	return nil
}

func (r *scanRepository) GetScanByID(c context.Context, id string) (entity.AnalysisReport, error) {
	requestID := contextPkg.GetRequestID(c)
	var scan FoodScanDB

	query, args, err := sqlx.Named(queryGetScanByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScanByID named query preparation err")
		return entity.AnalysisReport{}, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).StructScan(&scan); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"scan_id":    id,
			}).Warn("GetScanByID no rows found")
			return entity.AnalysisReport{}, food.ErrScanNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScanByID execution err")
		return entity.AnalysisReport{}, err
	}

	report, err := r.makeAnalysisReport(scan)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScanByID stored row could not be decoded")
		return entity.AnalysisReport{}, err
	}

	return report, nil
}

func (r *scanRepository) GetScans(c context.Context, limit int) ([]entity.ScanSummary, error) {
	requestID := contextPkg.GetRequestID(c)
	var rows []ScanSummaryDB

	query, args, err := sqlx.Named(queryGetScans, map[string]interface{}{"limit": limit})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScans named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	if err := r.q.SelectContext(c, &rows, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetScans execution err")
		return nil, err
	}

	summaries := make([]entity.ScanSummary, 0, len(rows))
	for _, row := range rows {
		var detections []jsoniter.RawMessage
		if row.DetectedFoods.Valid && row.DetectedFoods.String != "" {
			if err := json.Unmarshal([]byte(row.DetectedFoods.String), &detections); err != nil {
				r.log.WithFields(logrus.Fields{
					"request_id": requestID,
					"scan_id":    row.ID.String,
					"error":      err.Error(),
				}).Warn("GetScans could not count detected foods")
			}
		}

		summaries = append(summaries, entity.ScanSummary{
			ID:                 row.ID.String,
			ImageURL:           row.ImageURL.String,
			TotalCalories:      row.TotalCalories.Float64,
			DetectedFoodsCount: len(detections),
			CreatedAt:          row.CreatedAt,
		})
	}

	return summaries, nil
}

func (r *scanRepository) ScanExists(c context.Context, id string) (bool, error) {
	requestID := contextPkg.GetRequestID(c)
	var count int

	query, args, err := sqlx.Named(queryScanExists, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ScanExists named query preparation err")
		return false, err
	}
	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(c, query, args...).Scan(&count); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ScanExists execution err")
		return false, err
	}

	return count > 0, nil
}

func (r *scanRepository) CreateFeedback(c context.Context, feedback entity.ScanFeedback) error {
	requestID := contextPkg.GetRequestID(c)

	argsKV := map[string]interface{}{
		"id":                feedback.ID,
		"scan_id":           feedback.ScanID,
		"is_accurate":       feedback.IsAccurate,
		"correct_food_name": nullString(feedback.CorrectFoodName),
		"comments":          nullString(feedback.Comments),
		"created_at":        feedback.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateFeedback, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateFeedback")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(c, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating feedback")
		return err
	}

	return nil
}

func (r *scanRepository) makeAnalysisReport(scan FoodScanDB) (entity.AnalysisReport, error) {
	detections := []entity.FoodDetection{}
	if scan.DetectedFoods.Valid && scan.DetectedFoods.String != "" {
		if err := json.Unmarshal([]byte(scan.DetectedFoods.String), &detections); err != nil {
			return entity.AnalysisReport{}, err
		}
	}

	tags := []string{}
	if scan.DietaryTags.Valid && scan.DietaryTags.String != "" {
		if err := json.Unmarshal([]byte(scan.DietaryTags.String), &tags); err != nil {
			return entity.AnalysisReport{}, err
		}
	}

	return entity.AnalysisReport{
		ID:         scan.ID.String,
		ImageURL:   scan.ImageURL.String,
		Detections: detections,
		NutritionTotals: entity.NutritionTotals{
			TotalCalories: scan.TotalCalories.Float64,
			TotalProtein:  scan.TotalProtein.Float64,
			TotalCarbs:    scan.TotalCarbs.Float64,
			TotalFats:     scan.TotalFats.Float64,
			TotalFiber:    scan.TotalFiber.Float64,
			TotalSugar:    scan.TotalSugar.Float64,
			TotalSodium:   scan.TotalSodium.Float64,
		},
		Confidence:       scan.ConfidenceScore.Float64,
		Grade:            entity.HealthGrade(scan.HealthScore.String),
		Tags:             tags,
		Diet:             entity.DietClass(scan.DietClass.String),
		Insights:         scan.AIInsights.String,
		AnalysisDuration: scan.AnalysisTime.Float64,
		Backend:          scan.Backend.String,
		CreatedAt:        scan.CreatedAt,
	}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
