package foodRepository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"CalorAI/internal/api/food"
	foodRepository "CalorAI/internal/api/food/repository"
	"CalorAI/internal/entity"
	"CalorAI/pkg/log"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE food_scans (
	id TEXT PRIMARY KEY,
	image_url TEXT NOT NULL,
	detected_foods TEXT NOT NULL,
	confidence_score REAL NOT NULL,
	total_calories REAL NOT NULL,
	total_protein REAL NOT NULL,
	total_carbs REAL NOT NULL,
	total_fats REAL NOT NULL,
	total_fiber REAL NOT NULL,
	total_sugar REAL NOT NULL,
	total_sodium REAL NOT NULL,
	health_score TEXT NOT NULL,
	dietary_tags TEXT NOT NULL,
	diet_class TEXT NOT NULL,
	ai_insights TEXT NOT NULL,
	analysis_time REAL NOT NULL,
	backend TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
CREATE TABLE scan_feedback (
	id TEXT PRIMARY KEY,
	scan_id TEXT NOT NULL REFERENCES food_scans(id),
	is_accurate BOOLEAN NOT NULL,
	correct_food_name TEXT,
	comments TEXT,
	created_at TIMESTAMP NOT NULL
);
`

func newTestRepository(t *testing.T) (foodRepository.Repository, *sqlx.DB) {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return foodRepository.New(db, log.Discard()), db
}

func sampleReport(id string, createdAt time.Time) entity.AnalysisReport {
	return entity.AnalysisReport{
		ID:       id,
		ImageURL: "/uploads/scans/" + id + ".jpg",
		Detections: []entity.FoodDetection{
			{Name: "dal", Confidence: 0.91, Calories: 174, Protein: 13.5, Carbs: 30, Fats: 0.6, Fiber: 11.9, Sugar: 2.7, Sodium: 357, Portion: "150g", WeightGrams: 150},
			{Name: "rice", Confidence: 0.88, Calories: 260, Protein: 5.4, Carbs: 56, Fats: 0.6, Fiber: 0.8, Sugar: 0.2, Sodium: 2, Portion: "1 cup", WeightGrams: 200},
		},
		NutritionTotals: entity.NutritionTotals{
			TotalCalories: 434, TotalProtein: 18.9, TotalCarbs: 86, TotalFats: 1.2,
			TotalFiber: 12.7, TotalSugar: 2.9, TotalSodium: 359,
		},
		Confidence:       0.93,
		Grade:            entity.GradeA,
		Tags:             []string{"low_sugar", "vegan", "vegetarian"},
		Diet:             entity.DietVegan,
		Insights:         "This meal is 21% of your daily calories - well balanced!",
		AnalysisDuration: 1.25,
		Backend:          "mock",
		CreatedAt:        createdAt,
	}
}

func TestCreateAndGetScan(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	client, err := repo.NewClient(false)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	created := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	want := sampleReport("01HXAMPLE0000000000000001", created)

	if err := client.Scan.CreateScan(ctx, want); err != nil {
		t.Fatalf("CreateScan() error = %v", err)
	}

	got, err := client.Scan.GetScanByID(ctx, want.ID)
	if err != nil {
		t.Fatalf("GetScanByID() error = %v", err)
	}

	if got.ID != want.ID || got.ImageURL != want.ImageURL || got.Grade != want.Grade || got.Diet != want.Diet {
		t.Errorf("identity fields differ: got %+v", got)
	}
	if got.NutritionTotals != want.NutritionTotals {
		t.Errorf("totals = %+v, want %+v", got.NutritionTotals, want.NutritionTotals)
	}
	if len(got.Detections) != 2 || got.Detections[0] != want.Detections[0] {
		t.Errorf("detections = %+v", got.Detections)
	}
	if len(got.Tags) != 3 || got.Tags[1] != "vegan" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, created)
	}
}

func TestGetScanByIDNotFound(t *testing.T) {
	repo, _ := newTestRepository(t)
	client, _ := repo.NewClient(false)

	_, err := client.Scan.GetScanByID(context.Background(), "missing")
	if !errors.Is(err, food.ErrScanNotFound) {
		t.Errorf("GetScanByID() error = %v, want ErrScanNotFound", err)
	}
}

func TestGetScansNewestFirst(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()
	client, _ := repo.NewClient(false)

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	ids := []string{"01A", "01B", "01C"}
	for i, id := range ids {
		if err := client.Scan.CreateScan(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("CreateScan(%s) error = %v", id, err)
		}
	}

	got, err := client.Scan.GetScans(ctx, 2)
	if err != nil {
		t.Fatalf("GetScans() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].ID != "01C" || got[1].ID != "01B" {
		t.Errorf("order = %s, %s; want 01C, 01B", got[0].ID, got[1].ID)
	}
	if got[0].DetectedFoodsCount != 2 || got[0].TotalCalories != 434 {
		t.Errorf("summary = %+v", got[0])
	}
}

func TestFeedback(t *testing.T) {
	repo, db := newTestRepository(t)
	ctx := context.Background()
	client, _ := repo.NewClient(false)

	if err := client.Scan.CreateScan(ctx, sampleReport("01A", time.Now().UTC())); err != nil {
		t.Fatalf("CreateScan() error = %v", err)
	}

	exists, err := client.Scan.ScanExists(ctx, "01A")
	if err != nil || !exists {
		t.Fatalf("ScanExists(01A) = %v, %v", exists, err)
	}
	exists, err = client.Scan.ScanExists(ctx, "nope")
	if err != nil || exists {
		t.Fatalf("ScanExists(nope) = %v, %v", exists, err)
	}

	feedback := entity.ScanFeedback{
		ID:              "01F",
		ScanID:          "01A",
		IsAccurate:      false,
		CorrectFoodName: "khichdi",
		CreatedAt:       time.Now().UTC(),
	}
	if err := client.Scan.CreateFeedback(ctx, feedback); err != nil {
		t.Fatalf("CreateFeedback() error = %v", err)
	}

	var row struct {
		ScanID          string  `db:"scan_id"`
		CorrectFoodName string  `db:"correct_food_name"`
		Comments        *string `db:"comments"`
	}
	if err := db.Get(&row, "SELECT scan_id, correct_food_name, comments FROM scan_feedback WHERE id = ?", "01F"); err != nil {
		t.Fatalf("read feedback: %v", err)
	}
	if row.ScanID != "01A" || row.CorrectFoodName != "khichdi" || row.Comments != nil {
		t.Errorf("stored feedback = %+v", row)
	}
}

func TestTransactionRollback(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	tx, err := repo.NewClient(true)
	if err != nil {
		t.Fatalf("NewClient(true) error = %v", err)
	}
	if err := tx.Scan.CreateScan(ctx, sampleReport("01R", time.Now().UTC())); err != nil {
		t.Fatalf("CreateScan() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	client, _ := repo.NewClient(false)
	if _, err := client.Scan.GetScanByID(ctx, "01R"); !errors.Is(err, food.ErrScanNotFound) {
		t.Errorf("rolled back scan still visible: %v", err)
	}
}
