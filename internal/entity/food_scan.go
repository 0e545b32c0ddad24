package entity

import "time"

// FoodDetection is one recognized item with nutrient values already scaled to
// the detected portion.
type FoodDetection struct {
	Name        string  `json:"name"`
	Confidence  float64 `json:"confidence"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fats        float64 `json:"fats"`
	Fiber       float64 `json:"fiber"`
	Sugar       float64 `json:"sugar"`
	Sodium      float64 `json:"sodium"`
	Portion     string  `json:"portion"`
	WeightGrams float64 `json:"weight_grams"`
}

type NutritionTotals struct {
	TotalCalories float64 `json:"total_calories"`
	TotalProtein  float64 `json:"total_protein"`
	TotalCarbs    float64 `json:"total_carbs"`
	TotalFats     float64 `json:"total_fats"`
	TotalFiber    float64 `json:"total_fiber"`
	TotalSugar    float64 `json:"total_sugar"`
	TotalSodium   float64 `json:"total_sodium"`
}

type HealthGrade string

const (
	GradeAPlus HealthGrade = "A+"
	GradeA     HealthGrade = "A"
	GradeB     HealthGrade = "B"
	GradeC     HealthGrade = "C"
	GradeD     HealthGrade = "D"
)

// Rank orders grades so that A+ ranks highest. Unknown grades rank 0.
func (g HealthGrade) Rank() int {
	switch g {
	case GradeAPlus:
		return 5
	case GradeA:
		return 4
	case GradeB:
		return 3
	case GradeC:
		return 2
	case GradeD:
		return 1
	default:
		return 0
	}
}

func (g HealthGrade) Better(other HealthGrade) bool {
	return g.Rank() > other.Rank()
}

func (g HealthGrade) Valid() bool {
	return g.Rank() > 0
}

type DietClass string

const (
	DietVegan        DietClass = "vegan"
	DietVegetarian   DietClass = "vegetarian"
	DietNonVeg       DietClass = "non_veg"
	DietUnclassified DietClass = "unclassified"
)

// AnalysisReport is the assembled outcome of one analysis. ID and CreatedAt
// are empty until the persistence sink has stored it.
type AnalysisReport struct {
	ID         string          `json:"id"`
	ImageURL   string          `json:"image_url"`
	Detections []FoodDetection `json:"detected_foods"`
	NutritionTotals
	Confidence       float64     `json:"confidence_score"`
	Grade            HealthGrade `json:"health_score"`
	Tags             []string    `json:"dietary_tags"`
	Diet             DietClass   `json:"diet_class"`
	Insights         string      `json:"ai_insights"`
	AnalysisDuration float64     `json:"analysis_time"`
	Backend          string      `json:"backend,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}

type ScanSummary struct {
	ID                 string    `json:"id"`
	ImageURL           string    `json:"image_url"`
	TotalCalories      float64   `json:"total_calories"`
	DetectedFoodsCount int       `json:"detected_foods_count"`
	CreatedAt          time.Time `json:"created_at"`
}

type ScanFeedback struct {
	ID              string    `json:"id"`
	ScanID          string    `json:"scan_id"`
	IsAccurate      bool      `json:"is_accurate"`
	CorrectFoodName string    `json:"correct_food_name,omitempty"`
	Comments        string    `json:"comments,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
