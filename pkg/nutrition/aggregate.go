// Package nutrition turns per-item detections into meal totals, a health
// grade, dietary tags and templated guidance. Everything here is pure and
// safe for concurrent use.
package nutrition

import (
	"math"

	"CalorAI/internal/entity"
)

// Daily reference values for an average adult.
const (
	DailyCalories = 2000.0
	DailyProtein  = 50.0
	DailyCarbs    = 275.0
	DailyFats     = 78.0
	DailyFiber    = 28.0
	DailySugar    = 50.0
	DailySodium   = 2300.0
)

// Aggregate sums the detections field by field. Callers guarantee a
// non-empty slice; an empty one yields zero totals.
func Aggregate(detections []entity.FoodDetection) entity.NutritionTotals {
	var t entity.NutritionTotals
	for _, d := range detections {
		t.TotalCalories += d.Calories
		t.TotalProtein += d.Protein
		t.TotalCarbs += d.Carbs
		t.TotalFats += d.Fats
		t.TotalFiber += d.Fiber
		t.TotalSugar += d.Sugar
		t.TotalSodium += d.Sodium
	}
	return t
}

// Round rounds v to the given number of decimals. Display formatting only.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
