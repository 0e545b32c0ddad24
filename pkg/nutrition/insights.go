package nutrition

import (
	"fmt"
	"strings"

	"CalorAI/internal/entity"
)

// Insights composes the guidance text shown next to a report. Sentences are
// emitted in a fixed order: calories, sugar, protein, sodium, fiber, grade.
func Insights(t entity.NutritionTotals, grade entity.HealthGrade) string {
	var out []string

	calShare := int(t.TotalCalories / DailyCalories * 100)
	if calShare > 40 {
		out = append(out, fmt.Sprintf("This meal contains %d%% of your daily calorie needs.", calShare))
	} else {
		out = append(out, fmt.Sprintf("This meal is %d%% of your daily calories - well balanced!", calShare))
	}

	if t.TotalSugar > 20 {
		out = append(out, fmt.Sprintf("High sugar content detected (%.1fg). Consider reducing sugar intake.", t.TotalSugar))
	}

	switch {
	case t.TotalProtein < 10:
		out = append(out, "Low protein content. Add nuts, eggs, or lean meat for better satiety.")
	case t.TotalProtein >= 25:
		out = append(out, fmt.Sprintf("Excellent protein content (%.1fg)!", t.TotalProtein))
	}

	if t.TotalSodium > 1000 {
		out = append(out, fmt.Sprintf("High sodium (%.0fmg). Drink plenty of water.", t.TotalSodium))
	}

	if t.TotalFiber < 3 {
		out = append(out, "Low fiber. Add vegetables or whole grains for better digestion.")
	}

	switch grade {
	case entity.GradeAPlus, entity.GradeA:
		out = append(out, "Great choice! This meal has excellent nutritional balance.")
	case entity.GradeB:
		out = append(out, "Good meal choice. Could be improved with more vegetables.")
	default:
		out = append(out, "Consider adding more whole foods and vegetables for better nutrition.")
	}

	return strings.Join(out, " ")
}
