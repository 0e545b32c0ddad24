package nutrition

import "CalorAI/internal/entity"

// Score grades a meal with the weighted point rubric. Each factor is
// evaluated on its own and the points are summed before bucketing.
func Score(t entity.NutritionTotals) entity.HealthGrade {
	return GradeFor(Points(t))
}

func Points(t entity.NutritionTotals) int {
	points := 0

	switch {
	case t.TotalCalories >= 300 && t.TotalCalories <= 700:
		points += 30
	case t.TotalCalories > 700:
		points += 15
	}

	switch {
	case t.TotalProtein >= 20:
		points += 25
	case t.TotalProtein >= 10:
		points += 15
	}

	switch {
	case t.TotalFiber >= 5:
		points += 20
	case t.TotalFiber >= 2:
		points += 10
	}

	switch {
	case t.TotalSugar <= 10:
		points += 15
	case t.TotalSugar <= 20:
		points += 8
	}

	switch {
	case t.TotalSodium <= 500:
		points += 10
	case t.TotalSodium <= 1000:
		points += 5
	}

	return points
}

func GradeFor(points int) entity.HealthGrade {
	switch {
	case points >= 85:
		return entity.GradeAPlus
	case points >= 70:
		return entity.GradeA
	case points >= 55:
		return entity.GradeB
	case points >= 40:
		return entity.GradeC
	default:
		return entity.GradeD
	}
}
