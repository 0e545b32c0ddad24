package nutrition_test

import (
	"reflect"
	"strings"
	"testing"

	"CalorAI/internal/entity"
	"CalorAI/pkg/nutrition"
)

func det(name string, cal, protein, carbs, fiber, sugar, sodium float64) entity.FoodDetection {
	return entity.FoodDetection{
		Name:        name,
		Confidence:  0.9,
		Calories:    cal,
		Protein:     protein,
		Carbs:       carbs,
		Fiber:       fiber,
		Sugar:       sugar,
		Sodium:      sodium,
		Portion:     "100g",
		WeightGrams: 100,
	}
}

func TestAggregate(t *testing.T) {
	items := []entity.FoodDetection{
		det("dal", 174, 13.5, 30, 11.85, 2.7, 357),
		det("rice", 260, 5.4, 56, 0.8, 0.2, 2),
		det("salad", 33, 1.4, 6.3, 2.1, 3.1, 28),
	}

	got := nutrition.Aggregate(items)

	if got.TotalCalories != 467 {
		t.Errorf("TotalCalories = %v, want 467", got.TotalCalories)
	}
	if nutrition.Round(got.TotalProtein, 1) != 20.3 {
		t.Errorf("TotalProtein = %v, want 20.3", got.TotalProtein)
	}
	if got.TotalSodium != 387 {
		t.Errorf("TotalSodium = %v, want 387", got.TotalSodium)
	}
}

func TestAggregateDominatesEveryItem(t *testing.T) {
	sets := [][]entity.FoodDetection{
		{det("apple", 52, 0.3, 14, 2.4, 10.4, 1)},
		{det("pizza", 532, 22, 66, 4.6, 7.4, 1196), det("burger", 295, 17, 24, 1.5, 5, 497)},
		{det("idli", 0, 0, 0, 0, 0, 0), det("dosa", 133, 3.9, 25, 1.2, 0.5, 115), det("samosa", 786, 15, 84, 9, 4.5, 1266)},
	}

	for _, items := range sets {
		total := nutrition.Aggregate(items)
		for _, it := range items {
			if total.TotalCalories < it.Calories {
				t.Errorf("total calories %v < item %s calories %v", total.TotalCalories, it.Name, it.Calories)
			}
			if total.TotalProtein < it.Protein || total.TotalCarbs < it.Carbs || total.TotalSodium < it.Sodium {
				t.Errorf("totals %+v do not dominate item %+v", total, it)
			}
		}
	}
}

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		totals entity.NutritionTotals
		points int
		want   entity.HealthGrade
	}{
		{
			name:   "all best bands",
			totals: entity.NutritionTotals{TotalCalories: 500, TotalProtein: 20, TotalFiber: 5, TotalSugar: 10, TotalSodium: 500},
			points: 100,
			want:   entity.GradeAPlus,
		},
		{
			name:   "only calories over budget",
			totals: entity.NutritionTotals{TotalCalories: 800, TotalProtein: 5, TotalFiber: 1, TotalSugar: 25, TotalSodium: 1500},
			points: 15,
			want:   entity.GradeD,
		},
		{
			name:   "lower bands",
			totals: entity.NutritionTotals{TotalCalories: 300, TotalProtein: 10, TotalFiber: 2, TotalSugar: 20, TotalSodium: 1000},
			points: 30 + 15 + 10 + 8 + 5,
			want:   entity.GradeB,
		},
		{
			name:   "calories below range score nothing",
			totals: entity.NutritionTotals{TotalCalories: 299.9, TotalProtein: 19.99, TotalFiber: 4.99, TotalSugar: 10.01, TotalSodium: 500.01},
			points: 0 + 15 + 10 + 8 + 5,
			want:   entity.GradeD,
		},
		{
			name:   "A band",
			totals: entity.NutritionTotals{TotalCalories: 650, TotalProtein: 12, TotalFiber: 6, TotalSugar: 15, TotalSodium: 900},
			points: 30 + 15 + 20 + 8 + 5,
			want:   entity.GradeA,
		},
		{
			name:   "C band",
			totals: entity.NutritionTotals{TotalCalories: 900, TotalProtein: 22, TotalFiber: 0, TotalSugar: 30, TotalSodium: 1200},
			points: 15 + 25,
			want:   entity.GradeC,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nutrition.Points(tt.totals); got != tt.points {
				t.Errorf("Points() = %d, want %d", got, tt.points)
			}
			if got := nutrition.Score(tt.totals); got != tt.want {
				t.Errorf("Score() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	totals := entity.NutritionTotals{TotalCalories: 612.4, TotalProtein: 18.2, TotalFiber: 3.3, TotalSugar: 14, TotalSodium: 720}
	first := nutrition.Score(totals)
	for i := 0; i < 100; i++ {
		if got := nutrition.Score(totals); got != first {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		points int
		want   entity.HealthGrade
	}{
		{100, entity.GradeAPlus},
		{85, entity.GradeAPlus},
		{84, entity.GradeA},
		{70, entity.GradeA},
		{69, entity.GradeB},
		{55, entity.GradeB},
		{54, entity.GradeC},
		{40, entity.GradeC},
		{39, entity.GradeD},
		{0, entity.GradeD},
	}

	for _, tt := range tests {
		if got := nutrition.GradeFor(tt.points); got != tt.want {
			t.Errorf("GradeFor(%d) = %s, want %s", tt.points, got, tt.want)
		}
	}

	if !entity.GradeAPlus.Better(entity.GradeA) || !entity.GradeC.Better(entity.GradeD) {
		t.Error("grade ordering is not A+ > A > ... > D")
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		name  string
		items []entity.FoodDetection
		want  []string
		diet  entity.DietClass
	}{
		{
			name:  "empty",
			items: nil,
			want:  []string{},
			diet:  entity.DietUnclassified,
		},
		{
			name:  "meat wins",
			items: []entity.FoodDetection{det("Chicken Curry", 332, 48, 10, 2, 4, 680), det("rice", 260, 5.4, 56, 0.8, 0.2, 2)},
			want:  []string{nutrition.TagHighProtein, nutrition.TagLowSugar, nutrition.TagNonVeg},
			diet:  entity.DietNonVeg,
		},
		{
			name:  "vegetarian and vegan",
			items: []entity.FoodDetection{det("dal", 174, 13.5, 30, 11.85, 2.7, 357), det("idli", 58, 2, 12, 0.6, 0.3, 42)},
			want:  []string{nutrition.TagLowSugar, nutrition.TagVegan, nutrition.TagVegetarian},
			diet:  entity.DietVegan,
		},
		{
			name:  "vegetarian only",
			items: []entity.FoodDetection{det("chapati", 297, 11.8, 51, 7.3, 1, 318), det("samosa", 262, 5, 28, 3, 1.5, 422)},
			want:  []string{nutrition.TagLowSugar, nutrition.TagVegetarian},
			diet:  entity.DietVegetarian,
		},
		{
			name:  "fruit is vegan but not in vegetarian list",
			items: []entity.FoodDetection{det("apple", 52, 0.3, 14, 2.4, 10.4, 1)},
			want:  []string{nutrition.TagKetoFriendly, nutrition.TagVegan},
			diet:  entity.DietVegan,
		},
		{
			name:  "unclassified names get no diet tag",
			items: []entity.FoodDetection{det("pasta", 158, 5.8, 31, 1.8, 2.7, 6), det("salad", 33, 1.4, 6.3, 2.1, 3.1, 28)},
			want:  []string{nutrition.TagLowSugar},
			diet:  entity.DietUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nutrition.Tag(tt.items)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tag() = %v, want %v", got, tt.want)
			}
			if diet := nutrition.Classify(tt.items); diet != tt.diet {
				t.Errorf("Classify() = %s, want %s", diet, tt.diet)
			}
		})
	}
}

func TestInsights(t *testing.T) {
	t.Run("heavy meal", func(t *testing.T) {
		totals := entity.NutritionTotals{TotalCalories: 1000, TotalProtein: 30, TotalSugar: 25.3, TotalSodium: 1200, TotalFiber: 1}
		got := nutrition.Insights(totals, entity.GradeD)

		wantInOrder := []string{
			"This meal contains 50% of your daily calorie needs.",
			"High sugar content detected (25.3g).",
			"Excellent protein content (30.0g)!",
			"High sodium (1200mg).",
			"Low fiber.",
			"Consider adding more whole foods",
		}
		assertInOrder(t, got, wantInOrder)
	})

	t.Run("balanced meal", func(t *testing.T) {
		totals := entity.NutritionTotals{TotalCalories: 500, TotalProtein: 15, TotalSugar: 5, TotalSodium: 300, TotalFiber: 6}
		got := nutrition.Insights(totals, entity.GradeA)

		assertInOrder(t, got, []string{
			"This meal is 25% of your daily calories - well balanced!",
			"Great choice!",
		})
		for _, absent := range []string{"sugar", "protein", "sodium", "fiber"} {
			if strings.Contains(strings.ToLower(got), absent) {
				t.Errorf("insights %q unexpectedly mention %q", got, absent)
			}
		}
	})

	t.Run("grade B remark", func(t *testing.T) {
		got := nutrition.Insights(entity.NutritionTotals{TotalCalories: 400, TotalProtein: 5, TotalFiber: 4}, entity.GradeB)
		assertInOrder(t, got, []string{"Low protein content.", "Good meal choice."})
	})
}

func assertInOrder(t *testing.T, text string, parts []string) {
	t.Helper()
	pos := 0
	for _, p := range parts {
		idx := strings.Index(text[pos:], p)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d in %q", p, pos, text)
		}
		pos += idx + len(p)
	}
}
