package recognition

import (
	"fmt"
	"sort"
	"strings"
)

// Food holds per-100g nutrient baselines.
type Food struct {
	Category string
	Calories float64
	Protein  float64
	Carbs    float64
	Fats     float64
	Fiber    float64
	Sugar    float64
	Sodium   float64
}

var foods = map[string]Food{
	"biryani":       {Category: "indian", Calories: 200, Protein: 6.5, Carbs: 35, Fats: 4.5, Fiber: 1.5, Sugar: 2.0, Sodium: 380},
	"pizza":         {Category: "italian", Calories: 266, Protein: 11, Carbs: 33, Fats: 10, Fiber: 2.3, Sugar: 3.7, Sodium: 598},
	"burger":        {Category: "american", Calories: 295, Protein: 17, Carbs: 24, Fats: 14, Fiber: 1.5, Sugar: 5, Sodium: 497},
	"dosa":          {Category: "indian", Calories: 133, Protein: 3.9, Carbs: 25, Fats: 1.8, Fiber: 1.2, Sugar: 0.5, Sodium: 115},
	"samosa":        {Category: "indian", Calories: 262, Protein: 5, Carbs: 28, Fats: 14, Fiber: 3, Sugar: 1.5, Sodium: 422},
	"apple":         {Category: "fruit", Calories: 52, Protein: 0.3, Carbs: 14, Fats: 0.2, Fiber: 2.4, Sugar: 10.4, Sodium: 1},
	"banana":        {Category: "fruit", Calories: 89, Protein: 1.1, Carbs: 23, Fats: 0.3, Fiber: 2.6, Sugar: 12, Sodium: 1},
	"rice":          {Category: "grain", Calories: 130, Protein: 2.7, Carbs: 28, Fats: 0.3, Fiber: 0.4, Sugar: 0.1, Sodium: 1},
	"dal":           {Category: "indian", Calories: 116, Protein: 9.0, Carbs: 20, Fats: 0.4, Fiber: 7.9, Sugar: 1.8, Sodium: 238},
	"chapati":       {Category: "indian", Calories: 297, Protein: 11.8, Carbs: 51, Fats: 5, Fiber: 7.3, Sugar: 1.0, Sodium: 318},
	"pasta":         {Category: "italian", Calories: 158, Protein: 5.8, Carbs: 31, Fats: 0.9, Fiber: 1.8, Sugar: 2.7, Sodium: 6},
	"chicken curry": {Category: "indian", Calories: 166, Protein: 24, Carbs: 5, Fats: 5.5, Fiber: 1.0, Sugar: 2.0, Sodium: 340},
	"salad":         {Category: "healthy", Calories: 33, Protein: 1.4, Carbs: 6.3, Fats: 0.3, Fiber: 2.1, Sugar: 3.1, Sodium: 28},
	"sandwich":      {Category: "american", Calories: 245, Protein: 10, Carbs: 32, Fats: 8, Fiber: 2.8, Sugar: 5.5, Sodium: 512},
	"idli":          {Category: "indian", Calories: 58, Protein: 2, Carbs: 12, Fats: 0.2, Fiber: 0.6, Sugar: 0.3, Sodium: 42},
}

// Lookup returns the baseline for a food name, ignoring case.
func Lookup(name string) (Food, bool) {
	f, ok := foods[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// FoodNames lists the table keys in sorted order.
func FoodNames() []string {
	names := make([]string, 0, len(foods))
	for n := range foods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PortionText renders a weight as a household measure for the foods that
// have one, and as grams otherwise.
func PortionText(name string, grams float64) string {
	count := func(unit float64, label string) string {
		if grams < unit {
			return "1 " + label
		}
		return fmt.Sprintf("%d %s", int(grams/unit), label)
	}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rice":
		return count(150, "cup")
	case "biryani":
		return count(200, "plate")
	case "pizza":
		return count(100, "slice")
	case "burger":
		return "1 burger"
	case "dosa":
		return count(60, "piece")
	case "samosa":
		return count(50, "piece")
	case "apple", "banana":
		return "1 medium"
	case "idli":
		return count(30, "piece")
	default:
		return fmt.Sprintf("%gg", grams)
	}
}
