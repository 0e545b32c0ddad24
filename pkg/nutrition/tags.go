package nutrition

import (
	"sort"
	"strings"

	"CalorAI/internal/entity"
)

const (
	TagNonVeg       = "non_veg"
	TagVegetarian   = "vegetarian"
	TagVegan        = "vegan"
	TagLowSugar     = "low_sugar"
	TagHighProtein  = "high_protein"
	TagKetoFriendly = "keto_friendly"
)

var (
	meatFoods  = set("burger", "chicken curry")
	vegFoods   = set("dosa", "idli", "dal", "chapati", "rice", "salad", "samosa")
	veganFoods = set("dosa", "idli", "dal", "rice", "salad", "apple", "banana")
)

func set(names ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(names))
	for _, n := range names {
		m[n] = struct{}{}
	}
	return m
}

type membership struct {
	hasMeat  bool
	allVeg   bool
	allVegan bool
}

func classifyNames(detections []entity.FoodDetection) membership {
	m := membership{allVeg: true, allVegan: true}
	for _, d := range detections {
		name := strings.ToLower(strings.TrimSpace(d.Name))
		if _, ok := meatFoods[name]; ok {
			m.hasMeat = true
		}
		if _, ok := vegFoods[name]; !ok {
			m.allVeg = false
		}
		if _, ok := veganFoods[name]; !ok {
			m.allVegan = false
		}
	}
	return m
}

// Tag infers dietary tags from item names and summed nutrients. The result is
// sorted and empty for an empty input.
func Tag(detections []entity.FoodDetection) []string {
	tags := []string{}
	if len(detections) == 0 {
		return tags
	}

	m := classifyNames(detections)
	switch {
	case m.hasMeat:
		tags = append(tags, TagNonVeg)
	case m.allVeg:
		tags = append(tags, TagVegetarian)
	}
	if m.allVegan {
		tags = append(tags, TagVegan)
	}

	totals := Aggregate(detections)
	if totals.TotalSugar < 10 {
		tags = append(tags, TagLowSugar)
	}
	if totals.TotalProtein >= 25 {
		tags = append(tags, TagHighProtein)
	}
	if totals.TotalCarbs < 30 {
		tags = append(tags, TagKetoFriendly)
	}

	sort.Strings(tags)
	return tags
}

// Classify reports the diet class of a meal. Names missing from every list
// leave the meal unclassified rather than defaulting to a diet.
func Classify(detections []entity.FoodDetection) entity.DietClass {
	if len(detections) == 0 {
		return entity.DietUnclassified
	}

	m := classifyNames(detections)
	switch {
	case m.hasMeat:
		return entity.DietNonVeg
	case m.allVegan:
		return entity.DietVegan
	case m.allVeg:
		return entity.DietVegetarian
	default:
		return entity.DietUnclassified
	}
}
