package composition

import (
	"math"
	"sort"
	"strconv"
)

// Totals are the mass-weighted sums for a set of lines. A key is present in
// Nutrition or Flavor only when at least one resolved food carries it.
type Totals struct {
	Grams     int
	Nutrition map[Nutrient]float64
	Flavor    map[Flavor]float64
}

// Has reports whether the nutrient is present in the totals.
func (t Totals) Has(n Nutrient) bool {
	_, ok := t.Nutrition[n]
	return ok
}

// Aggregate sums grams across every line and scales each resolved food's
// per-100g nutrition and flavor values by grams/100. A food without stored
// calories contributes energy derived from its own macros. Unresolved lines
// add their grams but contribute no nutrients.
func Aggregate(lines []Line, catalog Catalog) Totals {
	totals := Totals{
		Nutrition: map[Nutrient]float64{},
		Flavor:    map[Flavor]float64{},
	}

	// Summation order is fixed so permuted inputs give bit-identical floats.
	ordered := make([]Line, len(lines))
	copy(ordered, lines)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].FoodRef == ordered[j].FoodRef {
			return ordered[i].Grams < ordered[j].Grams
		}
		return ordered[i].FoodRef < ordered[j].FoodRef
	})

	for _, line := range ordered {
		if line.Grams > 0 {
			totals.Grams += line.Grams
		}
		facts, ok := lookup(catalog, line.FoodRef)
		if !ok || line.Grams <= 0 {
			continue
		}
		scale := float64(line.Grams) / 100
		for nutrient, value := range facts.Nutrition {
			totals.Nutrition[nutrient] += value * scale
		}
		if energy, ok := DeriveCalories(facts.Nutrition); ok {
			totals.Nutrition[Calories] += energy * scale
		}
		for flavor, value := range facts.Flavor {
			totals.Flavor[flavor] += value * scale
		}
	}

	return totals
}

// DeriveCalories computes per-100g energy from macros (4 kcal/g carbohydrate
// and protein, 9 kcal/g fat) for a food that stores no calories of its own.
// It reports false when calories are already present or no macro is.
func DeriveCalories(values map[Nutrient]float64) (float64, bool) {
	if _, ok := values[Calories]; ok {
		return 0, false
	}
	carbs, hasCarbs := values[Carbohydrate]
	protein, hasProtein := values[Protein]
	fat, hasFat := values[Fat]
	if !hasCarbs && !hasProtein && !hasFat {
		return 0, false
	}
	return carbs*4 + protein*4 + fat*9, true
}

// PerHundred converts batch totals into rounded per-100g values. A zero gram
// batch yields zero for every present nutrient.
func PerHundred(totals Totals) map[Nutrient]int {
	out := make(map[Nutrient]int, len(totals.Nutrition))
	for nutrient, value := range totals.Nutrition {
		if totals.Grams <= 0 {
			out[nutrient] = 0
			continue
		}
		out[nutrient] = int(math.Round(value / float64(totals.Grams) * 100))
	}
	return out
}

// Round returns value rounded to the given number of decimal places.
func Round(value float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(value*factor) / factor
}

// Dash is rendered in place of values that are absent rather than zero.
const Dash = "-"

// FormatAmount renders a present value as a rounded integer and an absent
// one as Dash.
func FormatAmount[K comparable](values map[K]float64, key K) string {
	value, ok := values[key]
	if !ok {
		return Dash
	}
	return strconv.Itoa(int(math.Round(value)))
}

// FormatPerHundred renders a per-100g value, or Dash when the nutrient is absent.
func FormatPerHundred(values map[Nutrient]int, key Nutrient) string {
	value, ok := values[key]
	if !ok {
		return Dash
	}
	return strconv.Itoa(value)
}
