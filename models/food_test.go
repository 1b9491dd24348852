package models

import (
	"testing"

	"crunchpunch/internal/composition"
)

func float(v float64) *float64 { return &v }
func rating(v int) *int { return &v }

func TestFoodFacts(t *testing.T) {
	t.Parallel()

	food := Food{
		Entity:     Entity{ExtID: "lettuce-id"},
		Name:       "Lettuce",
		Foundation: true,
		Crunch:     rating(4),
		Sweet:      rating(1),
		Nutrition: &Nutrition{
			Carbohydrate: float(2.9),
			Fat:          float(0),
		},
	}

	facts := food.Facts()
	if facts.Ref != "lettuce-id" || facts.Name != "Lettuce" || !facts.Foundation || facts.Mixable {
		t.Fatalf("unexpected facts %+v", facts)
	}
	if got, ok := facts.Nutrition[composition.Fat]; !ok || got != 0 {
		t.Fatalf("expected fat present with zero value, got %v (present=%t)", got, ok)
	}
	if _, ok := facts.Nutrition[composition.Protein]; ok {
		t.Fatal("expected protein to be absent")
	}
	if facts.Flavor[composition.Crunch] != 4 {
		t.Fatalf("crunch = %v, want 4", facts.Flavor[composition.Crunch])
	}
	if _, ok := facts.Flavor[composition.Savory]; ok {
		t.Fatal("expected savory to be absent")
	}
}

func TestFoodFactsWithoutNutrition(t *testing.T) {
	t.Parallel()

	facts := Food{Entity: Entity{ExtID: "x"}}.Facts()
	if len(facts.Nutrition) != 0 {
		t.Fatalf("expected no nutrition, got %v", facts.Nutrition)
	}
}

func TestSaladLinesAndOwnership(t *testing.T) {
	t.Parallel()

	owner := "user-1"
	salad := Salad{
		UserExtID: &owner,
		Ingredients: []SaladIngredient{
			{Grams: 50, Food: &Food{Entity: Entity{ExtID: "lettuce"}}},
			{Grams: 20},
		},
	}

	lines := salad.Lines()
	if len(lines) != 2 || lines[0] != (composition.Line{FoodRef: "lettuce", Grams: 50}) {
		t.Fatalf("unexpected lines %+v", lines)
	}
	if lines[1].FoodRef != "" {
		t.Fatalf("expected unloaded food to produce empty ref, got %q", lines[1].FoodRef)
	}
	if len(salad.Foods()) != 1 {
		t.Fatalf("expected one loaded food, got %d", len(salad.Foods()))
	}
	if !salad.OwnedBy("user-1") || salad.OwnedBy("user-2") || salad.OwnedBy("") {
		t.Fatal("unexpected ownership result")
	}
	if (Mixture{}).OwnedBy("user-1") {
		t.Fatal("system mixture must not be owned by anyone")
	}
}

func TestNutritionSet(t *testing.T) {
	t.Parallel()

	var n Nutrition
	n.Set(composition.VitaminD, float(1.5))
	n.Set(composition.Nutrient("unknown"), float(3))
	values := n.Values()
	if len(values) != 1 || values[composition.VitaminD] != 1.5 {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestFoodCatalogDerivesCaloriesPerFood(t *testing.T) {
	t.Parallel()

	foods := []Food{
		{Entity: Entity{ExtID: "a"}, Nutrition: &Nutrition{Calories: float(100), Carbohydrate: float(25)}},
		{Entity: Entity{ExtID: "b"}, Nutrition: &Nutrition{Carbohydrate: float(50)}},
	}
	totals := composition.Aggregate(
		[]composition.Line{{FoodRef: "a", Grams: 100}, {FoodRef: "b", Grams: 100}},
		FoodCatalog(foods),
	)
	if got := totals.Nutrition[composition.Calories]; got != 300 {
		t.Fatalf("Calories = %v, want 300", got)
	}
}
