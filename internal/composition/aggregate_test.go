package composition

import (
	"math"
	"testing"
)

func nutritionCatalog() CatalogMap {
	return NewCatalog(
		FoodFacts{
			Ref:        "lettuce",
			Foundation: true,
			Nutrition:  map[Nutrient]float64{Carbohydrate: 3, Protein: 1, Fat: 0, Fiber: 1.3},
			Flavor:     map[Flavor]float64{Crunch: 4, Sweet: 1},
		},
		FoodFacts{
			Ref:        "tomato",
			Foundation: true,
			Nutrition:  map[Nutrient]float64{Carbohydrate: 4, Protein: 1, Fat: 0, Sugar: 2.6},
			Flavor:     map[Flavor]float64{Sweet: 3, Punch: 2},
		},
		FoodFacts{
			Ref:       "cheese",
			Nutrition: map[Nutrient]float64{Calories: 264, Carbohydrate: 4, Protein: 14, Fat: 21},
			Flavor:    map[Flavor]float64{Savory: 5, Punch: 4},
		},
		FoodFacts{Ref: "bare"},
	)
}

func TestAggregateScenario(t *testing.T) {
	t.Parallel()

	lines := []Line{{"lettuce", 50}, {"tomato", 30}, {"cheese", 20}}
	totals := Aggregate(lines, nutritionCatalog())

	if totals.Grams != 100 {
		t.Fatalf("Grams = %d, want 100", totals.Grams)
	}
	wantCarbs := 3*0.5 + 4*0.3 + 4*0.2
	if got := totals.Nutrition[Carbohydrate]; math.Abs(got-wantCarbs) > 1e-9 {
		t.Fatalf("Carbohydrate = %f, want %f", got, wantCarbs)
	}
	wantCalories := (3*4+1*4)*0.5 + (4*4+1*4)*0.3 + 264*0.2
	if got := totals.Nutrition[Calories]; math.Abs(got-wantCalories) > 1e-9 {
		t.Fatalf("Calories = %f, want %f", got, wantCalories)
	}
	if got := totals.Flavor[Crunch]; math.Abs(got-2) > 1e-9 {
		t.Fatalf("Crunch = %f, want 2", got)
	}
	if got := totals.Flavor[Punch]; math.Abs(got-(2*0.3+4*0.2)) > 1e-9 {
		t.Fatalf("Punch = %f", got)
	}
	if totals.Has(VitaminD) {
		t.Fatal("expected vitaminD to be absent")
	}
}

func TestAggregateIsOrderIndependent(t *testing.T) {
	t.Parallel()

	catalog := nutritionCatalog()
	base := []Line{{"lettuce", 33}, {"tomato", 17}, {"cheese", 9}, {"ghost", 4}}
	want := Aggregate(base, catalog)

	permutations := [][]Line{
		{base[3], base[2], base[1], base[0]},
		{base[1], base[3], base[0], base[2]},
		{base[2], base[0], base[3], base[1]},
	}
	for _, lines := range permutations {
		got := Aggregate(lines, catalog)
		if got.Grams != want.Grams {
			t.Fatalf("Grams = %d, want %d", got.Grams, want.Grams)
		}
		for nutrient, value := range want.Nutrition {
			if got.Nutrition[nutrient] != value {
				t.Fatalf("%s = %v, want %v", nutrient, got.Nutrition[nutrient], value)
			}
		}
		for flavor, value := range want.Flavor {
			if got.Flavor[flavor] != value {
				t.Fatalf("%s = %v, want %v", flavor, got.Flavor[flavor], value)
			}
		}
	}
}

func TestAggregateUnresolvedLinesContributeGramsOnly(t *testing.T) {
	t.Parallel()

	totals := Aggregate([]Line{{"ghost", 40}, {"bare", 60}}, nutritionCatalog())
	if totals.Grams != 100 {
		t.Fatalf("Grams = %d, want 100", totals.Grams)
	}
	if len(totals.Nutrition) != 0 || len(totals.Flavor) != 0 {
		t.Fatalf("expected no nutrient keys, got %v / %v", totals.Nutrition, totals.Flavor)
	}
}

func TestAggregateDerivesCaloriesFromMacros(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(FoodFacts{Ref: "oats", Nutrition: map[Nutrient]float64{Carbohydrate: 60, Protein: 10, Fat: 5}})
	totals := Aggregate([]Line{{"oats", 100}}, catalog)
	if got := totals.Nutrition[Calories]; got != 60*4+10*4+5*9 {
		t.Fatalf("Calories = %f, want %d", got, 60*4+10*4+5*9)
	}
}

func TestAggregateDerivesCaloriesPerFood(t *testing.T) {
	t.Parallel()

	catalog := NewCatalog(
		FoodFacts{Ref: "stored", Nutrition: map[Nutrient]float64{Calories: 100, Carbohydrate: 25}},
		FoodFacts{Ref: "macros", Nutrition: map[Nutrient]float64{Carbohydrate: 50}},
		FoodFacts{Ref: "fibre", Nutrition: map[Nutrient]float64{Fiber: 8}},
	)

	tests := []struct {
		name  string
		lines []Line
		want  float64
		has   bool
	}{
		{name: "stored plus derived", lines: []Line{{"stored", 100}, {"macros", 100}}, want: 300, has: true},
		{name: "derived scales by grams", lines: []Line{{"macros", 50}}, want: 100, has: true},
		{name: "stored only", lines: []Line{{"stored", 200}}, want: 200, has: true},
		{name: "no macros", lines: []Line{{"fibre", 100}}, has: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			totals := Aggregate(tt.lines, catalog)
			got, ok := totals.Nutrition[Calories]
			if ok != tt.has {
				t.Fatalf("calories present = %v, want %v", ok, tt.has)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("Calories = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestDeriveCalories(t *testing.T) {
	t.Parallel()

	if _, ok := DeriveCalories(map[Nutrient]float64{Calories: 10, Fat: 1}); ok {
		t.Fatal("expected stored calories to win")
	}
	got, ok := DeriveCalories(map[Nutrient]float64{Fat: 2, Protein: 1})
	if !ok || got != 22 {
		t.Fatalf("DeriveCalories = %v, %v; want 22, true", got, ok)
	}
}

func TestPerHundred(t *testing.T) {
	t.Parallel()

	totals := Aggregate([]Line{{"cheese", 50}, {"lettuce", 150}}, nutritionCatalog())
	per := PerHundred(totals)
	// cheese protein 7g + lettuce protein 1.5g over 200g.
	if got := per[Protein]; got != 4 {
		t.Fatalf("PerHundred protein = %d, want 4", got)
	}
	if _, ok := per[VitaminE]; ok {
		t.Fatal("expected absent nutrients to stay absent")
	}
}

func TestPerHundredZeroGrams(t *testing.T) {
	t.Parallel()

	empty := Aggregate(nil, nutritionCatalog())
	if empty.Grams != 0 {
		t.Fatalf("Grams = %d, want 0", empty.Grams)
	}
	if per := PerHundred(empty); len(per) != 0 {
		t.Fatalf("expected no per-100g values for empty batch, got %v", per)
	}

	forced := Totals{Grams: 0, Nutrition: map[Nutrient]float64{Fat: 12}}
	per := PerHundred(forced)
	if got, ok := per[Fat]; !ok || got != 0 {
		t.Fatalf("PerHundred fat = %d (present=%t), want 0", got, ok)
	}
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	values := map[Nutrient]float64{Fat: 0, Protein: 12.6}
	if got := FormatAmount(values, Fat); got != "0" {
		t.Fatalf("FormatAmount(fat) = %q, want 0", got)
	}
	if got := FormatAmount(values, Protein); got != "13" {
		t.Fatalf("FormatAmount(protein) = %q, want 13", got)
	}
	if got := FormatAmount(values, Sugar); got != Dash {
		t.Fatalf("FormatAmount(sugar) = %q, want %q", got, Dash)
	}
	if got := FormatPerHundred(map[Nutrient]int{Fiber: 0}, Fiber); got != "0" {
		t.Fatalf("FormatPerHundred(fiber) = %q, want 0", got)
	}
	if got := FormatPerHundred(nil, Fiber); got != Dash {
		t.Fatalf("FormatPerHundred(nil) = %q, want %q", got, Dash)
	}
}

func TestRound(t *testing.T) {
	t.Parallel()

	if got := Round(1.23456, 2); got != 1.23 {
		t.Fatalf("Round = %v, want 1.23", got)
	}
}
