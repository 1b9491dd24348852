package components

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNutritionLabelRendersRows(t *testing.T) {
	label := Label{
		Title: "Greek Salad",
		Basis: "Per 100 g",
		Rows: []LabelRow{
			{Label: "Protein", Unit: "g", Value: "4"},
			{Label: "Vitamin D", Unit: "µg", Value: dash},
		},
		Flavors: []FlavorTotal{{Label: "Crunch", Value: "2.5"}},
	}
	var buf bytes.Buffer
	if err := NutritionLabel(label).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render label: %v", err)
	}
	out := buf.String()
	for _, token := range []string{"Greek Salad", "Per 100 g", "Protein", "4 g", "Crunch", "2.5"} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
	if strings.Contains(out, "- µg") {
		t.Fatalf("expected absent values to render without a unit: %s", out)
	}
}

func TestNutritionLabelOmitsEmptyFlavorTable(t *testing.T) {
	var buf bytes.Buffer
	if err := NutritionLabel(Label{Title: "Trail Mix"}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render label: %v", err)
	}
	if strings.Contains(buf.String(), `class="flavor"`) {
		t.Fatalf("expected no flavor table: %s", buf.String())
	}
}

func TestFoodTableRendersSortState(t *testing.T) {
	data := FoodTableData{
		Headers: []SortHeader{
			{Label: "Name", Href: "/app/foods?dir=desc&sort=name", State: "asc"},
			{Label: "Category", Href: "/app/foods?dir=asc&sort=category"},
		},
		Rows: []FoodRow{{Name: "Romaine <Heart>", Category: "Vegetable", Foundation: true}},
	}
	var buf bytes.Buffer
	if err := FoodTable(data).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render food table: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `aria-sort="ascending"`) {
		t.Fatalf("expected ascending aria-sort: %s", out)
	}
	if !strings.Contains(out, `href="/app/foods?dir=desc&amp;sort=name"`) {
		t.Fatalf("expected escaped sort link: %s", out)
	}
	if !strings.Contains(out, "Romaine &lt;Heart&gt;") {
		t.Fatalf("expected escaped food name: %s", out)
	}
}

func TestFoodTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := FoodTable(FoodTableData{}).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render food table: %v", err)
	}
	if !strings.Contains(buf.String(), "No foods match.") {
		t.Fatalf("expected empty-state row: %s", buf.String())
	}
}
