package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"crunchpunch/internal/catalog"
	"crunchpunch/models"
)

func TestFoodsViewHeadersCycleSort(t *testing.T) {
	view := FoodsView{Sort: catalog.Sort{Field: catalog.SortName, Direction: catalog.Ascending}}
	table := view.Table()

	if len(table.Headers) != 4 {
		t.Fatalf("expected 4 sortable headers, got %d", len(table.Headers))
	}
	name := table.Headers[0]
	if name.State != "asc" {
		t.Fatalf("expected name header to be ascending, got %q", name.State)
	}
	if name.Href != FoodsPath+"?dir=desc&sort=name" {
		t.Fatalf("unexpected name href %q", name.Href)
	}
	category := table.Headers[1]
	if category.State != "" || category.Href != FoodsPath+"?dir=asc&sort=category" {
		t.Fatalf("unexpected category header %+v", category)
	}

	cleared := FoodsView{Sort: catalog.Sort{Field: catalog.SortName, Direction: catalog.Descending}}
	if href := cleared.Table().Headers[0].Href; href != FoodsPath {
		t.Fatalf("expected third click to clear sorting, got %q", href)
	}
}

func TestFoodsViewPreservesFilters(t *testing.T) {
	view := FoodsView{Filters: catalog.FoodFilters{Query: "nut", Mixable: catalog.MixableOnly, FoundationOnly: true}}
	href := view.Table().Headers[0].Href
	for _, token := range []string{"q=nut", "mixable=mixable", "foundation=true", "sort=name"} {
		if !strings.Contains(href, token) {
			t.Fatalf("expected %q in %q", token, href)
		}
	}
}

func TestFoodsPageRendersCategoryFilter(t *testing.T) {
	view := FoodsView{
		Categories: []string{"Nut", "Fish & Seafood"},
		Filters:    catalog.FoodFilters{Category: "nut"},
	}
	var buf bytes.Buffer
	if err := FoodsPage(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render foods page: %v", err)
	}
	out := buf.String()
	for _, token := range []string{
		`<select name="category">`,
		`<option value="">All categories</option>`,
		`<option value="Nut" selected>Nut</option>`,
		`<option value="Fish &amp; Seafood">Fish &amp; Seafood</option>`,
	} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}

func TestFoodsPageRenders(t *testing.T) {
	view := FoodsView{
		Foods:   []models.Food{{Name: "Walnut", Code: "WALNUT-NUT-TREE", Category: "Nut", Mixable: true}},
		Filters: catalog.FoodFilters{Query: "wal"},
	}
	var buf bytes.Buffer
	if err := FoodsPage(view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("render foods page: %v", err)
	}
	out := buf.String()
	for _, token := range []string{"<h1>Foods</h1>", `value="wal"`, "Walnut", "WALNUT-NUT-TREE"} {
		if !strings.Contains(out, token) {
			t.Fatalf("expected output to contain %q: %s", token, out)
		}
	}
}
