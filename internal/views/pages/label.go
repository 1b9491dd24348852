package pages

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"crunchpunch/internal/composition"
	"crunchpunch/internal/views/components"
	"crunchpunch/internal/views/layout"
)

// LabelBasis selects whether a label shows batch totals or per-100g values.
type LabelBasis string

const (
	BasisBatch      LabelBasis = "batch"
	BasisPerHundred LabelBasis = "per100"
)

// ParseLabelBasis defaults to BasisBatch for unknown input.
func ParseLabelBasis(value string) LabelBasis {
	if LabelBasis(value) == BasisPerHundred {
		return BasisPerHundred
	}
	return BasisBatch
}

var nutrientDisplay = map[composition.Nutrient]struct{ label, unit string }{
	composition.Calories:     {"Calories", "kcal"},
	composition.Carbohydrate: {"Carbohydrate", "g"},
	composition.Fat:          {"Fat", "g"},
	composition.Protein:      {"Protein", "g"},
	composition.Sugar:        {"Sugar", "g"},
	composition.Fiber:        {"Fiber", "g"},
	composition.VitaminD:     {"Vitamin D", "µg"},
	composition.VitaminE:     {"Vitamin E", "mg"},
}

var flavorDisplay = map[composition.Flavor]string{
	composition.Crunch: "Crunch",
	composition.Punch:  "Punch",
	composition.Sweet:  "Sweet",
	composition.Savory: "Savory",
}

// IngredientRow is one ingredient listed above the label.
type IngredientRow struct {
	Name  string
	Grams int
}

// LabelView is everything the composition label page renders.
type LabelView struct {
	Kind        composition.Kind
	Name        string
	Description string
	Path        string
	Basis       LabelBasis
	Ingredients []IngredientRow
	Totals      composition.Totals
}

// NewLabelView aggregates lines against catalog. Lines whose food cannot be
// resolved are listed with a dash for a name.
func NewLabelView(kind composition.Kind, name, description string, lines []composition.Line, catalog composition.Catalog, basis LabelBasis) LabelView {
	view := LabelView{
		Kind:        kind,
		Name:        name,
		Description: description,
		Basis:       basis,
		Totals:      composition.Aggregate(lines, catalog),
		Ingredients: make([]IngredientRow, 0, len(lines)),
	}
	for _, line := range lines {
		row := IngredientRow{Name: composition.Dash, Grams: line.Grams}
		if catalog != nil {
			if facts, ok := catalog.Lookup(line.FoodRef); ok {
				row.Name = facts.Name
			}
		}
		view.Ingredients = append(view.Ingredients, row)
	}
	return view
}

// Label projects the view onto the label component for the selected basis.
func (v LabelView) Label() components.Label {
	label := components.Label{Title: v.Name}
	per := composition.PerHundred(v.Totals)
	if v.Basis == BasisPerHundred {
		label.Basis = "Per 100 g"
	} else {
		label.Basis = fmt.Sprintf("Per batch (%d g)", v.Totals.Grams)
	}

	for _, nutrient := range composition.Nutrients {
		display := nutrientDisplay[nutrient]
		value := composition.FormatAmount(v.Totals.Nutrition, nutrient)
		if v.Basis == BasisPerHundred {
			value = composition.FormatPerHundred(per, nutrient)
		}
		label.Rows = append(label.Rows, components.LabelRow{Label: display.label, Unit: display.unit, Value: value})
	}

	if v.Kind == composition.KindSalad {
		for _, flavor := range composition.Flavors {
			label.Flavors = append(label.Flavors, components.FlavorTotal{
				Label: flavorDisplay[flavor],
				Value: strconv.FormatFloat(composition.Round(v.Totals.Flavor[flavor], 1), 'f', -1, 64),
			})
		}
	}
	return label
}

// BasisHref links to the same label with a different basis.
func (v LabelView) BasisHref(basis LabelBasis) string {
	return v.Path + "?" + url.Values{"view": {string(basis)}}.Encode()
}

// CompositionLabel renders a salad or mixture with its nutrition label.
func CompositionLabel(view LabelView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var err error
		write := func(s string) {
			if err == nil {
				_, err = io.WriteString(w, s)
			}
		}
		write(`<article data-kind="` + templ.EscapeString(string(view.Kind)) + `"><h1>` + templ.EscapeString(view.Name) + `</h1>`)
		if view.Description != "" {
			write(`<p>` + templ.EscapeString(view.Description) + `</p>`)
		}
		write(`<nav><a href="` + templ.EscapeString(view.BasisHref(BasisBatch)) + `">Per batch</a> | <a href="` +
			templ.EscapeString(view.BasisHref(BasisPerHundred)) + `">Per 100 g</a></nav><ul class="ingredients">`)
		for _, ingredient := range view.Ingredients {
			write(fmt.Sprintf(`<li>%s <span class="num">%d g</span></li>`, templ.EscapeString(ingredient.Name), ingredient.Grams))
		}
		write(`</ul>`)
		if err != nil {
			return err
		}
		if err := components.NutritionLabel(view.Label()).Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</article>`)
		return err
	})
	return layout.Base(view.Name, body)
}
