package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// LabelRow is one nutrient line on a nutrition label.
type LabelRow struct {
	Label string
	Unit  string
	Value string
}

// FlavorTotal is one flavor dimension shown beneath the nutrient rows.
type FlavorTotal struct {
	Label string
	Value string
}

// Label is the content of a nutrition label.
type Label struct {
	Title   string
	Basis   string
	Rows    []LabelRow
	Flavors []FlavorTotal
}

// NutritionLabel renders nutrient rows and, when present, flavor totals.
func NutritionLabel(label Label) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<section class="label" data-basis="`)
		h.text(label.Basis)
		h.raw(`"><h2>`)
		h.text(label.Title)
		h.raw(`</h2><p>`)
		h.text(label.Basis)
		h.raw(`</p><table><tbody>`)
		for _, row := range label.Rows {
			h.raw(`<tr><th scope="row">`)
			h.text(row.Label)
			h.raw(`</th><td class="num">`)
			h.text(row.Value)
			if row.Unit != "" && row.Value != dash {
				h.raw(" ")
				h.text(row.Unit)
			}
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		if len(label.Flavors) > 0 {
			h.raw(`<table class="flavor"><tbody>`)
			for _, flavor := range label.Flavors {
				h.raw(`<tr><th scope="row">`)
				h.text(flavor.Label)
				h.raw(`</th><td class="num">`)
				h.text(flavor.Value)
				h.raw(`</td></tr>`)
			}
			h.raw(`</tbody></table>`)
		}
		h.raw(`</section>`)
		return h.err
	})
}

const dash = "-"
