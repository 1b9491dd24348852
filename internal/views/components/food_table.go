package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// SortHeader is a clickable column heading. State is "asc", "desc" or empty.
type SortHeader struct {
	Label string
	Href  string
	State string
}

// FoodRow is one rendered food.
type FoodRow struct {
	Name        string
	Code        string
	Category    string
	Subcategory string
	Description string
	Foundation  bool
	Mixable     bool
}

// FoodTableData is the content of FoodTable.
type FoodTableData struct {
	Headers []SortHeader
	Rows    []FoodRow
}

// FoodTable renders the food catalog with sortable headings.
func FoodTable(data FoodTableData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<table class="foods"><thead><tr>`)
		for _, header := range data.Headers {
			h.rawf(`<th aria-sort="%s"><a href="`, ariaSort(header.State))
			h.text(header.Href)
			h.raw(`">`)
			h.text(header.Label)
			h.raw(sortIndicator(header.State))
			h.raw(`</a></th>`)
		}
		h.raw(`<th>Code</th><th>Foundation</th><th>Mixable</th></tr></thead><tbody>`)
		if len(data.Rows) == 0 {
			h.rawf(`<tr><td colspan="%d">No foods match.</td></tr>`, len(data.Headers)+3)
		}
		for _, row := range data.Rows {
			h.raw(`<tr><td>`)
			h.text(row.Name)
			h.raw(`</td><td>`)
			h.text(row.Category)
			h.raw(`</td><td>`)
			h.text(row.Subcategory)
			h.raw(`</td><td>`)
			h.text(row.Description)
			h.raw(`</td><td>`)
			h.text(row.Code)
			h.raw(`</td><td>`)
			h.raw(yesNo(row.Foundation))
			h.raw(`</td><td>`)
			h.raw(yesNo(row.Mixable))
			h.raw(`</td></tr>`)
		}
		h.raw(`</tbody></table>`)
		return h.err
	})
}

func ariaSort(state string) string {
	switch state {
	case "asc":
		return "ascending"
	case "desc":
		return "descending"
	}
	return "none"
}

func sortIndicator(state string) string {
	switch state {
	case "asc":
		return " ▲"
	case "desc":
		return " ▼"
	}
	return ""
}

func yesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}
