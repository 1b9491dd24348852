package pages

import (
	"context"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"crunchpunch/internal/catalog"
	"crunchpunch/internal/views/components"
	"crunchpunch/internal/views/layout"
	"crunchpunch/models"
)

// FoodsPath is where the food table is served.
const FoodsPath = "/app/foods"

var sortColumns = []struct {
	field catalog.SortField
	label string
}{
	{catalog.SortName, "Name"},
	{catalog.SortCategory, "Category"},
	{catalog.SortSubcategory, "Subcategory"},
	{catalog.SortDescription, "Description"},
}

// FoodsView is the food table page state.
type FoodsView struct {
	Foods      []models.Food
	Categories []string
	Filters    catalog.FoodFilters
	Sort       catalog.Sort
}

// Table projects the view onto the table component. Each heading links to the
// next sort state for its column with the current filters preserved.
func (v FoodsView) Table() components.FoodTableData {
	data := components.FoodTableData{}
	for _, column := range sortColumns {
		header := components.SortHeader{Label: column.label, Href: v.sortHref(v.Sort.Next(column.field))}
		if v.Sort.Active() && v.Sort.Field == column.field {
			header.State = string(v.Sort.Direction)
		}
		data.Headers = append(data.Headers, header)
	}
	for _, food := range v.Foods {
		data.Rows = append(data.Rows, components.FoodRow{
			Name:        food.Name,
			Code:        food.Code,
			Category:    food.Category,
			Subcategory: food.Subcategory,
			Description: food.Description,
			Foundation:  food.Foundation,
			Mixable:     food.Mixable,
		})
	}
	return data
}

func (v FoodsView) sortHref(next catalog.Sort) string {
	values := url.Values{}
	if v.Filters.Query != "" {
		values.Set("q", v.Filters.Query)
	}
	if v.Filters.Mixable != "" && v.Filters.Mixable != catalog.MixableAll {
		values.Set("mixable", string(v.Filters.Mixable))
	}
	if v.Filters.FoundationOnly {
		values.Set("foundation", "true")
	}
	if v.Filters.Category != "" {
		values.Set("category", v.Filters.Category)
	}
	if next.Active() {
		values.Set("sort", string(next.Field))
		values.Set("dir", string(next.Direction))
	}
	if len(values) == 0 {
		return FoodsPath
	}
	return FoodsPath + "?" + values.Encode()
}

// categorySelect renders the category filter. The empty option clears it.
func (v FoodsView) categorySelect() string {
	var b strings.Builder
	b.WriteString(`<select name="category"><option value="">All categories</option>`)
	for _, category := range v.Categories {
		b.WriteString(`<option value="` + templ.EscapeString(category) + `"`)
		if strings.EqualFold(category, v.Filters.Category) {
			b.WriteString(` selected`)
		}
		b.WriteString(`>` + templ.EscapeString(category) + `</option>`)
	}
	b.WriteString(`</select>`)
	return b.String()
}

// FoodsPage renders the searchable, sortable food table.
func FoodsPage(view FoodsView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Foods</h1><form method="get" action="`+FoodsPath+`">`+
			`<input type="search" name="q" value="`+templ.EscapeString(view.Filters.Query)+`" placeholder="Search foods">`+
			view.categorySelect()+
			`<button type="submit">Search</button></form>`); err != nil {
			return err
		}
		return components.FoodTable(view.Table()).Render(ctx, w)
	})
	return layout.Base("Foods", body)
}
