package handlers

import (
	"errors"
	"net/http"
	"strings"

	templpkg "github.com/a-h/templ"
	"gorm.io/gorm"

	"crunchpunch/internal/catalog"
	"crunchpunch/internal/composition"
	applog "crunchpunch/internal/log"
	"crunchpunch/internal/views/pages"
	"crunchpunch/models"
)

// LabelPath prefixes the label pages, served at /app/{salad|mixture}/{extid}.
const LabelPath = "/app"

// CompositionLabel renders the nutrition label page for a salad or mixture.
// The kind segment is matched case-insensitively.
func CompositionLabel(w http.ResponseWriter, r *http.Request) {
	if !requirePage(w, r) {
		return
	}

	segments := resourcePath(r, LabelPath)
	if len(segments) != 2 {
		http.NotFound(w, r)
		return
	}
	kind, ok := composition.ParseKind(segments[0])
	if !ok {
		http.NotFound(w, r)
		return
	}
	store := storeFor(kind)
	extID := segments[1]

	ctx := r.Context()
	record, err := store.find(ctx, extID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.NotFound(w, r)
			return
		}
		applog.Error(ctx, "failed to load composition for label", "error", err, "kind", kind, "extid", extID)
		http.Error(w, "unable to load "+string(kind), http.StatusInternalServerError)
		return
	}

	view := pages.NewLabelView(
		kind,
		record.Name,
		record.Description,
		record.Lines(),
		models.FoodCatalog(record.Foods()),
		pages.ParseLabelBasis(r.URL.Query().Get("view")),
	)
	view.Path = LabelPath + "/" + string(kind) + "/" + record.ExtID
	renderPage(w, r, pages.CompositionLabel(view))
}

func storeFor(kind composition.Kind) compositionStore {
	if kind == composition.KindMixture {
		return mixtureStore{}
	}
	return saladStore{}
}

// FoodsPage renders the searchable food table.
func FoodsPage(w http.ResponseWriter, r *http.Request) {
	if !requirePage(w, r) {
		return
	}

	ctx := r.Context()
	foods, err := loadActiveFoods(r)
	if err != nil {
		applog.Error(ctx, "failed to load foods for table", "error", err)
		http.Error(w, "unable to load foods", http.StatusInternalServerError)
		return
	}

	view := pages.FoodsView{
		Categories: catalog.Categories(foods),
		Filters:    catalog.FoodFiltersFromRequest(r),
		Sort:       catalog.ParseSort(r.URL.Query().Get("sort"), r.URL.Query().Get("dir")),
	}
	view.Foods = catalog.SortFoods(catalog.FilterFoods(foods, view.Filters), view.Sort)
	renderPage(w, r, pages.FoodsPage(view))
}

// requirePage guards HTML routes: GET only, storage present, signed in.
func requirePage(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	if database == nil {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return false
	}
	if !ActiveSession(r) {
		applog.Debug(r.Context(), "page requested without session", "path", r.URL.Path)
		http.Error(w, strings.ToLower(http.StatusText(http.StatusUnauthorized)), http.StatusUnauthorized)
		return false
	}
	return true
}

func renderPage(w http.ResponseWriter, r *http.Request, component templpkg.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
