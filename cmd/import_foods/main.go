package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"crunchpunch/internal/catalog"
	"crunchpunch/internal/composition"
	"crunchpunch/internal/config"
	"crunchpunch/internal/db"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"

	"gorm.io/gorm"
)

// nutrientColumns maps CSV headers onto nutrients.
var nutrientColumns = map[string]composition.Nutrient{
	"calories":     composition.Calories,
	"carbohydrate": composition.Carbohydrate,
	"fat":          composition.Fat,
	"protein":      composition.Protein,
	"sugar":        composition.Sugar,
	"fiber":        composition.Fiber,
	"vitamin_d":    composition.VitaminD,
	"vitamin_e":    composition.VitaminE,
}

type fileKind int

const (
	nutritionFile fileKind = iota
	foodFile
)

type importStats struct {
	Created int
	Updated int
	Skipped int
	Linked  int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: import_foods <nutrition.csv|food.csv>...")
		os.Exit(2)
	}
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, paths []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	return importFiles(ctx, database, paths)
}

// importFiles loads nutrition files before food files so that foods can be
// linked to the profile sharing their name.
func importFiles(ctx context.Context, database *gorm.DB, paths []string) error {
	type source struct {
		path    string
		kind    fileKind
		records []map[string]string
		skipped int
	}

	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			return errors.New("csv path must not be empty")
		}
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		header, records, skipped, err := readCSV(file)
		file.Close()
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		kind, err := detectKind(header)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		sources = append(sources, source{path: path, kind: kind, records: records, skipped: skipped})
	}
	sort.SliceStable(sources, func(i, j int) bool { return sources[i].kind < sources[j].kind })

	for _, src := range sources {
		var (
			stats importStats
			err   error
		)
		switch src.kind {
		case nutritionFile:
			stats, err = importNutrition(ctx, database, src.records)
		case foodFile:
			stats, err = importFoods(ctx, database, src.records)
		}
		if err != nil {
			return fmt.Errorf("import %s: %w", src.path, err)
		}
		stats.Skipped += src.skipped
		applog.Info(ctx, "imported csv",
			"file", filepath.Base(src.path),
			"created", stats.Created,
			"updated", stats.Updated,
			"skipped", stats.Skipped,
			"linked", stats.Linked,
		)
	}
	return nil
}

// readCSV returns the header and one record per row. Rows whose column count
// differs from the header are skipped and counted.
func readCSV(r io.Reader) ([]string, []map[string]string, int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, 0, err
	}
	if len(rows) == 0 {
		return nil, nil, 0, errors.New("csv is empty")
	}

	header := make([]string, len(rows[0]))
	for idx, key := range rows[0] {
		header[idx] = strings.ToLower(strings.TrimSpace(key))
	}

	skipped := 0
	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) != len(header) {
			skipped++
			continue
		}
		record := make(map[string]string, len(header))
		for idx, key := range header {
			record[key] = strings.TrimSpace(row[idx])
		}
		records = append(records, record)
	}
	return header, records, skipped, nil
}

func detectKind(header []string) (fileKind, error) {
	columns := make(map[string]struct{}, len(header))
	for _, key := range header {
		columns[key] = struct{}{}
	}
	if _, ok := columns["name"]; !ok {
		return 0, errors.New("missing name column")
	}
	if _, ok := columns["foundation"]; ok {
		return foodFile, nil
	}
	for key := range nutrientColumns {
		if _, ok := columns[key]; ok {
			return nutritionFile, nil
		}
	}
	return 0, errors.New("unrecognised columns: expected food or nutrition headers")
}

func importNutrition(ctx context.Context, database *gorm.DB, records []map[string]string) (importStats, error) {
	var stats importStats
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, record := range records {
			name := record["name"]
			if name == "" {
				stats.Skipped++
				continue
			}

			var profile models.Nutrition
			err := tx.Where("lower(name) = ?", strings.ToLower(name)).First(&profile).Error
			found := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("row %d (%s): find nutrition: %w", idx+1, name, err)
			}

			profile.Name = name
			profile.Description = record["description"]
			if notes, ok := record["notes"]; ok {
				profile.Notes = notes
			}
			for column, nutrient := range nutrientColumns {
				if _, ok := record[column]; ok {
					profile.Set(nutrient, parseFloat(record[column]))
				}
			}

			if found {
				if err := tx.Save(&profile).Error; err != nil {
					return fmt.Errorf("row %d (%s): update nutrition: %w", idx+1, name, err)
				}
				stats.Updated++
				continue
			}

			code := record["code"]
			if code == "" {
				code, err = catalog.GenerateCode(name, db.CodeExists(ctx, tx, &models.Nutrition{}))
				if err != nil {
					return fmt.Errorf("row %d (%s): generate code: %w", idx+1, name, err)
				}
			}
			profile.Code = code
			if err := tx.Create(&profile).Error; err != nil {
				return fmt.Errorf("row %d (%s): create nutrition: %w", idx+1, name, err)
			}
			stats.Created++
		}
		return nil
	})
	return stats, err
}

func importFoods(ctx context.Context, database *gorm.DB, records []map[string]string) (importStats, error) {
	var stats importStats
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for idx, record := range records {
			name := record["name"]
			if name == "" {
				stats.Skipped++
				continue
			}

			var food models.Food
			err := tx.Where("lower(name) = ?", strings.ToLower(name)).First(&food).Error
			found := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("row %d (%s): find food: %w", idx+1, name, err)
			}

			food.Name = name
			food.Category = record["category"]
			food.Subcategory = record["subcategory"]
			food.Description = record["description"]
			food.Notes = record["notes"]
			food.Foundation = parseBool(record["foundation"])
			food.Mixable = parseBool(record["mixable"])
			food.Crunch = parseFlavor(record["crunch"])
			food.Punch = parseFlavor(record["punch"])
			food.Sweet = parseFlavor(record["sweet"])
			food.Savory = parseFlavor(record["savory"])
			food.TypicalServingGrams = parseServing(record["typical_serving_grams"])

			var profile models.Nutrition
			err = tx.Where("lower(name) = ?", strings.ToLower(name)).First(&profile).Error
			switch {
			case err == nil:
				food.NutritionID = &profile.ID
				stats.Linked++
			case errors.Is(err, gorm.ErrRecordNotFound):
				applog.Warn(ctx, "no nutrition profile for food", "food", name)
			default:
				return fmt.Errorf("row %d (%s): find nutrition: %w", idx+1, name, err)
			}

			if found {
				food.Nutrition = nil
				if err := tx.Save(&food).Error; err != nil {
					return fmt.Errorf("row %d (%s): update food: %w", idx+1, name, err)
				}
				stats.Updated++
				continue
			}

			code := record["code"]
			if code == "" {
				exists := db.CodeExists(ctx, tx, &models.Food{})
				code, err = catalog.GenerateFoodCode(name, food.Category, food.Subcategory, exists)
				if errors.Is(err, catalog.ErrCodeSource) {
					code, err = catalog.GenerateCode(name, exists)
				}
				if err != nil {
					return fmt.Errorf("row %d (%s): generate code: %w", idx+1, name, err)
				}
			}
			food.Code = code
			if err := tx.Create(&food).Error; err != nil {
				return fmt.Errorf("row %d (%s): create food: %w", idx+1, name, err)
			}
			stats.Created++
		}
		return nil
	})
	return stats, err
}

func parseFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || parsed < 0 {
		return nil
	}
	return &parsed
}

func parseInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// parseFlavor keeps ratings inside 1..5 and treats anything else as unrated.
func parseFlavor(value string) *int {
	parsed, ok := parseInt(value)
	if !ok || parsed < 1 || parsed > 5 {
		return nil
	}
	return &parsed
}

func parseServing(value string) *int {
	parsed, ok := parseInt(value)
	if !ok || parsed < 1 {
		return nil
	}
	return &parsed
}

func parseBool(value string) bool {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	return err == nil && parsed
}
