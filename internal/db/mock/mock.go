package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"crunchpunch/internal/catalog"
	appdb "crunchpunch/internal/db"
	applog "crunchpunch/internal/log"
	"crunchpunch/models"
)

// Seeded account credentials.
const (
	DemoUsername  = "demo"
	DemoPassword  = "crunchpunch"
	AdminUsername = "admin"
	AdminPassword = "crunchpunch-admin"
)

// System composition names.
const (
	GreekSalad = "Greek Salad"
	TrailMix   = "Trail Mix"
)

// New returns an in-memory sqlite database seeded with a small food catalog,
// demo accounts and one system salad and mixture. Each call gets its own
// database.
func New(ctx context.Context) (*gorm.DB, error) {
	applog.Debug(ctx, "initialising mock database")

	dsn := fmt.Sprintf("file:crunchpunch-mock-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		PrepareStmt:                              true,
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, err
	}

	if err := appdb.AutoMigrate(db); err != nil {
		return nil, err
	}

	if err := seed(ctx, db); err != nil {
		return nil, err
	}

	applog.Debug(ctx, "mock database ready")
	return db, nil
}

type foodSeed struct {
	name, category, subcategory, description string
	foundation, mixable                      bool
	crunch, punch, sweet, savory             int
	serving                                  int
	nutrition                                nutritionSeed
}

const unmeasuredCaloriesNote = "Calories not measured, derived from macros."

// nutritionSeed lists per-100g values; a negative value leaves the field unset.
type nutritionSeed struct {
	calories, carbohydrate, fat, protein, sugar, fiber, vitaminD, vitaminE float64
}

var seedFoods = []foodSeed{
	{"Romaine Lettuce", "Vegetable", "Leaf", "Crisp hearts of romaine.", true, false, 4, 1, 1, 1, 85, nutritionSeed{17, 3.3, 0.3, 1.2, 1.2, 2.1, 0, 0.1}},
	{"Baby Spinach", "Vegetable", "Leaf", "Tender young spinach leaves.", true, false, 1, 1, 1, 2, 30, nutritionSeed{23, 3.6, 0.4, 2.9, 0.4, 2.2, 0, 2.0}},
	{"Arugula", "Vegetable", "Leaf", "Peppery rocket leaves.", true, false, 2, 4, 1, 2, 20, nutritionSeed{25, 3.7, 0.7, 2.6, 2.1, 1.6, 0, 0.4}},
	{"Tomato", "Vegetable", "Fruit", "Vine-ripened tomato.", false, false, 1, 2, 3, 2, 120, nutritionSeed{18, 3.9, 0.2, 0.9, 2.6, 1.2, 0, 0.5}},
	{"Cucumber", "Vegetable", "Gourd", "", false, false, 4, 1, 1, 1, 100, nutritionSeed{15, 3.6, 0.1, 0.7, 1.7, 0.5, 0, 0}},
	{"Feta", "Cheese", "Brined", "Sheep milk feta.", false, false, 1, 4, 1, 5, 30, nutritionSeed{264, 4.1, 21, 14, 4.1, 0, 0.4, 0.2}},
	{"Kalamata Olives", "Fruit", "Brined", "", false, false, 1, 5, 1, 4, 15, nutritionSeed{-1, 6, 15, 0.8, 0, 3.2, 0, 3.8}},
	{"Red Onion", "Vegetable", "Allium", "", false, false, 3, 5, 2, 2, 10, nutritionSeed{40, 9.3, 0.1, 1.1, 4.2, 1.7, 0, 0}},
	{"Almond", "Nut", "Tree", "Whole raw almonds.", false, true, 5, 1, 2, 2, 28, nutritionSeed{579, 21.6, 49.9, 21.2, 4.4, 12.5, 0, 25.6}},
	{"Walnut", "Nut", "Tree", "", false, true, 3, 1, 2, 3, 28, nutritionSeed{654, 13.7, 65.2, 15.2, 2.6, 6.7, 0, 0.7}},
	{"Raisin", "Fruit", "Dried", "Sun-dried grapes.", false, true, 1, 2, 5, 1, 40, nutritionSeed{299, 79.2, 0.5, 3.1, 59.2, 3.7, 0, 0.1}},
	{"Pumpkin Seed", "Seed", "Hulled", "", false, true, 4, 1, 1, 3, 28, nutritionSeed{559, 10.7, 49, 30.2, 1.4, 6, 0, 2.2}},
	{"Dark Chocolate Chip", "Sweet", "Chocolate", "", false, true, 2, 2, 5, 1, 15, nutritionSeed{-1, 46, 43, 7.8, 24, 11, -1, 0.6}},
}

type ingredientSeed struct {
	food  string
	grams int
}

var greekSalad = []ingredientSeed{
	{"Romaine Lettuce", 100},
	{"Tomato", 80},
	{"Cucumber", 60},
	{"Feta", 40},
	{"Kalamata Olives", 20},
	{"Red Onion", 15},
}

var trailMix = []ingredientSeed{
	{"Almond", 40},
	{"Walnut", 30},
	{"Raisin", 30},
	{"Pumpkin Seed", 20},
}

func seed(ctx context.Context, db *gorm.DB) error {
	applog.Debug(ctx, "seeding mock database")

	if err := seedUser(ctx, db, DemoUsername, "demo@crunchpunch.app", DemoPassword, models.RoleUser); err != nil {
		return err
	}
	if err := seedUser(ctx, db, AdminUsername, "admin@crunchpunch.app", AdminPassword, models.RoleAdmin); err != nil {
		return err
	}

	byName := make(map[string]models.Food, len(seedFoods))
	for _, entry := range seedFoods {
		food, err := seedFood(ctx, db, entry)
		if err != nil {
			return fmt.Errorf("seed food %s: %w", entry.name, err)
		}
		byName[food.Name] = food
	}

	salad := models.Salad{Name: GreekSalad, Description: "Romaine, tomato, cucumber, feta and olives."}
	for _, line := range greekSalad {
		salad.Ingredients = append(salad.Ingredients, models.SaladIngredient{FoodID: byName[line.food].ID, Grams: line.grams})
	}
	if err := db.WithContext(ctx).Create(&salad).Error; err != nil {
		return err
	}

	mixture := models.Mixture{Name: TrailMix, Description: "Nuts, seeds and raisins."}
	for _, line := range trailMix {
		mixture.Ingredients = append(mixture.Ingredients, models.MixtureIngredient{FoodID: byName[line.food].ID, Grams: line.grams})
	}
	if err := db.WithContext(ctx).Create(&mixture).Error; err != nil {
		return err
	}

	applog.Debug(ctx, "mock database seeded", "foods", len(byName))
	return nil
}

func seedUser(ctx context.Context, db *gorm.DB, username, email, password, role string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
		Role:         role,
	}
	return db.WithContext(ctx).Create(user).Error
}

func seedFood(ctx context.Context, db *gorm.DB, entry foodSeed) (models.Food, error) {
	nutritionCode, err := catalog.GenerateCode(entry.name, appdb.CodeExists(ctx, db, &models.Nutrition{}))
	if err != nil {
		return models.Food{}, err
	}
	nutrition := models.Nutrition{
		Code:         nutritionCode,
		Name:         entry.name,
		Calories:     optional(entry.nutrition.calories),
		Carbohydrate: optional(entry.nutrition.carbohydrate),
		Fat:          optional(entry.nutrition.fat),
		Protein:      optional(entry.nutrition.protein),
		Sugar:        optional(entry.nutrition.sugar),
		Fiber:        optional(entry.nutrition.fiber),
		VitaminD:     optional(entry.nutrition.vitaminD),
		VitaminE:     optional(entry.nutrition.vitaminE),
	}
	if nutrition.Calories == nil {
		nutrition.Notes = unmeasuredCaloriesNote
	}
	if err := db.WithContext(ctx).Create(&nutrition).Error; err != nil {
		return models.Food{}, err
	}

	code, err := catalog.GenerateFoodCode(entry.name, entry.category, entry.subcategory, appdb.CodeExists(ctx, db, &models.Food{}))
	if err != nil {
		return models.Food{}, err
	}
	serving := entry.serving
	food := models.Food{
		Code:                code,
		Name:                entry.name,
		Category:            entry.category,
		Subcategory:         entry.subcategory,
		Description:         entry.description,
		Foundation:          entry.foundation,
		Mixable:             entry.mixable,
		Crunch:              rating(entry.crunch),
		Punch:               rating(entry.punch),
		Sweet:               rating(entry.sweet),
		Savory:              rating(entry.savory),
		TypicalServingGrams: &serving,
		NutritionID:         &nutrition.ID,
	}
	if err := db.WithContext(ctx).Create(&food).Error; err != nil {
		return models.Food{}, err
	}
	return food, nil
}

func optional(value float64) *float64 {
	if value < 0 {
		return nil
	}
	return &value
}

func rating(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}
