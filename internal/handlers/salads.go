package handlers

import (
	"context"

	"gorm.io/gorm"

	"crunchpunch/internal/composition"
	"crunchpunch/models"
)

type saladStore struct{}

func (saladStore) kind() composition.Kind { return composition.KindSalad }

func (saladStore) query(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Ingredients.Food").
		Preload("Ingredients.Food.Nutrition")
}

func (s saladStore) list(ctx context.Context, owner *string) ([]compositionRecord, error) {
	query := s.query(ctx).Where("active = ?", true)
	if owner != nil {
		query = query.Where("user_ext_id = ?", *owner)
	}

	var salads []models.Salad
	if err := query.Order("name asc").Find(&salads).Error; err != nil {
		return nil, err
	}
	records := make([]compositionRecord, 0, len(salads))
	for _, salad := range salads {
		records = append(records, saladRecord(salad))
	}
	return records, nil
}

func (s saladStore) find(ctx context.Context, extID string) (compositionRecord, error) {
	var salad models.Salad
	if err := s.query(ctx).Where("ext_id = ? AND active = ?", extID, true).First(&salad).Error; err != nil {
		return compositionRecord{}, err
	}
	return saladRecord(salad), nil
}

func (s saladStore) create(ctx context.Context, owner string, draft compositionDraft) (compositionRecord, error) {
	salad := models.Salad{
		Name:        draft.Name,
		Description: draft.Description,
		UserExtID:   &owner,
		Ingredients: saladIngredients(0, draft),
	}
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&salad).Error
	})
	if err != nil {
		return compositionRecord{}, err
	}
	return s.find(ctx, salad.ExtID)
}

// replace overwrites the name, description and the full ingredient list.
func (s saladStore) replace(ctx context.Context, record compositionRecord, draft compositionDraft) (compositionRecord, error) {
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("salad_id = ?", record.ID).Delete(&models.SaladIngredient{}).Error; err != nil {
			return err
		}
		updates := map[string]any{"name": draft.Name, "description": draft.Description}
		if err := tx.Model(&models.Salad{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return err
		}
		ingredients := saladIngredients(record.ID, draft)
		if len(ingredients) == 0 {
			return nil
		}
		return tx.Create(&ingredients).Error
	})
	if err != nil {
		return compositionRecord{}, err
	}
	return s.find(ctx, record.ExtID)
}

func (saladStore) deactivate(ctx context.Context, record compositionRecord) error {
	return database.WithContext(ctx).
		Model(&models.Salad{}).
		Where("id = ?", record.ID).
		Update("active", false).Error
}

func saladIngredients(saladID uint, draft compositionDraft) []models.SaladIngredient {
	ingredients := make([]models.SaladIngredient, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		ingredients = append(ingredients, models.SaladIngredient{
			SaladID: saladID,
			FoodID:  line.Food.ID,
			Grams:   line.Grams,
		})
	}
	return ingredients
}

func saladRecord(salad models.Salad) compositionRecord {
	record := compositionRecord{
		storedComposition: salad,
		ID:                salad.ID,
		ExtID:             salad.ExtID,
		Name:              salad.Name,
		Description:       salad.Description,
		UserExtID:         salad.UserExtID,
		Active:            salad.Active,
		CreatedAt:         salad.CreatedAt,
		UpdatedAt:         salad.UpdatedAt,
		Ingredients:       make([]compositionLine, 0, len(salad.Ingredients)),
	}
	for _, ingredient := range salad.Ingredients {
		record.Ingredients = append(record.Ingredients, compositionLine{
			ExtID: ingredient.ExtID,
			Food:  ingredient.Food,
			Grams: ingredient.Grams,
		})
	}
	return record
}
