package handlers

import (
	"context"

	"gorm.io/gorm"

	"crunchpunch/internal/composition"
	"crunchpunch/models"
)

type mixtureStore struct{}

func (mixtureStore) kind() composition.Kind { return composition.KindMixture }

func (mixtureStore) query(ctx context.Context) *gorm.DB {
	return database.WithContext(ctx).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Ingredients.Food").
		Preload("Ingredients.Food.Nutrition")
}

func (s mixtureStore) list(ctx context.Context, owner *string) ([]compositionRecord, error) {
	query := s.query(ctx).Where("active = ?", true)
	if owner != nil {
		query = query.Where("user_ext_id = ?", *owner)
	}

	var mixtures []models.Mixture
	if err := query.Order("name asc").Find(&mixtures).Error; err != nil {
		return nil, err
	}
	records := make([]compositionRecord, 0, len(mixtures))
	for _, mixture := range mixtures {
		records = append(records, mixtureRecord(mixture))
	}
	return records, nil
}

func (s mixtureStore) find(ctx context.Context, extID string) (compositionRecord, error) {
	var mixture models.Mixture
	if err := s.query(ctx).Where("ext_id = ? AND active = ?", extID, true).First(&mixture).Error; err != nil {
		return compositionRecord{}, err
	}
	return mixtureRecord(mixture), nil
}

func (s mixtureStore) create(ctx context.Context, owner string, draft compositionDraft) (compositionRecord, error) {
	mixture := models.Mixture{
		Name:        draft.Name,
		Description: draft.Description,
		UserExtID:   &owner,
		Ingredients: mixtureIngredients(0, draft),
	}
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&mixture).Error
	})
	if err != nil {
		return compositionRecord{}, err
	}
	return s.find(ctx, mixture.ExtID)
}

// replace overwrites the name, description and the full ingredient list.
func (s mixtureStore) replace(ctx context.Context, record compositionRecord, draft compositionDraft) (compositionRecord, error) {
	err := database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("mixture_id = ?", record.ID).Delete(&models.MixtureIngredient{}).Error; err != nil {
			return err
		}
		updates := map[string]any{"name": draft.Name, "description": draft.Description}
		if err := tx.Model(&models.Mixture{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return err
		}
		ingredients := mixtureIngredients(record.ID, draft)
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

func (mixtureStore) deactivate(ctx context.Context, record compositionRecord) error {
	return database.WithContext(ctx).
		Model(&models.Mixture{}).
		Where("id = ?", record.ID).
		Update("active", false).Error
}

func mixtureIngredients(mixtureID uint, draft compositionDraft) []models.MixtureIngredient {
	ingredients := make([]models.MixtureIngredient, 0, len(draft.Lines))
	for _, line := range draft.Lines {
		ingredients = append(ingredients, models.MixtureIngredient{
			MixtureID: mixtureID,
			FoodID:    line.Food.ID,
			Grams:     line.Grams,
		})
	}
	return ingredients
}

func mixtureRecord(mixture models.Mixture) compositionRecord {
	record := compositionRecord{
		storedComposition: mixture,
		ID:                mixture.ID,
		ExtID:             mixture.ExtID,
		Name:              mixture.Name,
		Description:       mixture.Description,
		UserExtID:         mixture.UserExtID,
		Active:            mixture.Active,
		CreatedAt:         mixture.CreatedAt,
		UpdatedAt:         mixture.UpdatedAt,
		Ingredients:       make([]compositionLine, 0, len(mixture.Ingredients)),
	}
	for _, ingredient := range mixture.Ingredients {
		record.Ingredients = append(record.Ingredients, compositionLine{
			ExtID: ingredient.ExtID,
			Food:  ingredient.Food,
			Grams: ingredient.Grams,
		})
	}
	return record
}
