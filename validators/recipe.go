package validators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PepegaBoss/foodgram-project-react/internal/apperrors"
	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
)

// Mode tells ValidateRecipe which fields are mandatory.
type Mode int

const (
	// ModeCreate requires every scalar field.
	ModeCreate Mode = iota
	// ModeUpdate keeps absent scalars unchanged. Tags and ingredients are
	// always required because they are replaced as a whole.
	ModeUpdate
)

const nonFieldErrors = "non_field_errors"

// IngredientInput is one submitted ingredient line.
type IngredientInput struct {
	ID     uint `json:"id"`
	Amount Int  `json:"amount"`
}

// RecipePayload is the body of a recipe create or update request. Nil scalars
// mean "not submitted".
type RecipePayload struct {
	Name        *string           `json:"name"`
	Text        *string           `json:"text"`
	CookingTime *Int              `json:"cooking_time"`
	Image       *string           `json:"image"`
	Tags        []uint            `json:"tags"`
	Ingredients []IngredientInput `json:"ingredients"`
}

// ValidatedRecipe is a fully resolved payload. Nil scalars keep their stored
// value on update; on create all of them are set.
type ValidatedRecipe struct {
	Name        *string
	Text        *string
	CookingTime *int
	Image       *storage.Image
	TagIDs      []uint
	Ingredients []models.IngredientAmount
}

// Catalog resolves identifiers against the store.
type Catalog interface {
	ExistingTagIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	ExistingIngredientIDs(ctx context.Context, ids []uint) (map[uint]bool, error)
	RecipeExists(ctx context.Context, authorID uint, name, text string) (bool, error)
}

// ValidateRecipe checks p and collects every field error before returning.
// The returned error is an apperrors validation error carrying all field
// messages, or a store error from catalog.
func ValidateRecipe(ctx context.Context, mode Mode, authorID uint, p RecipePayload, catalog Catalog) (*ValidatedRecipe, error) {
	errs := apperrors.FieldErrors{}
	out := &ValidatedRecipe{}

	out.Name = requireText(errs, mode, "name", p.Name, models.RecipeNameMaxLength)
	out.Text = requireText(errs, mode, "text", p.Text, 0)

	switch {
	case p.CookingTime == nil:
		if mode == ModeCreate {
			errs.Add("cooking_time", "cooking_time required")
		}
	case !p.CookingTime.Valid || p.CookingTime.Value < 1:
		errs.Add("cooking_time", "cooking_time must be ≥ 1")
	default:
		cookingTime := p.CookingTime.Value
		out.CookingTime = &cookingTime
	}

	switch {
	case p.Image == nil || *p.Image == "":
		if mode == ModeCreate || p.Image != nil {
			errs.Add("image", "image required")
		}
	default:
		img, err := storage.DecodeDataURI(*p.Image)
		switch {
		case errors.Is(err, storage.ErrImageTooLarge):
			errs.Add("image", fmt.Sprintf("image must not exceed %d MiB", storage.MaxImageSize>>20))
		case err != nil:
			errs.Add("image", "image must be a base64 encoded data URI")
		default:
			out.Image = img
		}
	}

	tagIDs, err := validateTags(ctx, errs, p.Tags, catalog)
	if err != nil {
		return nil, err
	}
	out.TagIDs = tagIDs

	ingredients, err := validateIngredients(ctx, errs, p.Ingredients, catalog)
	if err != nil {
		return nil, err
	}
	out.Ingredients = ingredients

	if mode == ModeCreate && out.Name != nil && out.Text != nil {
		exists, err := catalog.RecipeExists(ctx, authorID, *out.Name, *out.Text)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add(nonFieldErrors, "recipe already exists")
		}
	}

	if !errs.Empty() {
		return nil, apperrors.Validation(errs)
	}
	return out, nil
}

func requireText(errs apperrors.FieldErrors, mode Mode, field string, v *string, maxLen int) *string {
	if v == nil {
		if mode == ModeCreate {
			errs.Add(field, field+" required")
		}
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		errs.Add(field, field+" required")
		return nil
	}
	if maxLen > 0 && utf8.RuneCountInString(s) > maxLen {
		errs.Add(field, fmt.Sprintf("must not exceed %d characters", maxLen))
		return nil
	}
	return &s
}

func validateTags(ctx context.Context, errs apperrors.FieldErrors, ids []uint, catalog Catalog) ([]uint, error) {
	if len(ids) == 0 {
		errs.Add("tags", "tags required")
		return nil, nil
	}

	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	duplicate := false
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			duplicate = true
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if duplicate {
		errs.Add("tags", "duplicate tag")
	}

	known, err := catalog.ExistingTagIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	for _, id := range unique {
		if !known[id] {
			errs.Add("tags", "unknown tag")
			break
		}
	}
	return unique, nil
}

func validateIngredients(ctx context.Context, errs apperrors.FieldErrors, lines []IngredientInput, catalog Catalog) ([]models.IngredientAmount, error) {
	if len(lines) == 0 {
		errs.Add("ingredients", "ingredients required")
		return nil, nil
	}

	seen := make(map[uint]struct{}, len(lines))
	ids := make([]uint, 0, len(lines))
	out := make([]models.IngredientAmount, 0, len(lines))
	duplicate, badAmount := false, false
	for _, line := range lines {
		if !line.Amount.Valid || line.Amount.Value < 1 {
			badAmount = true
		}
		if _, ok := seen[line.ID]; ok {
			duplicate = true
			continue
		}
		seen[line.ID] = struct{}{}
		ids = append(ids, line.ID)
		out = append(out, models.IngredientAmount{IngredientID: line.ID, Amount: line.Amount.Value})
	}
	if duplicate {
		errs.Add("ingredients", "duplicate ingredient")
	}

	known, err := catalog.ExistingIngredientIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if !known[id] {
			errs.Add("ingredients", "unknown ingredient")
			break
		}
	}
	if badAmount {
		errs.Add("ingredients", "amount must be ≥ 1")
	}
	return out, nil
}
