package handlers

import (
	"context"

	"github.com/PepegaBoss/foodgram-project-react/internal/models"
	"github.com/PepegaBoss/foodgram-project-react/internal/repositories"
	"github.com/PepegaBoss/foodgram-project-react/pkg/storage"
)

// RecipeProjector turns loaded recipes into viewer-relative views. Flags for a
// whole page come from one query per relation.
type RecipeProjector struct {
	favorites    repositories.MembershipRepository
	cart         repositories.MembershipRepository
	follows      repositories.FollowRepository
	mediaBaseURL string
}

func NewRecipeProjector(favorites, cart repositories.MembershipRepository, follows repositories.FollowRepository, mediaBaseURL string) *RecipeProjector {
	return &RecipeProjector{
		favorites:    favorites,
		cart:         cart,
		follows:      follows,
		mediaBaseURL: mediaBaseURL,
	}
}

// project builds views for recipes as seen by viewerID; 0 is anonymous.
func (p *RecipeProjector) project(ctx context.Context, viewerID uint, recipes []models.Recipe) ([]models.RecipeView, error) {
	views := make([]models.RecipeView, 0, len(recipes))
	if len(recipes) == 0 {
		return views, nil
	}

	recipeIDs := make([]uint, 0, len(recipes))
	authorIDs := make([]uint, 0, len(recipes))
	for i := range recipes {
		recipeIDs = append(recipeIDs, recipes[i].ID)
		authorIDs = append(authorIDs, recipes[i].AuthorID)
	}

	favorited, err := p.favorites.Contains(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	inCart, err := p.cart.Contains(ctx, viewerID, recipeIDs)
	if err != nil {
		return nil, err
	}
	subscribed, err := p.follows.FollowedAmong(ctx, viewerID, authorIDs)
	if err != nil {
		return nil, err
	}

	for i := range recipes {
		r := &recipes[i]
		views = append(views, models.ProjectRecipe(r, p.imageURL(r.Image), models.ViewerFlags{
			Favorited:        favorited[r.ID],
			InShoppingCart:   inCart[r.ID],
			AuthorSubscribed: subscribed[r.AuthorID],
		}))
	}
	return views, nil
}

func (p *RecipeProjector) one(ctx context.Context, viewerID uint, recipe *models.Recipe) (models.RecipeView, error) {
	views, err := p.project(ctx, viewerID, []models.Recipe{*recipe})
	if err != nil {
		return models.RecipeView{}, err
	}
	return views[0], nil
}

func (p *RecipeProjector) short(recipe *models.Recipe) models.RecipeShortView {
	return models.ProjectRecipeShort(recipe, p.imageURL(recipe.Image))
}

func (p *RecipeProjector) imageURL(key string) string {
	return storage.URL(p.mediaBaseURL, key)
}
