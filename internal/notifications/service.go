package notifications

import "context"

// RecipePublished is announced whenever an author publishes a new recipe.
type RecipePublished struct {
	RecipeId       string `json:"recipeId"`
	Name           string `json:"name"`
	AuthorId       string `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
}

type NotificationService interface {
	PublishRecipe(ctx context.Context, event RecipePublished) error
}

// NoopNotificationService is used when no topic is configured.
type NoopNotificationService struct{}

func (n NoopNotificationService) PublishRecipe(ctx context.Context, event RecipePublished) error {
	return nil
}
