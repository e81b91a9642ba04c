// Package relations adds and removes the favorite, shopping cart and
// subscription links between a user and a recipe or another user.
package relations

import (
	"context"

	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
)

// Target is the entity a relation points at. Exactly one of Recipe and User
// is set, depending on the kind.
type Target struct {
	Relation data.RelationDTO
	Recipe   *data.RecipeDTO
	User     *data.UserDTO
}

type Service struct {
	Relations data.RelationRepository
	Recipes   data.RecipeRepository
	Users     data.UserRepository
}

func NewService(relations data.RelationRepository, recipes data.RecipeRepository, users data.UserRepository) *Service {
	return &Service{
		Relations: relations,
		Recipes:   recipes,
		Users:     users,
	}
}

func (s *Service) resolve(ctx context.Context, targetId string, kind data.RelationKind) (Target, error) {
	if kind.TargetsRecipe() {
		recipe, err := s.Recipes.Get(ctx, targetId)
		if err != nil {
			return Target{}, err
		}
		return Target{Recipe: &recipe}, nil
	}
	user, err := s.Users.Get(ctx, targetId)
	if err != nil {
		return Target{}, err
	}
	return Target{User: &user}, nil
}

// Add links the subject to the target. A second identical call fails with a
// conflict raised by the store itself, so concurrent duplicates cannot both
// succeed.
func (s *Service) Add(ctx context.Context, subject data.UserDTO, targetId string, kind data.RelationKind) (Target, error) {
	target, err := s.resolve(ctx, targetId, kind)
	if err != nil {
		return Target{}, err
	}
	if kind == data.SUBSCRIPTION && targetId == subject.Id() {
		return Target{}, exceptions.InvalidOperation("You cannot subscribe to yourself.")
	}
	relation, err := s.Relations.Create(ctx, kind, subject.Id(), targetId)
	if err != nil {
		return Target{}, err
	}
	target.Relation = relation
	return target, nil
}

// Remove unlinks the subject from the target, failing with not found when
// no such link exists.
func (s *Service) Remove(ctx context.Context, subject data.UserDTO, targetId string, kind data.RelationKind) error {
	return s.Relations.Delete(ctx, kind, subject.Id(), targetId)
}

// Flags reports which targets the viewer is linked to. An anonymous viewer
// is linked to nothing.
func (s *Service) Flags(ctx context.Context, viewer *data.UserDTO, kind data.RelationKind, targetIds []string) (map[string]bool, error) {
	if viewer == nil || len(targetIds) == 0 {
		return map[string]bool{}, nil
	}
	return s.Relations.Exists(ctx, kind, viewer.Id(), targetIds)
}
