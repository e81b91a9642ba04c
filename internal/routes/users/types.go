package users

import (
	"context"

	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/relations"
	"philcali.me/foodgram/internal/routes/util"
)

type User struct {
	Email        string  `json:"email"`
	Id           string  `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	IsSubscribed bool    `json:"is_subscribed"`
	Avatar       *string `json:"avatar"`
}

func NewUser(user data.UserDTO, subscribed bool) User {
	return User{
		Email:        user.Email,
		Id:           user.Id(),
		Username:     user.Username,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsSubscribed: subscribed,
		Avatar:       user.Avatar,
	}
}

type ShortRecipe struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

func NewShortRecipe(recipe data.RecipeDTO) ShortRecipe {
	return ShortRecipe{
		Id:          recipe.Id(),
		Name:        recipe.Name,
		Image:       recipe.Image,
		CookingTime: recipe.CookingTime,
	}
}

type UserWithRecipes struct {
	User
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int           `json:"recipes_count"`
}

type AvatarInput struct {
	Avatar string `json:"avatar"`
}

type Avatar struct {
	Avatar *string `json:"avatar"`
}

// Presenter renders users as seen by the viewer, who may be anonymous.
type Presenter struct {
	Relations *relations.Service
	Recipes   data.RecipeRepository
}

func (p *Presenter) Users(ctx context.Context, viewer *data.UserDTO, users []data.UserDTO) ([]User, error) {
	subscribed, err := p.Relations.Flags(ctx, viewer, data.SUBSCRIPTION, util.MapOnList(users, data.UserDTO.Id))
	if err != nil {
		return nil, err
	}
	return util.MapOnList(users, func(user data.UserDTO) User {
		return NewUser(user, subscribed[user.Id()])
	}), nil
}

func (p *Presenter) User(ctx context.Context, viewer *data.UserDTO, user data.UserDTO) (User, error) {
	views, err := p.Users(ctx, viewer, []data.UserDTO{user})
	if err != nil {
		return User{}, err
	}
	return views[0], nil
}

// NO_RECIPES_LIMIT lists every recipe of each author.
const NO_RECIPES_LIMIT = -1

// authorRecipes pages through the author's recipes until the limit is
// reached. A negative limit reads them all.
func (p *Presenter) authorRecipes(ctx context.Context, authorId string, limit int) ([]ShortRecipe, error) {
	recipes := []ShortRecipe{}
	params := data.QueryParams{}
	for limit < 0 || len(recipes) < limit {
		if limit > 0 {
			params.Limit = limit - len(recipes)
		}
		page, err := p.Recipes.ListByAuthor(ctx, authorId, params)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, util.MapOnList(page.Items, NewShortRecipe)...)
		if page.NextToken == nil {
			break
		}
		params.NextToken = page.NextToken
	}
	return recipes, nil
}

// WithRecipes adds up to recipesLimit of each author's recipes, all of them
// for NO_RECIPES_LIMIT, along with their total count.
func (p *Presenter) WithRecipes(ctx context.Context, viewer *data.UserDTO, authors []data.UserDTO, recipesLimit int) ([]UserWithRecipes, error) {
	views, err := p.Users(ctx, viewer, authors)
	if err != nil {
		return nil, err
	}
	results := make([]UserWithRecipes, len(authors))
	for i, author := range authors {
		recipes, err := p.authorRecipes(ctx, author.Id(), recipesLimit)
		if err != nil {
			return nil, err
		}
		count, err := p.Recipes.CountByAuthor(ctx, author.Id())
		if err != nil {
			return nil, err
		}
		results[i] = UserWithRecipes{
			User:         views[i],
			Recipes:      recipes,
			RecipesCount: count,
		}
	}
	return results, nil
}
