package recipes

import (
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/routes/users"
	"philcali.me/foodgram/internal/routes/util"
)

type RecipeIngredient struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

func NewRecipeIngredient(line data.RecipeIngredientDTO) RecipeIngredient {
	return RecipeIngredient{
		Id:              line.IngredientId,
		Name:            line.Name,
		MeasurementUnit: line.MeasurementUnit,
		Amount:          line.Amount,
	}
}

type Recipe struct {
	Id               string             `json:"id"`
	Author           users.User         `json:"author"`
	Ingredients      []RecipeIngredient `json:"ingredients"`
	IsFavorited      bool               `json:"is_favorited"`
	IsInShoppingCart bool               `json:"is_in_shopping_cart"`
	Name             string             `json:"name"`
	Image            string             `json:"image"`
	Text             string             `json:"text"`
	CookingTime      int                `json:"cooking_time"`
}

func NewRecipe(recipe data.RecipeDTO, author users.User, favorited bool, inCart bool) Recipe {
	return Recipe{
		Id:               recipe.Id(),
		Author:           author,
		Ingredients:      util.MapOnList(recipe.Ingredients, NewRecipeIngredient),
		IsFavorited:      favorited,
		IsInShoppingCart: inCart,
		Name:             recipe.Name,
		Image:            recipe.Image,
		Text:             recipe.Text,
		CookingTime:      recipe.CookingTime,
	}
}

type ShortLink struct {
	ShortLink string `json:"short-link"`
}
