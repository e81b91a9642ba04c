package recipes_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/memory"
	"philcali.me/foodgram/internal/notifications"
	"philcali.me/foodgram/internal/recipes"
)

type recordingNotifications struct {
	events []notifications.RecipePublished
	err    error
}

func (rn *recordingNotifications) PublishRecipe(ctx context.Context, event notifications.RecipePublished) error {
	rn.events = append(rn.events, event)
	return rn.err
}

type fixture struct {
	store    *memory.Store
	service  *recipes.Service
	notifier *recordingNotifications
	author   data.UserDTO
	other    data.UserDTO
	flour    string
	sugar    string
	eggs     string
}

func newFixture(t *testing.T) fixture {
	ctx := context.TODO()
	store := memory.NewStore()
	_, err := store.Ingredients().Import(ctx, []data.IngredientInputDTO{
		{Name: "Flour", MeasurementUnit: "g"},
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "Eggs", MeasurementUnit: "pcs"},
	})
	require.NoError(t, err)
	author, err := store.Users().Create(ctx, data.UserInputDTO{Email: "alice@example.com", Username: "alice", FirstName: "Alice", LastName: "Smith"})
	require.NoError(t, err)
	other, err := store.Users().Create(ctx, data.UserInputDTO{Email: "bob@example.com", Username: "bob", FirstName: "Bob", LastName: "Jones"})
	require.NoError(t, err)
	notifier := &recordingNotifications{}
	return fixture{
		store:    store,
		service:  recipes.NewService(store.Recipes(), store.Ingredients(), notifier),
		notifier: notifier,
		author:   author,
		other:    other,
		flour:    data.IngredientId("Flour"),
		sugar:    data.IngredientId("Sugar"),
		eggs:     data.IngredientId("Eggs"),
	}
}

func input(amounts ...data.IngredientAmountDTO) data.RecipeInputDTO {
	return data.RecipeInputDTO{
		Name:        "Pancakes",
		Text:        "Mix and fry.",
		CookingTime: 15,
		Image:       "pancakes.png",
		Ingredients: amounts,
	}
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	recipe, err := f.service.Create(context.TODO(), f.author, input(
		data.IngredientAmountDTO{Id: f.flour, Amount: 200},
		data.IngredientAmountDTO{Id: f.eggs, Amount: 2},
	))
	require.NoError(t, err)
	assert.Equal(t, f.author.Id(), recipe.Author)
	assert.Equal(t, []data.RecipeIngredientDTO{
		{IngredientId: f.flour, Name: "Flour", MeasurementUnit: "g", Amount: 200},
		{IngredientId: f.eggs, Name: "Eggs", MeasurementUnit: "pcs", Amount: 2},
	}, recipe.Ingredients)

	require.Len(t, f.notifier.events, 1)
	assert.Equal(t, notifications.RecipePublished{
		RecipeId:       recipe.Id(),
		Name:           "Pancakes",
		AuthorId:       f.author.Id(),
		AuthorUsername: "alice",
	}, f.notifier.events[0])
}

func TestCreateSurvivesNotificationFailure(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("topic unavailable")
	recipe, err := f.service.Create(context.TODO(), f.author, input(data.IngredientAmountDTO{Id: f.flour, Amount: 1}))
	require.NoError(t, err)
	_, err = f.store.Recipes().Get(context.TODO(), recipe.Id())
	assert.NoError(t, err)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()
	var validationErr *exceptions.ValidationError

	_, err := f.service.Create(ctx, f.author, input())
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "ingredients")

	_, err = f.service.Create(ctx, f.author, input(
		data.IngredientAmountDTO{Id: f.flour, Amount: 1},
		data.IngredientAmountDTO{Id: f.flour, Amount: 2},
	))
	require.ErrorAs(t, err, &validationErr)

	_, err = f.service.Create(ctx, f.author, input(data.IngredientAmountDTO{Id: f.flour, Amount: 0}))
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "ingredients[0].amount")

	_, err = f.service.Create(ctx, f.author, input(data.IngredientAmountDTO{Id: "missing", Amount: 1}))
	var notFound *exceptions.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	results, err := f.store.Recipes().List(ctx, data.QueryParams{})
	require.NoError(t, err)
	assert.Empty(t, results.Items, "nothing is written when validation fails")
	assert.Empty(t, f.notifier.events)
}

func TestUpdateReplacesIngredients(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()
	recipe, err := f.service.Create(ctx, f.author, input(
		data.IngredientAmountDTO{Id: f.flour, Amount: 200},
		data.IngredientAmountDTO{Id: f.eggs, Amount: 2},
	))
	require.NoError(t, err)

	replacement := input(data.IngredientAmountDTO{Id: f.sugar, Amount: 50})
	replacement.Name = "Sweet pancakes"
	updated, err := f.service.Update(ctx, f.author, recipe.Id(), replacement)
	require.NoError(t, err)
	assert.Equal(t, "Sweet pancakes", updated.Name)
	assert.Equal(t, []data.RecipeIngredientDTO{
		{IngredientId: f.sugar, Name: "Sugar", MeasurementUnit: "g", Amount: 50},
	}, updated.Ingredients)

	stored, err := f.store.Recipes().Get(ctx, recipe.Id())
	require.NoError(t, err)
	assert.Equal(t, updated.Ingredients, stored.Ingredients)
}

func TestUpdateFailureKeepsOriginal(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()
	recipe, err := f.service.Create(ctx, f.author, input(data.IngredientAmountDTO{Id: f.flour, Amount: 200}))
	require.NoError(t, err)

	_, err = f.service.Update(ctx, f.author, recipe.Id(), input(data.IngredientAmountDTO{Id: "missing", Amount: 1}))
	require.Error(t, err)

	stored, err := f.store.Recipes().Get(ctx, recipe.Id())
	require.NoError(t, err)
	assert.Equal(t, recipe.Ingredients, stored.Ingredients)
}

func TestOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.TODO()
	recipe, err := f.service.Create(ctx, f.author, input(data.IngredientAmountDTO{Id: f.flour, Amount: 200}))
	require.NoError(t, err)
	assert.True(t, recipes.IsOwner(recipe, &f.author))
	assert.False(t, recipes.IsOwner(recipe, &f.other))
	assert.False(t, recipes.IsOwner(recipe, nil))

	var forbidden *exceptions.ForbiddenError
	_, err = f.service.Update(ctx, f.other, recipe.Id(), input(data.IngredientAmountDTO{Id: f.sugar, Amount: 1}))
	assert.ErrorAs(t, err, &forbidden)
	assert.ErrorAs(t, f.service.Delete(ctx, f.other, recipe.Id()), &forbidden)

	var notFound *exceptions.NotFoundError
	assert.ErrorAs(t, f.service.Delete(ctx, f.author, "missing"), &notFound)

	require.NoError(t, f.service.Delete(ctx, f.author, recipe.Id()))
	_, err = f.store.Recipes().Get(ctx, recipe.Id())
	assert.ErrorAs(t, err, &notFound)
}
