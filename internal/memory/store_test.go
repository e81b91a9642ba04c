package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/memory"
)

func createUser(t *testing.T, store *memory.Store, username string) data.UserDTO {
	user, err := store.Users().Create(context.TODO(), data.UserInputDTO{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: username,
		LastName:  "Test",
	})
	require.NoError(t, err)
	return user
}

func createRecipe(t *testing.T, store *memory.Store, author data.UserDTO, name string) data.RecipeDTO {
	recipe, err := store.Recipes().Create(context.TODO(), author.Id(), data.RecipeInputDTO{
		Name:        name,
		Text:        "Cook it.",
		CookingTime: 5,
		Image:       name + ".png",
	}, nil)
	require.NoError(t, err)
	return recipe
}

func TestUsersListedByUsername(t *testing.T) {
	store := memory.NewStore()
	for _, username := range []string{"zoe", "adam", "mia"} {
		createUser(t, store, username)
	}
	first, err := store.Users().List(context.TODO(), data.QueryParams{Limit: 2})
	require.NoError(t, err)
	require.NotNil(t, first.NextToken)
	second, err := store.Users().List(context.TODO(), data.QueryParams{Limit: 2, NextToken: first.NextToken})
	require.NoError(t, err)

	var usernames []string
	for _, user := range append(first.Items, second.Items...) {
		usernames = append(usernames, user.Username)
	}
	assert.Equal(t, []string{"adam", "mia", "zoe"}, usernames)
}

func TestUserUniqueness(t *testing.T) {
	store := memory.NewStore()
	ctx := context.TODO()
	alice := createUser(t, store, "alice")

	var conflict *exceptions.ConflictError
	_, err := store.Users().Create(ctx, data.UserInputDTO{Email: "alice@example.com", Username: "other", FirstName: "A", LastName: "B"})
	assert.ErrorAs(t, err, &conflict)
	_, err = store.Users().Create(ctx, data.UserInputDTO{Email: "other@example.com", Username: "alice", FirstName: "A", LastName: "B"})
	assert.ErrorAs(t, err, &conflict)

	found, err := store.Users().GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, alice, found)
}

func TestRecipeDeleteCascades(t *testing.T) {
	store := memory.NewStore()
	ctx := context.TODO()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	recipe := createRecipe(t, store, alice, "soup")
	kept := createRecipe(t, store, alice, "salad")

	for _, id := range []string{recipe.Id(), kept.Id()} {
		_, err := store.Relations().Create(ctx, data.FAVORITE, bob.Id(), id)
		require.NoError(t, err)
		_, err = store.Relations().Create(ctx, data.SHOPPING_CART, bob.Id(), id)
		require.NoError(t, err)
	}

	require.NoError(t, store.Recipes().Delete(ctx, recipe.Id()))

	for _, kind := range []data.RelationKind{data.FAVORITE, data.SHOPPING_CART} {
		relations, err := store.Relations().ListAll(ctx, kind, bob.Id())
		require.NoError(t, err)
		require.Len(t, relations, 1)
		assert.Equal(t, kept.Id(), relations[0].TargetId)
	}

	var notFound *exceptions.NotFoundError
	assert.ErrorAs(t, store.Recipes().Delete(ctx, recipe.Id()), &notFound)
}

func TestUserDeleteCascades(t *testing.T) {
	store := memory.NewStore()
	ctx := context.TODO()
	alice := createUser(t, store, "alice")
	bob := createUser(t, store, "bob")
	aliceRecipe := createRecipe(t, store, alice, "soup")
	bobRecipe := createRecipe(t, store, bob, "salad")

	_, err := store.Relations().Create(ctx, data.SUBSCRIPTION, bob.Id(), alice.Id())
	require.NoError(t, err)
	_, err = store.Relations().Create(ctx, data.SUBSCRIPTION, alice.Id(), bob.Id())
	require.NoError(t, err)
	_, err = store.Relations().Create(ctx, data.FAVORITE, bob.Id(), aliceRecipe.Id())
	require.NoError(t, err)
	_, err = store.Relations().Create(ctx, data.SHOPPING_CART, alice.Id(), bobRecipe.Id())
	require.NoError(t, err)

	require.NoError(t, store.Users().Delete(ctx, alice.Id()))

	var notFound *exceptions.NotFoundError
	_, err = store.Recipes().Get(ctx, aliceRecipe.Id())
	assert.ErrorAs(t, err, &notFound)
	_, err = store.Recipes().Get(ctx, bobRecipe.Id())
	assert.NoError(t, err)

	subscriptions, err := store.Relations().ListAll(ctx, data.SUBSCRIPTION, bob.Id())
	require.NoError(t, err)
	assert.Empty(t, subscriptions)
	favorites, err := store.Relations().ListAll(ctx, data.FAVORITE, bob.Id())
	require.NoError(t, err)
	assert.Empty(t, favorites)
	cart, err := store.Relations().ListAll(ctx, data.SHOPPING_CART, alice.Id())
	require.NoError(t, err)
	assert.Empty(t, cart)

	recreated, err := store.Users().Create(ctx, data.UserInputDTO{Email: "alice@example.com", Username: "alice", FirstName: "A", LastName: "B"})
	require.NoError(t, err, "email and username are released")
	assert.NotEqual(t, alice.Id(), recreated.Id())
}

func TestPagination(t *testing.T) {
	store := memory.NewStore()
	ctx := context.TODO()
	alice := createUser(t, store, "alice")
	names := []string{"one", "two", "three", "four", "five"}
	for _, name := range names {
		createRecipe(t, store, alice, name)
	}

	seen := []string{}
	params := data.QueryParams{Limit: 2}
	pages := 0
	for {
		results, err := store.Recipes().ListByAuthor(ctx, alice.Id(), params)
		require.NoError(t, err)
		pages++
		for _, recipe := range results.Items {
			seen = append(seen, recipe.Name)
		}
		if results.NextToken == nil {
			break
		}
		params.NextToken = results.NextToken
	}
	assert.Equal(t, 3, pages)
	assert.Equal(t, names, seen)

	count, err := store.Recipes().CountByAuthor(ctx, alice.Id())
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	bad := "nope"
	_, err = store.Recipes().List(ctx, data.QueryParams{NextToken: &bad})
	var invalid *exceptions.InvalidInputError
	assert.ErrorAs(t, err, &invalid)
}

func TestIngredientSearch(t *testing.T) {
	store := memory.NewStore()
	ctx := context.TODO()
	count, err := store.Ingredients().Import(ctx, []data.IngredientInputDTO{
		{Name: "Sugar", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "g"},
		{Name: "Flour", MeasurementUnit: "g"},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	_, err = store.Ingredients().Import(ctx, []data.IngredientInputDTO{{Name: "Sugar", MeasurementUnit: "kg"}})
	require.NoError(t, err)

	matches, err := store.Ingredients().Search(ctx, "S")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "salt", matches[0].Name)
	assert.Equal(t, "Sugar", matches[1].Name)
	assert.Equal(t, "kg", matches[1].MeasurementUnit)

	all, err := store.Ingredients().Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
