package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/memory"
)

func TestLoad(t *testing.T) {
	inputs, err := load(strings.NewReader(`[
		{"name": "abrikosovoe varenye", "measurement_unit": "g"},
		{"name": "salt", "measurement_unit": "pinch"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []data.IngredientInputDTO{
		{Name: "abrikosovoe varenye", MeasurementUnit: "g"},
		{Name: "salt", MeasurementUnit: "pinch"},
	}, inputs)

	_, err = load(strings.NewReader(`[{"name": "salt"}]`))
	assert.ErrorContains(t, err, "ingredient 0 is invalid")

	_, err = load(strings.NewReader(`{"name": "salt"}`))
	assert.ErrorContains(t, err, "failed to parse ingredients")
}

func TestRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ingredients.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"name": "salt", "measurement_unit": "g"},
		{"name": "salt", "measurement_unit": "g"},
		{"name": "sugar", "measurement_unit": "g"}
	]`), 0o600))
	store := memory.NewStore()

	count, err := run(context.TODO(), store.Ingredients(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	found, err := store.Ingredients().Search(context.TODO(), "s")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = run(context.TODO(), store.Ingredients(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
