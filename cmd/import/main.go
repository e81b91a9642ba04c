package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"philcali.me/foodgram/internal/config"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/dynamodb/ingredients"
	"philcali.me/foodgram/internal/logging"
	"philcali.me/foodgram/internal/validation"
)

// load reads a JSON array of {name, measurement_unit} objects, rejecting the
// whole file when any entry is invalid.
func load(r io.Reader) ([]data.IngredientInputDTO, error) {
	var inputs []data.IngredientInputDTO
	if err := json.NewDecoder(r).Decode(&inputs); err != nil {
		return nil, fmt.Errorf("failed to parse ingredients: %w", err)
	}
	for i := range inputs {
		if err := validation.ValidateStruct(&inputs[i]); err != nil {
			return nil, fmt.Errorf("ingredient %d is invalid: %w", i, err)
		}
	}
	return inputs, nil
}

func run(ctx context.Context, repo data.IngredientRepository, path string) (int, error) {
	fd, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer fd.Close()
	inputs, err := load(fd)
	if err != nil {
		return 0, err
	}
	return repo.Import(ctx, inputs)
}

func main() {
	path := flag.String("file", "ingredients.json", "JSON file of ingredients to import")
	flag.Parse()
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	ctx := context.Background()
	awsCfg, err := cfg.AWS(ctx)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load AWS config")
	}
	repo := ingredients.NewIngredientService(cfg.TableName, cfg.IndexName, dynamodb.NewFromConfig(awsCfg))
	count, err := run(ctx, repo, *path)
	if err != nil {
		logging.Fatal().Err(err).Str("file", *path).Msg("Failed to import ingredients")
	}
	logging.Info().Int("count", count).Str("table", cfg.TableName).Msg("Imported ingredients")
}
