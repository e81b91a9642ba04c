package ingredients

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/routes"
	"philcali.me/foodgram/internal/routes/util"
)

type Ingredient struct {
	Id              string `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

func NewIngredient(ingredient data.IngredientDTO) Ingredient {
	return Ingredient{
		Id:              ingredient.SK,
		Name:            ingredient.Name,
		MeasurementUnit: ingredient.MeasurementUnit,
	}
}

type IngredientService struct {
	data data.IngredientRepository
}

func NewRoute(data data.IngredientRepository) routes.Service {
	return &IngredientService{
		data: data,
	}
}

func (is *IngredientService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/ingredients":     is.ListIngredients,
		"GET:/ingredients/:id": is.GetIngredient,
	}
}

// ListIngredients is unpaginated; name narrows it to a case-insensitive
// prefix.
func (is *IngredientService) ListIngredients(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	items, err := is.data.Search(ctx, event.QueryStringParameters["name"])
	return util.SerializeResponseOK(func(items []data.IngredientDTO) []Ingredient {
		return util.MapOnList(items, NewIngredient)
	}, items, err)
}

func (is *IngredientService) GetIngredient(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	item, err := is.data.Get(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(NewIngredient, item, err)
}
