package recipes

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"golang.org/x/exp/maps"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/relations"
	recipeService "philcali.me/foodgram/internal/recipes"
	"philcali.me/foodgram/internal/routes"
	"philcali.me/foodgram/internal/routes/users"
	"philcali.me/foodgram/internal/routes/util"
	"philcali.me/foodgram/internal/shopping"
)

type RecipeService struct {
	recipes   *recipeService.Service
	relations *relations.Service
	shopping  *shopping.Service
	users     data.UserRepository
	presenter *users.Presenter
	publicURL string
}

func NewRoute(recipes *recipeService.Service, relationService *relations.Service, shoppingService *shopping.Service, userData data.UserRepository, publicURL string) routes.Service {
	return &RecipeService{
		recipes:   recipes,
		relations: relationService,
		shopping:  shoppingService,
		users:     userData,
		presenter: &users.Presenter{
			Relations: relationService,
			Recipes:   recipes.Recipes,
		},
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

func (rs *RecipeService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"GET:/recipes":                        util.ViewerRoute(rs.users, rs.ListRecipes),
		"POST:/recipes":                       util.AuthorizedRoute(rs.users, rs.CreateRecipe),
		"GET:/recipes/:id":                    util.ViewerRoute(rs.users, rs.GetRecipe),
		"PUT:/recipes/:id":                    util.AuthorizedRoute(rs.users, rs.UpdateRecipe),
		"PATCH:/recipes/:id":                  util.AuthorizedRoute(rs.users, rs.UpdateRecipe),
		"DELETE:/recipes/:id":                 util.AuthorizedRoute(rs.users, rs.DeleteRecipe),
		"POST:/recipes/:id/favorite":          util.AuthorizedRoute(rs.users, rs.relationAdder(data.FAVORITE)),
		"DELETE:/recipes/:id/favorite":        util.AuthorizedRoute(rs.users, rs.relationRemover(data.FAVORITE)),
		"POST:/recipes/:id/shopping_cart":     util.AuthorizedRoute(rs.users, rs.relationAdder(data.SHOPPING_CART)),
		"DELETE:/recipes/:id/shopping_cart":   util.AuthorizedRoute(rs.users, rs.relationRemover(data.SHOPPING_CART)),
		"GET:/recipes/download_shopping_cart": util.AuthorizedRoute(rs.users, rs.DownloadShoppingCart),
		"GET:/recipes/:id/get-link":           rs.GetLink,
		"GET:/s/:id":                          rs.FollowLink,
	}
}

// present renders the recipes for the viewer, resolving authors and the
// viewer's favorite and cart flags in batches.
func (rs *RecipeService) present(ctx context.Context, viewer *data.UserDTO, recipes []data.RecipeDTO) ([]Recipe, error) {
	authorIds := make(map[string]bool, len(recipes))
	for _, recipe := range recipes {
		authorIds[recipe.Author] = true
	}
	found, err := rs.users.BatchGet(ctx, maps.Keys(authorIds))
	if err != nil {
		return nil, err
	}
	authors, err := rs.presenter.Users(ctx, viewer, maps.Values(found))
	if err != nil {
		return nil, err
	}
	authorViews := make(map[string]users.User, len(authors))
	for _, author := range authors {
		authorViews[author.Id] = author
	}
	recipeIds := util.MapOnList(recipes, data.RecipeDTO.Id)
	favorited, err := rs.relations.Flags(ctx, viewer, data.FAVORITE, recipeIds)
	if err != nil {
		return nil, err
	}
	inCart, err := rs.relations.Flags(ctx, viewer, data.SHOPPING_CART, recipeIds)
	if err != nil {
		return nil, err
	}
	return util.MapOnList(recipes, func(recipe data.RecipeDTO) Recipe {
		author, ok := authorViews[recipe.Author]
		if !ok {
			author = users.User{Id: recipe.Author}
		}
		return NewRecipe(recipe, author, favorited[recipe.Id()], inCart[recipe.Id()])
	}), nil
}

func (rs *RecipeService) presentOne(ctx context.Context, recipe data.RecipeDTO) (Recipe, error) {
	views, err := rs.present(ctx, util.CurrentUser(ctx), []data.RecipeDTO{recipe})
	if err != nil {
		return Recipe{}, err
	}
	return views[0], nil
}

// related pages through the recipes the viewer holds a relation to, in the
// order of the relation page.
func (rs *RecipeService) related(ctx context.Context, viewer data.UserDTO, kind data.RelationKind, params data.QueryParams) (data.QueryResults[data.RecipeDTO], error) {
	page, err := rs.relations.Relations.List(ctx, kind, viewer.Id(), params)
	if err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	ids := util.MapOnList(page.Items, func(r data.RelationDTO) string {
		return r.TargetId
	})
	found, err := rs.recipes.Recipes.BatchGet(ctx, ids)
	if err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	results := data.QueryResults[data.RecipeDTO]{
		Items:     make([]data.RecipeDTO, 0, len(ids)),
		NextToken: page.NextToken,
	}
	for _, id := range ids {
		if recipe, ok := found[id]; ok {
			results.Items = append(results.Items, recipe)
		}
	}
	return results, nil
}

func (rs *RecipeService) query(ctx context.Context, event events.APIGatewayV2HTTPRequest) (data.QueryResults[data.RecipeDTO], error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	favorited, err := util.QueryFlag(event, "is_favorited")
	if err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	inCart, err := util.QueryFlag(event, "is_in_shopping_cart")
	if err != nil {
		return data.QueryResults[data.RecipeDTO]{}, err
	}
	author := event.QueryStringParameters["author"]
	viewer := util.CurrentUser(ctx)
	if (favorited || inCart) && viewer == nil {
		return data.QueryResults[data.RecipeDTO]{Items: []data.RecipeDTO{}}, nil
	}
	var results data.QueryResults[data.RecipeDTO]
	switch {
	case favorited:
		results, err = rs.related(ctx, *viewer, data.FAVORITE, params)
	case inCart:
		results, err = rs.related(ctx, *viewer, data.SHOPPING_CART, params)
	case author != "":
		return rs.recipes.Recipes.ListByAuthor(ctx, author, params)
	default:
		return rs.recipes.Recipes.List(ctx, params)
	}
	if err != nil {
		return results, err
	}
	keepCart := map[string]bool{}
	if favorited && inCart {
		keepCart, err = rs.relations.Flags(ctx, viewer, data.SHOPPING_CART, util.MapOnList(results.Items, data.RecipeDTO.Id))
		if err != nil {
			return results, err
		}
	}
	filtered := results.Items[:0]
	for _, recipe := range results.Items {
		if author != "" && recipe.Author != author {
			continue
		}
		if favorited && inCart && !keepCart[recipe.Id()] {
			continue
		}
		filtered = append(filtered, recipe)
	}
	results.Items = filtered
	return results, nil
}

// ListRecipes filters by author, or by the viewer's favorites or cart. The
// relation filters page through the viewer's relations, so a filtered page
// may hold fewer items than the limit.
func (rs *RecipeService) ListRecipes(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	results, err := rs.query(ctx, event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	views, err := rs.present(ctx, util.CurrentUser(ctx), results.Items)
	return util.SerializeResponseOK(util.Identity[data.QueryResults[Recipe]], data.QueryResults[Recipe]{
		Items:     views,
		NextToken: results.NextToken,
	}, err)
}

func (rs *RecipeService) GetRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	recipe, err := rs.recipes.Recipes.Get(ctx, util.RequestParam(ctx, "id"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	view, err := rs.presentOne(ctx, recipe)
	return util.SerializeResponseOK(util.Identity[Recipe], view, err)
}

func (rs *RecipeService) CreateRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := data.RecipeInputDTO{}
	if err := util.ParseBody(event, &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := rs.recipes.Create(ctx, *util.CurrentUser(ctx), input)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	view, err := rs.presentOne(ctx, created)
	return util.SerializeResponseCreated(util.Identity[Recipe], view, err)
}

// UpdateRecipe replaces the whole recipe for PUT and PATCH alike, so the
// ingredient list is always required.
func (rs *RecipeService) UpdateRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := data.RecipeInputDTO{}
	if err := util.ParseBody(event, &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	updated, err := rs.recipes.Update(ctx, *util.CurrentUser(ctx), util.RequestParam(ctx, "id"), input)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	view, err := rs.presentOne(ctx, updated)
	return util.SerializeResponseOK(util.Identity[Recipe], view, err)
}

func (rs *RecipeService) DeleteRecipe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := rs.recipes.Delete(ctx, *util.CurrentUser(ctx), util.RequestParam(ctx, "id"))
	return util.SerializeResponseNoContent(err)
}

func (rs *RecipeService) relationAdder(kind data.RelationKind) routes.Route {
	return func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
		target, err := rs.relations.Add(ctx, *util.CurrentUser(ctx), util.RequestParam(ctx, "id"), kind)
		if err != nil {
			return events.APIGatewayV2HTTPResponse{}, err
		}
		return util.SerializeResponseCreated(users.NewShortRecipe, *target.Recipe, nil)
	}
}

func (rs *RecipeService) relationRemover(kind data.RelationKind) routes.Route {
	return func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
		err := rs.relations.Remove(ctx, *util.CurrentUser(ctx), util.RequestParam(ctx, "id"), kind)
		return util.SerializeResponseNoContent(err)
	}
}

func (rs *RecipeService) DownloadShoppingCart(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	report, err := rs.shopping.Report(ctx, *util.CurrentUser(ctx))
	return util.SerializeAttachment(report.String(), shopping.FILENAME, err)
}

func (rs *RecipeService) GetLink(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	recipe, err := rs.recipes.Recipes.Get(ctx, util.RequestParam(ctx, "id"))
	return util.SerializeResponseOK(func(recipe data.RecipeDTO) ShortLink {
		return ShortLink{ShortLink: fmt.Sprintf("%s/s/%s", rs.publicURL, recipe.Id())}
	}, recipe, err)
}

func (rs *RecipeService) FollowLink(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	recipe, err := rs.recipes.Recipes.Get(ctx, util.RequestParam(ctx, "id"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return util.Redirect(fmt.Sprintf("%s/recipes/%s/", rs.publicURL, recipe.Id()))
}
