package users

import (
	"context"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"philcali.me/foodgram/internal/data"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/relations"
	"philcali.me/foodgram/internal/routes"
	"philcali.me/foodgram/internal/routes/util"
	"philcali.me/foodgram/internal/validation"
)

type UserService struct {
	users     data.UserRepository
	relations *relations.Service
	presenter *Presenter
}

func NewRoute(users data.UserRepository, recipes data.RecipeRepository, relationService *relations.Service) routes.Service {
	return &UserService{
		users:     users,
		relations: relationService,
		presenter: &Presenter{
			Relations: relationService,
			Recipes:   recipes,
		},
	}
}

func (us *UserService) GetRoutes() map[string]routes.Route {
	return map[string]routes.Route{
		"POST:/users":                 us.CreateUser,
		"GET:/users":                  util.ViewerRoute(us.users, us.ListUsers),
		"GET:/users/me":               util.AuthorizedRoute(us.users, us.GetCurrentUser),
		"DELETE:/users/me":            util.AuthorizedRoute(us.users, us.DeleteCurrentUser),
		"GET:/users/:id":              util.ViewerRoute(us.users, us.GetUser),
		"PUT:/users/me/avatar":        util.AuthorizedRoute(us.users, us.SetAvatar),
		"DELETE:/users/me/avatar":     util.AuthorizedRoute(us.users, us.ClearAvatar),
		"GET:/users/subscriptions":    util.AuthorizedRoute(us.users, us.ListSubscriptions),
		"POST:/users/:id/subscribe":   util.AuthorizedRoute(us.users, us.Subscribe),
		"DELETE:/users/:id/subscribe": util.AuthorizedRoute(us.users, us.Unsubscribe),
	}
}

func (us *UserService) CreateUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := data.UserInputDTO{}
	if err := util.ParseBody(event, &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	if err := validation.ValidateStruct(&input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	created, err := us.users.Create(ctx, input)
	return util.SerializeResponseCreated(func(user data.UserDTO) User {
		return NewUser(user, false)
	}, created, err)
}

func (us *UserService) ListUsers(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	results, err := us.users.List(ctx, params)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	views, err := us.presenter.Users(ctx, util.CurrentUser(ctx), results.Items)
	return util.SerializeResponseOK(util.Identity[data.QueryResults[User]], data.QueryResults[User]{
		Items:     views,
		NextToken: results.NextToken,
	}, err)
}

func (us *UserService) GetCurrentUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	me := util.CurrentUser(ctx)
	view, err := us.presenter.User(ctx, me, *me)
	return util.SerializeResponseOK(util.Identity[User], view, err)
}

func (us *UserService) DeleteCurrentUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	return util.SerializeResponseNoContent(us.users.Delete(ctx, util.CurrentUser(ctx).Id()))
}

func (us *UserService) GetUser(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	user, err := us.users.Get(ctx, util.RequestParam(ctx, "id"))
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	view, err := us.presenter.User(ctx, util.CurrentUser(ctx), user)
	return util.SerializeResponseOK(util.Identity[User], view, err)
}

func (us *UserService) SetAvatar(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	input := AvatarInput{}
	if err := util.ParseBody(event, &input); err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	avatar := strings.TrimSpace(input.Avatar)
	if avatar == "" {
		return events.APIGatewayV2HTTPResponse{}, exceptions.Validation("avatar", "This field is required.")
	}
	updated, err := us.users.UpdateAvatar(ctx, util.CurrentUser(ctx).Id(), &avatar)
	return util.SerializeResponseOK(func(user data.UserDTO) Avatar {
		return Avatar{Avatar: user.Avatar}
	}, updated, err)
}

func (us *UserService) ClearAvatar(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	_, err := us.users.UpdateAvatar(ctx, util.CurrentUser(ctx).Id(), nil)
	return util.SerializeResponseNoContent(err)
}

func (us *UserService) ListSubscriptions(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	me := util.CurrentUser(ctx)
	params, err := util.QueryParams(event)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	recipesLimit, err := util.QueryInt(event, "recipes_limit", NO_RECIPES_LIMIT)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	subscriptions, err := us.relations.Relations.List(ctx, data.SUBSCRIPTION, me.Id(), params)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	authorIds := util.MapOnList(subscriptions.Items, func(r data.RelationDTO) string {
		return r.TargetId
	})
	found, err := us.users.BatchGet(ctx, authorIds)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	authors := make([]data.UserDTO, 0, len(authorIds))
	for _, authorId := range authorIds {
		if author, ok := found[authorId]; ok {
			authors = append(authors, author)
		}
	}
	views, err := us.presenter.WithRecipes(ctx, me, authors, recipesLimit)
	return util.SerializeResponseOK(util.Identity[data.QueryResults[UserWithRecipes]], data.QueryResults[UserWithRecipes]{
		Items:     views,
		NextToken: subscriptions.NextToken,
	}, err)
}

func (us *UserService) Subscribe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	me := util.CurrentUser(ctx)
	recipesLimit, err := util.QueryInt(event, "recipes_limit", NO_RECIPES_LIMIT)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	target, err := us.relations.Add(ctx, *me, util.RequestParam(ctx, "id"), data.SUBSCRIPTION)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	views, err := us.presenter.WithRecipes(ctx, me, []data.UserDTO{*target.User}, recipesLimit)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return util.SerializeResponseCreated(util.Identity[UserWithRecipes], views[0], nil)
}

func (us *UserService) Unsubscribe(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error) {
	err := us.relations.Remove(ctx, *util.CurrentUser(ctx), util.RequestParam(ctx, "id"), data.SUBSCRIPTION)
	return util.SerializeResponseNoContent(err)
}
