package routes

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"philcali.me/foodgram/internal/exceptions"
	"philcali.me/foodgram/internal/logging"
	"philcali.me/foodgram/internal/routes/filters"
)

type Route func(event events.APIGatewayV2HTTPRequest, ctx context.Context) (events.APIGatewayV2HTTPResponse, error)

type Service interface {
	GetRoutes() map[string]Route
}

type contextKey string

const paramsKey contextKey = "Params"

// RequestParams returns the path parameters captured for the matched route.
func RequestParams(ctx context.Context) map[string]string {
	if params, ok := ctx.Value(paramsKey).(map[string]string); ok {
		return params
	}
	return map[string]string{}
}

var paramPattern = regexp.MustCompile(":[^/]+")

type CachedMatcher struct {
	Matcher    *regexp.Regexp
	ParamNames []string
	Mutex      *sync.Mutex
}

type CachedRoute struct {
	Method  string
	Path    string
	Route   Route
	Matcher *CachedMatcher
}

func (cr *CachedMatcher) Refresh(path string) *regexp.Regexp {
	cr.Mutex.Lock()
	defer cr.Mutex.Unlock()
	if cr.Matcher == nil {
		regexPath := paramPattern.ReplaceAllStringFunc(path, func(found string) string {
			cr.ParamNames = append(cr.ParamNames, found[1:])
			return "([^/]+)"
		})
		cr.Matcher = regexp.MustCompile("^" + regexPath + "/?$")
	}
	return cr.Matcher
}

func (cr *CachedRoute) MatchEvent(event events.APIGatewayV2HTTPRequest) (map[string]string, bool) {
	if event.RequestContext.HTTP.Method != cr.Method {
		return nil, false
	}
	matcher := cr.Matcher.Refresh(cr.Path)
	params := make(map[string]string, len(cr.Matcher.ParamNames))
	values := matcher.FindStringSubmatch(event.RawPath)
	if values == nil {
		return nil, false
	}
	for i, p := range cr.Matcher.ParamNames {
		params[p] = values[i+1]
	}
	return params, true
}

func (cr *CachedRoute) paramCount() int {
	return len(paramPattern.FindAllString(cr.Path, -1))
}

type Router struct {
	Filters []filters.RequestFilter
	Routes  []CachedRoute
}

// NewRouter collects the routes of every service. Routes with fewer path
// parameters are tried first, so /users/me wins over /users/:id.
func NewRouter(services ...Service) *Router {
	var routes []CachedRoute
	for _, service := range services {
		for composite, route := range service.GetRoutes() {
			parts := strings.SplitN(composite, ":", 2)
			routes = append(routes, CachedRoute{
				Method: parts[0],
				Path:   parts[1],
				Route:  route,
				Matcher: &CachedMatcher{
					Mutex: &sync.Mutex{},
				},
			})
		}
	}
	sort.SliceStable(routes, func(i, j int) bool {
		left, right := routes[i].paramCount(), routes[j].paramCount()
		if left != right {
			return left < right
		}
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return &Router{
		Routes: routes,
		Filters: []filters.RequestFilter{
			filters.DefaultCorsFilter(),
			filters.DefaultAuthenticationFilter(),
		},
	}
}

type errorBody struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func translateError(err error) events.APIGatewayV2HTTPResponse {
	statusCode := exceptions.StatusCode(err)
	payload := errorBody{Message: err.Error()}
	var validation *exceptions.ValidationError
	if errors.As(err, &validation) {
		payload.Message = "Validation failed"
		payload.Fields = validation.Fields
	}
	if statusCode >= 500 {
		payload.Message = "Unexpected internal error"
	}
	body, _ := json.Marshal(payload)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: statusCode,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type":   "application/json",
			"Content-Length": strconv.Itoa(len(body)),
		},
	}
}

func requestId(event events.APIGatewayV2HTTPRequest) string {
	if event.RequestContext.RequestID != "" {
		return event.RequestContext.RequestID
	}
	return uuid.NewString()
}

func (r *Router) Invoke(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	start := time.Now()
	ctx = logging.ContextWithRequestId(ctx, requestId(event))
	response := r.dispatch(event, ctx)
	level := zerolog.InfoLevel
	if response.StatusCode >= 500 {
		level = zerolog.ErrorLevel
	}
	logging.Ctx(ctx).WithLevel(level).
		Str("method", event.RequestContext.HTTP.Method).
		Str("path", event.RawPath).
		Int("status", response.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Handled request")
	return response
}

func (r *Router) dispatch(event events.APIGatewayV2HTTPRequest, ctx context.Context) events.APIGatewayV2HTTPResponse {
	filterContext := filters.DefaultFilterContext(event, ctx)
	for _, filter := range r.Filters {
		updatedContext, broken := filter.Filter(filterContext)
		if broken {
			return *updatedContext.Response
		}
		filterContext = updatedContext
	}
	for _, route := range r.Routes {
		if params, ok := route.MatchEvent(*filterContext.Request); ok {
			resp, err := route.Route(event, context.WithValue(*filterContext.Context, paramsKey, params))
			if err != nil {
				if exceptions.StatusCode(err) >= 500 {
					logging.Ctx(ctx).Error().Err(err).Msg("Route failed")
				}
				return translateError(err)
			}
			return resp
		}
	}
	return translateError(exceptions.NotFound("route", event.RawPath))
}
