package router

import (
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/gridkit-dev/pb-gridkit/core/formatter"
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
	"github.com/gridkit-dev/pb-gridkit/core/rbac"
	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/gridkit-dev/pb-gridkit/core/validator"
	"github.com/pocketbase/pocketbase/core"
	"github.com/spf13/cast"
)

// Router orchestrates the request-resolution pipeline: route lookup,
// parameter merging, authorization, dialect parsing, model-aware
// validation, handler dispatch and response formatting.
type Router struct {
	registry   atomic.Pointer[Registry]
	dispatcher *parser.Dispatcher
	filters    *validator.FilterCriteria
	search     *validator.SearchEngine
	gate       *rbac.Gate
	models     metadata.Provider
	log        *slog.Logger
	prefix     string
}

// New creates a router around an already-built registry. The prefix is the
// mount point stripped from incoming paths before matching.
func New(reg *Registry, gate *rbac.Gate, models metadata.Provider, prefix string, log *slog.Logger) *Router {
	rt := &Router{
		dispatcher: parser.NewDispatcher(log),
		filters:    validator.NewFilterCriteria(log),
		search:     validator.NewSearchEngine(log),
		gate:       gate,
		models:     models,
		log:        log,
		prefix:     strings.TrimSuffix(prefix, "/"),
	}
	rt.registry.Store(reg)
	return rt
}

// Registry returns the active route registry.
func (rt *Router) Registry() *Registry {
	return rt.registry.Load()
}

// SwapRegistry atomically replaces the registry, for hot reload.
func (rt *Router) SwapRegistry(reg *Registry) {
	rt.registry.Store(reg)
}

// Dispatcher exposes the parser chain for handlers and the catalog.
func (rt *Router) Dispatcher() *parser.Dispatcher {
	return rt.dispatcher
}

// Handle runs the pipeline for one transport event. Errors bubble up to the
// bound error middleware, which serializes the uniform envelope.
func (rt *Router) Handle(e *core.RequestEvent) error {
	method := e.Request.Method
	path := rt.stripPrefix(e.Request.URL.Path)

	route := rt.Registry().FindBest(method, path)
	if route == nil {
		rt.logRequest(e, method, path, nil, "", "not_found")
		return server.NewRouteNotFoundError("find_route", "no route matches "+method+" "+path)
	}
	if route.Handler == nil {
		rt.logRequest(e, method, path, route, "", "handler_missing")
		return server.NewInternalError("resolve_handler", "route has no bound handler", nil)
	}

	params := rt.mergeParams(e, route, path)

	if !route.Public() {
		component := rbac.ComponentForRoute(route.Model, route.ControllerName, route.Components)
		action := rbac.ActionForRoute(route.Method, route.Components, route.Action)
		if err := rt.gate.Authorize(e.Request.Context(), component, action, e.Auth); err != nil {
			rt.logRequest(e, method, path, route, "", "denied")
			return err
		}
	}

	for _, name := range route.ParameterNames {
		if name != "" && params[name] == "" {
			rt.logRequest(e, method, path, route, "", "missing_parameter")
			return server.NewMissingParameterError("validate_parameters", name)
		}
	}

	parsed := rt.dispatcher.Parse(params)
	e.Set(monitoring.DialectEventKey, parsed.Meta.DetectedFormat)

	req := &Request{
		Event:  e,
		Method: method,
		Path:   path,
		Params: params,
		Parsed: parsed,
		Route:  route,
		Helpers: &Helpers{
			Dispatcher: rt.dispatcher,
			Filters:    rt.filters,
			Search:     rt.search,
		},
	}

	if route.Model != "" {
		model, err := rt.models.Model(route.Model)
		if err != nil {
			rt.logRequest(e, method, path, route, parsed.Meta.DetectedFormat, "model_missing")
			return server.NewInternalError("resolve_model", "cannot load metadata for model "+route.Model, err)
		}
		req.Model = model
		parsed.Filters = rt.filters.ValidateForModel(parsed.Filters, model)
		parsed.Search = rt.search.ValidateForModel(parsed.Search, model)
	}

	result, err := route.Handler(req)

	if ctxErr := e.Request.Context().Err(); ctxErr != nil {
		rt.logRequest(e, method, path, route, parsed.Meta.DetectedFormat, "canceled")
		return server.NewCanceledError("invoke_handler", ctxErr)
	}
	if err != nil {
		rt.logRequest(e, method, path, route, parsed.Meta.DetectedFormat, "handler_error")
		return rt.wrapHandlerError(err, route, e)
	}

	dialect := formatter.DetectDialect(params, parsed.Meta)
	res := formatter.AsResult(result)
	payload := formatter.Format(dialect, res, parsed, e.Request.URL.Path)

	rt.logRequest(e, method, path, route, parsed.Meta.DetectedFormat, "ok")
	return e.JSON(res.StatusCode(), payload)
}

func (rt *Router) stripPrefix(path string) string {
	if rt.prefix != "" && strings.HasPrefix(path, rt.prefix) {
		path = path[len(rt.prefix):]
	}
	if path == "" {
		path = "/"
	}
	return path
}

// mergeParams builds the flattened parameter map. Precedence, lowest to
// highest: extracted path parameters, scalar JSON body values, query
// parameters. Query winning on collision is a pinned decision.
func (rt *Router) mergeParams(e *core.RequestEvent, route *Route, path string) parser.RawParams {
	params := make(parser.RawParams)

	client := SplitPath(path)
	for i, name := range route.ParameterNames {
		if name == "" || i >= len(client) {
			continue
		}
		params[name] = client[i]
	}

	if body := rt.bodyParams(e); body != nil {
		for key, value := range body {
			params[key] = value
		}
	}

	for key, values := range e.Request.URL.Query() {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	return params
}

// bodyParams flattens the scalar values of a JSON request body. Nested
// objects and arrays stay with the handler, which re-reads the body itself
// if it needs them.
func (rt *Router) bodyParams(e *core.RequestEvent) map[string]string {
	switch e.Request.Method {
	case "POST", "PUT", "PATCH":
	default:
		return nil
	}
	if e.Request.Body == nil {
		return nil
	}
	contentType := e.Request.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return nil
	}

	var decoded map[string]any
	if err := json.NewDecoder(e.Request.Body).Decode(&decoded); err != nil {
		return nil
	}

	flat := make(map[string]string, len(decoded))
	for key, value := range decoded {
		switch value.(type) {
		case map[string]any, []any, nil:
			continue
		}
		flat[key] = cast.ToString(value)
	}
	return flat
}

// wrapHandlerError attaches route context to whatever the handler surfaced.
func (rt *Router) wrapHandlerError(err error, route *Route, e *core.RequestEvent) error {
	var srvErr *server.ServerError
	if errors.As(err, &srvErr) {
		return err
	}
	wrapped := server.NewHandlerError("invoke_handler", err.Error(), 0, err)
	wrapped.WithContext("route", route.Method+" "+route.Path)
	wrapped.WithContext("handler", route.HandlerID())
	return wrapped
}

func (rt *Router) logRequest(e *core.RequestEvent, method, path string, route *Route, format, outcome string) {
	if rt.log == nil {
		return
	}
	userID := ""
	if e.Auth != nil {
		userID = e.Auth.Id
	}
	handler := ""
	if route != nil {
		handler = route.HandlerID()
	}
	rt.log.Info("pipeline request",
		"method", method,
		"path", path,
		"route", handler,
		"format", format,
		"user_id", userID,
		"outcome", outcome,
	)
}
