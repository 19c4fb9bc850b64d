package router

import (
	"context"

	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/parser"
	"github.com/gridkit-dev/pb-gridkit/core/validator"
	"github.com/pocketbase/pocketbase/core"
)

// Helpers bundles the pipeline utilities handlers may need for their own
// parsing or validation work.
type Helpers struct {
	Dispatcher *parser.Dispatcher
	Filters    *validator.FilterCriteria
	Search     *validator.SearchEngine
}

// Request is the value handed to every handler: the transport event, the
// merged parameter map, the parsed unified request and the resolved route
// and model. It is frozen once the handler is invoked.
type Request struct {
	Event   *core.RequestEvent
	Method  string
	Path    string
	Params  parser.RawParams
	Parsed  *parser.ParsedRequest
	Route   *Route
	Model   *metadata.Model
	Helpers *Helpers
}

// Context returns the request-scoped context. Handlers must thread it into
// every blocking call so cancellation propagates.
func (r *Request) Context() context.Context {
	if r.Event != nil && r.Event.Request != nil {
		return r.Event.Request.Context()
	}
	return context.Background()
}

// Param returns a merged path/query/body parameter by name.
func (r *Request) Param(name string) string {
	return r.Params[name]
}

// Auth returns the authenticated record, nil for anonymous callers.
func (r *Request) Auth() *core.Record {
	if r.Event == nil {
		return nil
	}
	return r.Event.Auth
}

// App returns the PocketBase app the request runs against.
func (r *Request) App() core.App {
	if r.Event == nil {
		return nil
	}
	return r.Event.App
}

// Flag reads a boolean request parameter (include_total and friends).
func (r *Request) Flag(name string) bool {
	switch r.Params[name] {
	case "1", "true", "yes":
		return true
	}
	return false
}
