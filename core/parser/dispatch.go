package parser

import (
	"fmt"
	"log/slog"
)

// Dispatcher selects the first applicable dialect parser in priority order:
// AG-Grid, MUI DataGrid, structured, simple. The simple parser always
// matches, so dispatch is total.
type Dispatcher struct {
	parsers []RequestParser
	log     *slog.Logger
}

// NewDispatcher builds the standard parser chain.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		parsers: []RequestParser{
			NewAGGridParser(log),
			NewMUIParser(log),
			NewStructuredParser(log),
			NewSimpleParser(log),
		},
		log: log,
	}
}

// Parsers exposes the chain in priority order.
func (d *Dispatcher) Parsers() []RequestParser {
	return d.parsers
}

// Parse normalizes raw request parameters with the first parser whose
// CanHandle reports true, recording the chosen dialect in Meta.
func (d *Dispatcher) Parse(raw RawParams) *ParsedRequest {
	for _, p := range d.parsers {
		if !p.CanHandle(raw) {
			continue
		}
		parsed := p.Parse(raw)
		parsed.Meta = Meta{
			DetectedFormat: p.FormatName(),
			Parser:         fmt.Sprintf("%T", p),
			ParamCount:     len(raw),
		}
		return parsed
	}

	// unreachable while the simple parser terminates the chain
	parsed := newParsedRequest()
	parsed.Meta = Meta{DetectedFormat: "simple", ParamCount: len(raw)}
	return parsed
}
