// Package router implements the request-resolution pipeline: a scored route
// registry discovered from controllers and model metadata, and the
// orchestrator that matches, authorizes, parses and dispatches every
// incoming request.
package router

import (
	"strings"
)

// Wildcard is the single-segment wildcard token in registered paths.
const Wildcard = "?"

// SplitPath parses a request path into its non-empty slash-delimited
// components. "" and "/" yield the empty sequence.
func SplitPath(path string) []string {
	parts := strings.Split(path, "/")
	components := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			components = append(components, p)
		}
	}
	return components
}

// Score computes the positional similarity between a concrete client path
// and a registered path. Sequences of unequal length score 0. Each position
// i contributes w(i)*m(i) with w(i) = n-i, m = 2 for a literal match, 1 for
// the registered wildcard and 0 otherwise. Earlier positions carry more
// weight, so literal prefixes dominate trailing wildcards.
func Score(client, registered []string) int {
	n := len(client)
	if n != len(registered) {
		return 0
	}

	total := 0
	for i := 0; i < n; i++ {
		weight := n - i
		switch {
		case client[i] == registered[i]:
			total += weight * 2
		case registered[i] == Wildcard:
			total += weight
		}
	}
	return total
}

// bestMatch returns the highest-scoring route among candidates for the
// given client components, first wins on ties. A score of 0 is not a match.
func bestMatch(client []string, candidates []*Route) (*Route, int) {
	var best *Route
	bestScore := 0
	for _, route := range candidates {
		if s := Score(client, route.Components); s > bestScore {
			best, bestScore = route, s
		}
	}
	return best, bestScore
}

// scoreTrailingWildcard scores a route whose registered path is shorter
// than the client path but ends in a wildcard, letting the terminal
// wildcard absorb the extra segments. Used only by the fallback pass.
func scoreTrailingWildcard(client []string, route *Route) int {
	n := len(route.Components)
	if n == 0 || len(client) <= n {
		return 0
	}
	if route.Components[n-1] != Wildcard {
		return 0
	}
	return Score(client[:n], route.Components)
}
