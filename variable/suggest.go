package variable

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultSuggestLimit is the number of suggestions returned by default.
const DefaultSuggestLimit = 10

// Suggestion is one ranked autocomplete candidate.
type Suggestion struct {
	Name        string    `json:"name"                 yaml:"name"`
	Description string    `json:"description"          yaml:"description"`
	Example     string    `json:"example,omitempty"    yaml:"example,omitempty"`
	Namespace   Namespace `json:"namespace"            yaml:"namespace"`
	Type        Type      `json:"type"                 yaml:"type"`
	Confidence  float64   `json:"confidence"           yaml:"confidence"`
	Frequency   float64   `json:"frequency"            yaml:"frequency"`
	Score       float64   `json:"score"                yaml:"score"`
	Highlights  []int     `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

type suggestConfig struct {
	limit int
	rc    *Context
}

// SuggestOption configures [Resolver.Suggest].
type SuggestOption func(*suggestConfig)

// WithLimit caps the number of suggestions. Non-positive values select
// [DefaultSuggestLimit].
func WithLimit(n int) SuggestOption {
	return func(c *suggestConfig) {
		if n > 0 {
			c.limit = n
		} else {
			c.limit = DefaultSuggestLimit
		}
	}
}

// WithContext supplies the runtime context whose UserID selects the custom
// namespace.
func WithContext(rc Context) SuggestOption {
	return func(c *suggestConfig) { c.rc = &rc }
}

// Suggest returns the variables matching query, best first.
//
// Candidates are drawn from every registry namespace and, when a context with
// a UserID is supplied, from the user's custom variables. A candidate matches
// when its name or description contains query, ignoring case. Failure to load
// custom variables is logged and the custom namespace skipped.
func (r *Resolver) Suggest(
	ctx context.Context,
	query string,
	opts ...SuggestOption,
) []Suggestion {
	cfg := suggestConfig{limit: DefaultSuggestLimit}

	for _, opt := range opts {
		opt(&cfg)
	}

	q := strings.ToLower(strings.TrimSpace(query))

	var out []Suggestion

	add := func(s Suggestion) {
		name := strings.ToLower(s.Name)
		if q != "" && !strings.Contains(name, q) &&
			!strings.Contains(strings.ToLower(s.Description), q) {
			return
		}

		s.Confidence = Confidence(name, q)
		s.Score = s.Confidence * s.Frequency
		out = append(out, s)
	}

	for ns, e := range r.registry.All() {
		add(Suggestion{
			Name:        e.Name,
			Description: e.Description,
			Example:     e.Example,
			Namespace:   ns,
			Type:        e.Type,
			Frequency:   e.Frequency,
		})
	}

	for _, cv := range r.customVariables(ctx, cfg.rc) {
		add(Suggestion{
			Name:        cv.Name,
			Description: cv.Description,
			Example:     cv.Example,
			Namespace:   NamespaceCustom,
			Type:        cv.Type,
			Frequency:   CustomFrequency,
		})
	}

	slices.SortStableFunc(out, func(a, b Suggestion) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}

		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return cmp.Compare(a.Namespace, b.Namespace)
	})

	if len(out) > cfg.limit {
		out = out[:cfg.limit]
	}

	highlight(q, out)

	r.logger.TraceContext(ctx, "suggest",
		slog.String("query", query),
		slog.Int("results", len(out)))

	return out
}

func (r *Resolver) customVariables(ctx context.Context, rc *Context) []CustomVariable {
	if r.custom == nil || rc == nil || rc.UserID == "" {
		return nil
	}

	vars, err := r.custom.CustomVariables(ctx, rc.UserID)
	if err != nil {
		r.logger.WarnContext(ctx, "custom variables unavailable",
			slog.String("user", rc.UserID),
			slog.Any("error", ErrCustomSource.Wrap(err)))

		return nil
	}

	return vars
}

// highlight records the fuzzy-matched rune indexes of each name.
func highlight(q string, out []Suggestion) {
	if q == "" || len(out) == 0 {
		return
	}

	names := make([]string, len(out))
	for i, s := range out {
		names[i] = s.Name
	}

	for _, m := range fuzzy.Find(q, names) {
		out[m.Index].Highlights = m.MatchedIndexes
	}
}

// Confidence scores how well name matches query: 1.0 for an exact match, 0.9
// for a prefix, 0.7 for a substring, otherwise the shared-token ratio scaled
// by 0.6. Both arguments are compared case-insensitively. An empty query
// matches everything with full confidence, so ranking falls to frequency.
func Confidence(name, query string) float64 {
	name, query = strings.ToLower(name), strings.ToLower(query)

	switch {
	case query == "", name == query:
		return 1.0
	case strings.HasPrefix(name, query):
		return 0.9
	case strings.Contains(name, query):
		return 0.7
	}

	nt, qt := tokens(name), tokens(query)
	if len(nt) == 0 || len(qt) == 0 {
		return 0
	}

	shared := 0

	for t := range qt {
		if _, ok := nt[t]; ok {
			shared++
		}
	}

	return float64(shared) / float64(max(len(qt), len(nt))) * 0.6
}

func tokens(s string) map[string]struct{} {
	set := make(map[string]struct{})

	for _, t := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '.' || r == '-' || r == ' '
	}) {
		set[t] = struct{}{}
	}

	return set
}
