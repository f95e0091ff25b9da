package lang

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Template is a caller-owned handle on template text and its declared
// variables. The parsed form is computed lazily and discarded whenever the
// text changes. A Template is safe for concurrent use.
type Template struct {
	mu       sync.RWMutex
	text     string
	version  int
	parsed   *ParsedTemplate
	declared []variable.Variable
	logger   log.Logger
}

// New returns a Template holding text. [WithDeclared] sets the template's
// variable declarations and [WithLogger] its logger.
func New(text string, opts ...Option) *Template {
	o := applyOptions(opts...)

	return &Template{
		text:     text,
		version:  1,
		declared: o.declared,
		logger:   o.logger,
	}
}

// Text returns the current template text.
func (t *Template) Text() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.text
}

// Version counts text changes, starting at 1.
func (t *Template) Version() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.version
}

// SetText replaces the template text. The cached parse is invalidated only
// when the text actually changes.
func (t *Template) SetText(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if text == t.text {
		return
	}

	t.text = text
	t.version++
	t.parsed = nil
}

// Declared returns a copy of the variable declarations.
func (t *Template) Declared() []variable.Variable {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return slices.Clone(t.declared)
}

// SetDeclared replaces the variable declarations.
func (t *Template) SetDeclared(vars ...variable.Variable) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.declared = slices.Clone(vars)
}

// Parsed returns the parsed form of the current text.
func (t *Template) Parsed(ctx context.Context) *ParsedTemplate {
	t.mu.RLock()
	pt := t.parsed
	t.mu.RUnlock()

	if pt != nil {
		return pt
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.parsed == nil {
		t.parsed = Parse(ctx, t.text, WithLogger(t.logger))
	}

	return t.parsed
}

// Complexity is the weighted block count of the current text.
func (t *Template) Complexity(ctx context.Context) int {
	return t.Parsed(ctx).Complexity
}

// EstimatedRenderTime is the estimated render time of the current text in
// milliseconds.
func (t *Template) EstimatedRenderTime(ctx context.Context) float64 {
	return t.Parsed(ctx).EstimatedRenderTime
}

// Validate validates the current text against the template's declarations.
func (t *Template) Validate(ctx context.Context) Report {
	t.mu.RLock()
	text, declared := t.text, t.declared
	t.mu.RUnlock()

	return Validate(ctx, text, WithDeclared(declared...), WithLogger(t.logger))
}

// Optimize optimizes the current text. The template is not modified.
func (t *Template) Optimize(ctx context.Context) Optimized {
	return Optimize(ctx, t.Text(), WithLogger(t.logger))
}

// Render renders the current text against vars.
func (t *Template) Render(ctx context.Context, vars map[string]any) string {
	return Render(t.Parsed(ctx), vars)
}

// Resolve resolves the template's declared variables with r and renders the
// result. Entries in vars override resolved values and supply any variable
// that is not declared. A declared variable with no value and no default
// keeps its [name] placeholder.
func (t *Template) Resolve(
	ctx context.Context,
	r *variable.Resolver,
	rc variable.Context,
	vars map[string]any,
) string {
	declared := t.Declared()

	merged := make(map[string]any, len(vars)+len(declared))
	maps.Copy(merged, vars)
	maps.Copy(merged, r.ResolveFound(ctx, declared, rc, vars))

	t.logger.TraceContext(ctx, "resolve template",
		slog.Int("declared", len(declared)),
		slog.Int("supplied", len(vars)))

	return Render(t.Parsed(ctx), merged)
}
