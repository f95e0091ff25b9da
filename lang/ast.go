package lang

import (
	"iter"

	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Kind identifies the variant of a [Block].
type Kind int

// Block kinds.
const (
	KindText Kind = iota
	KindVariable
	KindCondition
	KindMedia
	KindLoop
)

var kindNames = [...]string{
	KindText:      "text",
	KindVariable:  "variable",
	KindCondition: "condition",
	KindMedia:     "media",
	KindLoop:      "loop",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Weight is the contribution of one block of kind k to the complexity score.
func (k Kind) Weight() int {
	switch k {
	case KindText:
		return 1
	case KindVariable:
		return 2
	case KindCondition:
		return 5
	case KindMedia:
		return 3
	case KindLoop:
		return 8
	}

	return 0
}

// Cost is the estimated time in milliseconds to render one block of kind k.
func (k Kind) Cost() float64 {
	switch k {
	case KindText:
		return 0.1
	case KindVariable:
		return 0.5
	case KindCondition:
		return 1.0
	case KindMedia:
		return 2.0
	case KindLoop:
		return 4.0
	}

	return 0
}

// Span is a half-open byte range [Start, End) of template source.
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Empty reports whether the span covers nothing.
func (s Span) Empty() bool { return s.End <= s.Start }

// Block is one classified unit of a parsed template. Blocks are immutable
// once parsed.
type Block struct {
	Kind Kind `json:"kind" yaml:"kind"`
	// Content is the raw source of the whole block, including any body.
	Content string `json:"content" yaml:"content"`
	Start   int    `json:"start"   yaml:"start"`
	End     int    `json:"end"     yaml:"end"`

	// Text is the literal output of a text block.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
	// Name is the variable name of a variable block or the collection
	// expression of a loop block.
	Name    string     `json:"name,omitempty"     yaml:"name,omitempty"`
	MediaID string     `json:"media_id,omitempty" yaml:"media_id,omitempty"`
	Cond    *Condition `json:"condition,omitempty" yaml:"condition,omitempty"`

	// Body and Else index child blocks in [ParsedTemplate.Blocks].
	Body []int `json:"body,omitempty" yaml:"body,omitempty"`
	Else []int `json:"else,omitempty" yaml:"else,omitempty"`

	// Open, Alt and Close locate the opening, else and closing tags of a
	// condition or loop. Alt is empty when there is no else branch.
	Open  Span `json:"open"  yaml:"open"`
	Alt   Span `json:"alt"   yaml:"alt"`
	Close Span `json:"close" yaml:"close"`
}

// HasElse reports whether a condition block has an else branch.
func (b *Block) HasElse() bool { return !b.Alt.Empty() }

// ParsedTemplate is the abstract structure of template text. Blocks form a
// flat arena in document order; Root lists the top-level blocks.
type ParsedTemplate struct {
	Source string  `json:"source" yaml:"source"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
	Root   []int   `json:"root"   yaml:"root"`

	// Variables holds every valid variable reference in first-seen order
	// without duplicates.
	Variables  []string    `json:"variables"  yaml:"variables"`
	Conditions []Condition `json:"conditions" yaml:"conditions"`
	Media      []string    `json:"media"      yaml:"media"`

	Complexity          int     `json:"complexity"             yaml:"complexity"`
	EstimatedRenderTime float64 `json:"estimated_render_time"  yaml:"estimated_render_time"`
	MaxDepth            int     `json:"max_depth"              yaml:"max_depth"`
}

// Children yields the blocks at the given arena indices.
func (pt *ParsedTemplate) Children(idx []int) iter.Seq[*Block] {
	return func(yield func(*Block) bool) {
		for _, i := range idx {
			if !yield(&pt.Blocks[i]) {
				return
			}
		}
	}
}

// Fields returns the variable names and condition fields referenced by the
// template in first-seen order.
func (pt *ParsedTemplate) Fields() []string {
	seen := make(map[string]struct{}, len(pt.Variables))
	out := make([]string, 0, len(pt.Variables))

	add := func(name string) {
		if _, ok := seen[name]; ok || !variable.ValidName(name) {
			return
		}

		seen[name] = struct{}{}
		out = append(out, name)
	}

	for i := range pt.Blocks {
		b := &pt.Blocks[i]

		switch b.Kind {
		case KindVariable:
			add(b.Name)
		case KindCondition:
			if !isLiteral(b.Cond.Field) {
				add(b.Cond.Field)
			}
		}
	}

	return out
}

// options configures parsing, validation and optimization.
type options struct {
	logger   log.Logger
	declared []variable.Variable
}

// Option configures engine behavior.
type Option func(*options)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDeclared supplies the variable declarations a template is checked
// against.
func WithDeclared(vars ...variable.Variable) Option {
	return func(o *options) {
		o.declared = append(o.declared, vars...)
	}
}

func applyOptions(opts ...Option) options {
	var o options

	for _, opt := range opts {
		opt(&o)
	}

	return o
}
