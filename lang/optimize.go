package lang

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ardnew/tdl/log"
)

// Improvement describes one rewrite applied by [Optimize]. Gain is a nominal
// weight for display, not a measured timing.
type Improvement struct {
	Pass        string  `json:"pass"        yaml:"pass"`
	Description string  `json:"description" yaml:"description"`
	Gain        float64 `json:"gain"        yaml:"gain"`
}

// Optimized is the result of [Optimize].
type Optimized struct {
	Original        string        `json:"original"         yaml:"original"`
	Optimized       string        `json:"optimized"        yaml:"optimized"`
	Improvements    []Improvement `json:"improvements"     yaml:"improvements"`
	PerformanceGain float64       `json:"performance_gain" yaml:"performance_gain"`
}

// Changed reports whether any pass rewrote the text.
func (o Optimized) Changed() bool { return len(o.Improvements) > 0 }

type pass struct {
	Improvement
	apply func(ctx context.Context, text string) string
}

// passes run in order. None of them can undo another, so repeating them
// reaches a fixpoint.
var passes = []pass{
	{
		Improvement: Improvement{
			Pass:        "whitespace",
			Description: "collapsed redundant whitespace",
			Gain:        0.05,
		},
		apply: collapseWhitespace,
	},
	{
		Improvement: Improvement{
			Pass:        "duplicate_variable",
			Description: "removed repeated variable references",
			Gain:        0.10,
		},
		apply: dropDuplicateVariables,
	},
	{
		Improvement: Improvement{
			Pass:        "constant_condition",
			Description: "inlined conditions on a constant",
			Gain:        0.15,
		},
		apply: inlineConstantConditions,
	},
	{
		Improvement: Improvement{
			Pass:        "media_id",
			Description: "normalized media ids",
			Gain:        0.08,
		},
		apply: normalizeMedia,
	},
}

// maxRounds bounds the fixpoint loop.
const maxRounds = 64

// Optimize rewrites text with every optimization pass until none applies.
// Each pass that changed the text is reported once. Optimizing the output
// again reports no improvements.
func Optimize(ctx context.Context, text string, opts ...Option) Optimized {
	o := applyOptions(opts...)

	applied := make([]bool, len(passes))
	out := text

	for round := 0; round < maxRounds; round++ {
		changed := false

		for i, p := range passes {
			next := p.apply(ctx, out)
			if next == out {
				continue
			}

			o.logger.TraceContext(ctx, "optimize pass",
				slog.String("pass", p.Pass),
				slog.Int("round", round),
				slog.Int("saved_bytes", len(out)-len(next)))

			out, applied[i], changed = next, true, true
		}

		if !changed {
			break
		}
	}

	res := Optimized{Original: text, Optimized: out}

	for i, p := range passes {
		if applied[i] {
			res.Improvements = append(res.Improvements, p.Improvement)
			res.PerformanceGain += p.Gain
		}
	}

	o.logger.DebugContext(ctx, "optimize",
		slog.Int("improvements", len(res.Improvements)),
		slog.Float64("performance_gain", res.PerformanceGain))

	return res
}

var (
	reHorizontal = regexp.MustCompile(`[ \t]+`)
	reLineEdge   = regexp.MustCompile(`(?m)^ +| +$`)
	reBlankRun   = regexp.MustCompile(`\n{3,}`)
)

func collapseWhitespace(_ context.Context, text string) string {
	text = reHorizontal.ReplaceAllString(text, " ")
	text = reLineEdge.ReplaceAllString(text, "")
	text = reBlankRun.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// dropDuplicateVariables removes a variable reference that repeats the one
// before it with only whitespace in between.
func dropDuplicateVariables(_ context.Context, text string) string {
	toks := Lex(text)
	out := make([]Token, 0, len(toks))

	for _, tok := range toks {
		if tok.Kind == TokenVar && tok.Value != "" {
			last := len(out) - 1
			for last >= 0 && out[last].Kind == TokenText && strings.TrimSpace(out[last].Raw) == "" {
				last--
			}

			if last >= 0 && out[last].Kind == TokenVar && out[last].Value == tok.Value {
				out = out[:last+1]

				continue
			}
		}

		out = append(out, tok)
	}

	return join(out)
}

// inlineConstantConditions replaces {{#if true}} and {{#if false}} blocks by
// the branch that would render.
func inlineConstantConditions(ctx context.Context, text string) string {
	pt := parse(ctx, text, log.Logger{})

	var (
		b    strings.Builder
		last int
	)

	for i := range pt.Blocks {
		blk := &pt.Blocks[i]

		if blk.Kind != KindCondition || blk.Start < last ||
			blk.Cond.Operator != OpTruthy || !isLiteral(blk.Cond.Field) {
			continue
		}

		b.WriteString(text[last:blk.Start])

		switch {
		case blk.Cond.Field == "true" && blk.HasElse():
			b.WriteString(text[blk.Open.End:blk.Alt.Start])
		case blk.Cond.Field == "true":
			b.WriteString(text[blk.Open.End:blk.Close.Start])
		case blk.HasElse():
			b.WriteString(text[blk.Alt.End:blk.Close.Start])
		}

		last = blk.End
	}

	if last == 0 {
		return text
	}

	b.WriteString(text[last:])

	return b.String()
}

// normalizeMedia trims whitespace around media ids.
func normalizeMedia(_ context.Context, text string) string {
	toks := Lex(text)

	for i, tok := range toks {
		if tok.Kind == TokenMedia {
			toks[i].Raw = mediaPrefix + tok.Value + "]"
		}
	}

	return join(toks)
}

func join(toks []Token) string {
	var b strings.Builder

	for _, tok := range toks {
		b.WriteString(tok.Raw)
	}

	return b.String()
}
