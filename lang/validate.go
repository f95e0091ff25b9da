package lang

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/tdl/variable"
)

// IssueKind classifies a validation finding.
type IssueKind string

// Issue kinds. Syntax, variable and configuration issues are errors; the
// rest are advisory.
const (
	IssueSyntax        IssueKind = "syntax"
	IssueVariable      IssueKind = "variable"
	IssueConfiguration IssueKind = "configuration"
	IssuePerformance   IssueKind = "performance"
	IssueOptimization  IssueKind = "optimization"
	IssueAccessibility IssueKind = "accessibility"
	IssueReadability   IssueKind = "readability"
)

// Advisory thresholds.
const (
	MaxNestingDepth = 3
	MaxWordCount    = 100
)

// Issue is one validation finding. Offset is -1 when the finding is not tied
// to a location.
type Issue struct {
	Kind    IssueKind `json:"kind"    yaml:"kind"`
	Message string    `json:"message" yaml:"message"`
	Offset  int       `json:"offset"  yaml:"offset"`
	Line    int       `json:"line,omitempty" yaml:"line,omitempty"`
	Col     int       `json:"col,omitempty"  yaml:"col,omitempty"`
}

func (i Issue) String() string {
	if i.Line > 0 {
		return fmt.Sprintf("%d:%d: %s: %s", i.Line, i.Col, i.Kind, i.Message)
	}

	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// Report is the result of [Validate]. Only Errors block acceptance.
type Report struct {
	Valid       bool    `json:"valid"       yaml:"valid"`
	Errors      []Issue `json:"errors"      yaml:"errors"`
	Warnings    []Issue `json:"warnings"    yaml:"warnings"`
	Suggestions []Issue `json:"suggestions" yaml:"suggestions"`
}

func (r *Report) fail(kind IssueKind, err error) {
	r.Errors = append(r.Errors, issue(kind, err))
}

func (r *Report) warn(kind IssueKind, err error) {
	r.Warnings = append(r.Warnings, issue(kind, err))
}

func (r *Report) suggest(kind IssueKind, msg string) {
	r.Suggestions = append(r.Suggestions, Issue{Kind: kind, Message: msg, Offset: -1})
}

func issue(kind IssueKind, err error) Issue {
	is := Issue{Kind: kind, Message: err.Error(), Offset: -1}

	var e *Error
	if errors.As(err, &e) {
		if pos, ok := e.Position(); ok {
			is.Offset, is.Line, is.Col = pos.Offset, pos.Line, pos.Col
			// the location is carried by the fields
			bare := *e
			bare.pos = nil
			is.Message = bare.Error()
		}
	}

	return is
}

// Validate checks text for malformed markup and reports advisory findings.
// It never panics; an internal failure is reported as a syntax error.
func Validate(ctx context.Context, text string, opts ...Option) (report Report) {
	o := applyOptions(opts...)

	defer func() {
		if r := recover(); r != nil {
			err := ErrValidatorPanic.With(slog.Any("panic", r))
			o.logger.ErrorContext(ctx, "validate", slog.Any("error", err))

			report = Report{
				Errors: []Issue{{
					Kind:    IssueSyntax,
					Message: fmt.Sprintf("%s: %v", ErrValidatorPanic.Error(), r),
					Offset:  -1,
				}},
			}
		}
	}()

	report = validate(ctx, text, o)
	report.Valid = len(report.Errors) == 0

	o.logger.DebugContext(ctx, "validate",
		slog.Bool("valid", report.Valid),
		slog.Int("errors", len(report.Errors)),
		slog.Int("warnings", len(report.Warnings)),
		slog.Int("suggestions", len(report.Suggestions)))

	return report
}

func validate(ctx context.Context, text string, o options) Report {
	var r Report

	toks := Lex(text)

	// (a) delimiter balance
	if opens, closes := strings.Count(text, openDelim), strings.Count(text, closeDelim); opens != closes {
		r.fail(IssueSyntax, ErrUnbalancedBraces.With(
			slog.Int("open", opens), slog.Int("close", closes)).
			Wrap(fmt.Errorf("%d %q vs %d %q", opens, openDelim, closes, closeDelim)))
	}

	// (b) conditional balance
	var ifs, endifs, eaches, endeaches int

	for _, tok := range toks {
		switch tok.Kind {
		case TokenIf:
			ifs++
		case TokenEndIf:
			endifs++
		case TokenEach:
			eaches++
		case TokenEndEach:
			endeaches++
		}
	}

	if ifs != endifs {
		r.fail(IssueSyntax, ErrUnbalancedIf.
			Wrap(fmt.Errorf("%d {{#if}} vs %d {{/if}}", ifs, endifs)))
	}

	if eaches != endeaches {
		r.warn(IssueSyntax, ErrUnbalancedLoop.
			Wrap(fmt.Errorf("%d {{#each}} vs %d {{/each}}", eaches, endeaches)))
	}

	// (c) variable names, (d) condition expressions, (e) media ids
	for _, tok := range toks {
		switch tok.Kind {
		case TokenVar:
			switch {
			case tok.Value == "":
				r.fail(IssueVariable, ErrEmptyVariable.WithPosition(tok.Pos))
			case !variable.ValidName(tok.Value):
				r.fail(IssueVariable, ErrInvalidVariable.WithPosition(tok.Pos).
					Wrap(fmt.Errorf("%q", tok.Value)))
			}

		case TokenIf:
			if tok.Value == "" {
				r.fail(IssueSyntax, ErrEmptyCondition.WithPosition(tok.Pos))
			}

		case TokenMedia:
			if tok.Value == "" {
				r.fail(IssueSyntax, ErrEmptyMedia.WithPosition(tok.Pos))
			}
		}
	}

	for _, v := range o.declared {
		for _, err := range variable.CheckDeclaration(v) {
			r.fail(IssueConfiguration, ErrInvalidDeclaration.
				With(slog.String("variable", v.Name)).
				Wrap(err))
		}
	}

	pt := parse(ctx, text, o.logger)

	checkBlocks(&r, pt)
	checkDeclared(&r, pt, o.declared)

	if pt.MaxDepth > MaxNestingDepth {
		r.suggest(IssuePerformance, fmt.Sprintf(
			"conditions are nested %d levels deep; consider flattening to at most %d",
			pt.MaxDepth, MaxNestingDepth))
	}

	if len(pt.Media) > 0 {
		r.suggest(IssueAccessibility,
			"media attachments should include alt text for accessibility")
	}

	if n := len(strings.Fields(text)); n > MaxWordCount {
		r.suggest(IssueReadability, fmt.Sprintf(
			"template has %d words; consider shortening it to %d or fewer",
			n, MaxWordCount))
	}

	return r
}

func checkBlocks(r *Report, pt *ParsedTemplate) {
	pos := positions(pt.Source)

	for i := range pt.Blocks {
		b := &pt.Blocks[i]

		switch b.Kind {
		case KindCondition:
			if b.Cond.Field != "" && !b.Cond.Operator.Known() {
				r.warn(IssueSyntax, ErrUnsupportedOperator.WithPosition(pos(b.Start)).
					Wrap(fmt.Errorf("%q evaluates to false", b.Cond.Operator)))
			}

		case KindLoop:
			r.warn(IssueSyntax, ErrLoopPassthrough.WithPosition(pos(b.Start)).
				Wrap(fmt.Errorf("%q renders as written", pt.Source[b.Open.Start:b.Open.End])))
		}
	}
}

func checkDeclared(r *Report, pt *ParsedTemplate, declared []variable.Variable) {
	if len(declared) == 0 {
		return
	}

	names := make(map[string]struct{}, len(declared))
	for _, v := range declared {
		names[v.Name] = struct{}{}
	}

	used := make(map[string]struct{})

	for _, name := range pt.Fields() {
		used[name] = struct{}{}

		if _, ok := names[name]; !ok {
			r.warn(IssueVariable, ErrUndeclared.Wrap(fmt.Errorf("%q", name)))
		}
	}

	var unused []string

	for _, v := range declared {
		if _, ok := used[v.Name]; !ok {
			unused = append(unused, v.Name)
		}
	}

	if len(unused) > 0 {
		r.suggest(IssueOptimization, fmt.Sprintf(
			"declared variables are never used: %s", strings.Join(unused, ", ")))
	}
}

// positions returns a function mapping byte offsets of src to positions.
func positions(src string) func(int) Position {
	lines := []int{0}

	for i := range len(src) {
		if src[i] == '\n' {
			lines = append(lines, i+1)
		}
	}

	return func(off int) Position {
		line := 0
		for line+1 < len(lines) && lines[line+1] <= off {
			line++
		}

		col := 1 + len([]rune(src[lines[line]:off]))

		return Position{Offset: off, Line: line + 1, Col: col}
	}
}
