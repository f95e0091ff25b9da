package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/tdl/lang"
	"github.com/ardnew/tdl/log"
)

// Parse dumps the parsed structure of a template.
type Parse struct {
	Format string `default:"json" enum:"json,yaml" help:"Output format."                 short:"f"`
	Indent int    `default:"2"                      help:"Indent width (0 for compact)." short:"i"`
	Tokens bool   `help:"Dump lexer tokens instead of the block tree."`

	Source string `arg:"" default:"-" help:"Template file or '-' for stdin." name:"source"`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	text, err := readSource(p.Source)
	if err != nil {
		return err
	}

	if p.Tokens {
		return encode(ctx, stdout(ctx), p.Format, p.Indent, lang.Lex(text))
	}

	pt := lang.Parse(ctx, text, lang.WithLogger(log.Default()))

	log.DebugContext(ctx, "parsed template",
		slog.String("source", p.Source),
		slog.Int("blocks", len(pt.Blocks)),
		slog.Int("complexity", pt.Complexity),
	)

	return encode(ctx, stdout(ctx), p.Format, p.Indent, pt)
}
