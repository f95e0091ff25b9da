package lang

import (
	"context"
	"log/slog"

	"github.com/ardnew/tdl/log"
	"github.com/ardnew/tdl/variable"
)

// Parse returns the block structure of text. It never fails: malformed
// markup is kept as text, and reporting it is the job of [Validate].
//
// Results are cached by content; the returned template is shared and must
// not be modified.
func Parse(ctx context.Context, text string, opts ...Option) *ParsedTemplate {
	o := applyOptions(opts...)

	return parseCached(ctx, text, o.logger)
}

// parse builds a ParsedTemplate without consulting the cache.
func parse(ctx context.Context, text string, logger log.Logger) *ParsedTemplate {
	p := &parser{
		toks:   Lex(text),
		pt:     &ParsedTemplate{Source: text},
		seen:   make(map[string]struct{}),
		logger: logger,
	}

	p.match(ctx)
	p.pt.Root = p.parseSeq(0, len(p.toks), 0)

	for i := range p.pt.Blocks {
		k := p.pt.Blocks[i].Kind
		p.pt.Complexity += k.Weight()
		p.pt.EstimatedRenderTime += k.Cost()
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("tokens", len(p.toks)),
		slog.Int("blocks", len(p.pt.Blocks)),
		slog.Int("variables", len(p.pt.Variables)),
		slog.Int("max_depth", p.pt.MaxDepth))

	return p.pt
}

// parser holds the parser state.
type parser struct {
	toks []Token
	pt   *ParsedTemplate
	seen map[string]struct{}

	// closeOf maps an opening token index to its closing token index;
	// elseOf maps an if token index to its else token index.
	closeOf map[int]int
	elseOf  map[int]int

	logger log.Logger
}

type frame struct {
	tok  int
	kind TokenKind
	alt  int
}

// match pairs block tags in one pass with a stack. A closer pops back to its
// nearest matching opener, leaving anything opened in between unclosed.
// Unclosed openers and unmatched closers degrade to text.
func (p *parser) match(ctx context.Context) {
	p.closeOf = make(map[int]int)
	p.elseOf = make(map[int]int)

	var stack []frame

	closes := func(open, closer TokenKind) bool {
		return (open == TokenIf && closer == TokenEndIf) ||
			(open == TokenEach && closer == TokenEndEach)
	}

	for i, tok := range p.toks {
		switch tok.Kind {
		case TokenIf, TokenEach:
			stack = append(stack, frame{tok: i, kind: tok.Kind, alt: -1})

		case TokenElse:
			if n := len(stack); n > 0 && stack[n-1].kind == TokenIf && stack[n-1].alt < 0 {
				stack[n-1].alt = i
			}

		case TokenEndIf, TokenEndEach:
			j := len(stack) - 1
			for j >= 0 && !closes(stack[j].kind, tok.Kind) {
				j--
			}

			if j < 0 {
				p.logger.TraceContext(ctx, "unmatched closing tag",
					slog.String("tag", tok.Raw),
					slog.String("pos", tok.Pos.String()))

				continue
			}

			f := stack[j]
			p.closeOf[f.tok] = i

			if f.alt >= 0 {
				p.elseOf[f.tok] = f.alt
			}

			stack = stack[:j]
		}
	}

	for _, f := range stack {
		p.logger.TraceContext(ctx, "unclosed block",
			slog.String("tag", p.toks[f.tok].Raw),
			slog.String("pos", p.toks[f.tok].Pos.String()))
	}
}

// parseSeq parses tokens [from, to) into sibling blocks and returns their
// arena indices.
func (p *parser) parseSeq(from, to, depth int) []int {
	var out []int

	for i := from; i < to; {
		tok := p.toks[i]

		switch tok.Kind {
		case TokenVar:
			out = append(out, p.add(Block{
				Kind: KindVariable,
				Name: tok.Value,
			}, tok.Pos.Offset, tok.End()))
			p.reference(tok.Value)

			i++

		case TokenMedia:
			out = append(out, p.add(Block{
				Kind:    KindMedia,
				MediaID: tok.Value,
			}, tok.Pos.Offset, tok.End()))
			p.pt.Media = append(p.pt.Media, tok.Value)

			i++

		case TokenIf, TokenEach:
			end, ok := p.closeOf[i]
			if !ok {
				out = append(out, p.text(tok))
				i++

				continue
			}

			out = append(out, p.parseBlock(i, end, depth))
			i = end + 1

		default:
			out = append(out, p.text(tok))
			i++
		}
	}

	return out
}

// parseBlock parses the condition or loop opened at token open and closed at
// token end.
func (p *parser) parseBlock(open, end, depth int) int {
	ot, ct := p.toks[open], p.toks[end]

	b := Block{
		Open:  Span{ot.Pos.Offset, ot.End()},
		Close: Span{ct.Pos.Offset, ct.End()},
	}

	if ot.Kind == TokenEach {
		b.Kind = KindLoop
		b.Name = ot.Value
	} else {
		b.Kind = KindCondition
	}

	depth++
	p.pt.MaxDepth = max(p.pt.MaxDepth, depth)

	alt, hasElse := p.elseOf[open]
	if hasElse {
		at := p.toks[alt]
		b.Alt = Span{at.Pos.Offset, at.End()}
	}

	if b.Kind == KindCondition {
		cond := ParseCondition(ot.Value)

		bodyStop := b.Close.Start
		if hasElse {
			bodyStop = b.Alt.Start
		}

		cond.Body = p.pt.Source[b.Open.End:bodyStop]
		b.Cond = &cond
		p.pt.Conditions = append(p.pt.Conditions, cond)
	}

	// reserve the slot before the children so the arena stays in document
	// order
	idx := p.add(b, ot.Pos.Offset, ct.End())

	var body, elseBody []int

	// children append to the arena, so the slot is written afterwards
	if hasElse {
		body = p.parseSeq(open+1, alt, depth)
		elseBody = p.parseSeq(alt+1, end, depth)
	} else {
		body = p.parseSeq(open+1, end, depth)
	}

	p.pt.Blocks[idx].Body = body
	p.pt.Blocks[idx].Else = elseBody

	return idx
}

// text demotes tok to a text block.
func (p *parser) text(tok Token) int {
	lit := tok.Raw
	if tok.Kind == TokenText {
		lit = tok.Value
	}

	return p.add(Block{Kind: KindText, Text: lit}, tok.Pos.Offset, tok.End())
}

func (p *parser) add(b Block, start, end int) int {
	b.Start, b.End = start, end
	b.Content = p.pt.Source[start:end]
	p.pt.Blocks = append(p.pt.Blocks, b)

	return len(p.pt.Blocks) - 1
}

func (p *parser) reference(name string) {
	if !variable.ValidName(name) {
		return
	}

	if _, ok := p.seen[name]; ok {
		return
	}

	p.seen[name] = struct{}{}
	p.pt.Variables = append(p.pt.Variables, name)
}
