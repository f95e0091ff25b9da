package lang

import (
	"strings"

	"github.com/ardnew/tdl/variable"
)

// Render produces the final text of pt against vars. It never fails and
// never modifies pt:
//
//   - text is copied verbatim;
//   - a variable renders its value, or the placeholder "[name]" when the
//     value is missing;
//   - a condition renders its body when it holds, otherwise its else branch
//     if it has one;
//   - media renders the placeholder "[Media: id]";
//   - a loop is passed through as its raw source.
func Render(pt *ParsedTemplate, vars map[string]any) string {
	if pt == nil {
		return ""
	}

	var b strings.Builder

	b.Grow(len(pt.Source))
	pt.render(&b, pt.Root, vars)

	return b.String()
}

// Render is shorthand for [Render](pt, vars).
func (pt *ParsedTemplate) Render(vars map[string]any) string {
	return Render(pt, vars)
}

func (pt *ParsedTemplate) render(b *strings.Builder, idx []int, vars map[string]any) {
	for blk := range pt.Children(idx) {
		switch blk.Kind {
		case KindText:
			b.WriteString(blk.Text)

		case KindVariable:
			b.WriteString(renderVariable(blk.Name, vars))

		case KindCondition:
			if blk.Cond.Eval(vars) {
				pt.render(b, blk.Body, vars)
			} else {
				pt.render(b, blk.Else, vars)
			}

		case KindMedia:
			b.WriteString(MediaPlaceholder(blk.MediaID))

		case KindLoop:
			b.WriteString(blk.Content)
		}
	}
}

func renderVariable(name string, vars map[string]any) string {
	val, ok := lookup(vars, name)
	if !ok {
		return Placeholder(name)
	}

	return variable.Stringify(val)
}

// Placeholder is the rendering of an unresolved variable.
func Placeholder(name string) string { return "[" + name + "]" }

// MediaPlaceholder is the rendering of a media reference.
func MediaPlaceholder(id string) string { return "[Media: " + id + "]" }
