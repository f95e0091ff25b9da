// Package lang implements the template definition language: a lexer and
// recursive-descent parser producing a flat block arena, a renderer, a
// validator and an optimizer.
//
// # Syntax
//
//	{{name}}                    variable reference (dotted paths allowed)
//	{{#if field op value}}      condition; op is one of == != > < >= <=
//	                            contains not_contains, or a trailing
//	                            is_empty / is_not_empty
//	{{#if field}}               truthiness check
//	{{#else}}                   single else branch of the enclosing if
//	{{/if}}                     end of condition
//	{{#each items}}{{/each}}    loop; rendered as written
//	[media:id]                  media attachment
//	\{{  \[media:               literal delimiters
//
// # Error handling
//
// None of [Parse], [Render], [Validate] or [Optimize] returns an error.
// Malformed markup parses as text, unresolved variables render as "[name]",
// and problems are reported by [Validate] as a [Report].
//
// # Example
//
//	pt := lang.Parse(ctx, "Hi {{customer_name}}!")
//	fmt.Println(pt.Render(map[string]any{"customer_name": "Ana"}))
//	// Output: Hi Ana!
package lang
