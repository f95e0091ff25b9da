// Package variable declares template variables and resolves their runtime
// values.
//
// A [Variable] is a typed declaration: a dotted name, a [Type], the [Source]
// that supplies its value, validation [Rule]s and a default. A [Resolver]
// turns declarations into values against a [Context] snapshot:
//
//	r := variable.NewResolver(
//		variable.WithAgent("Sarah", "sarah@acme.test"),
//		variable.WithCompany("Acme"))
//
//	values := r.ResolveAll(ctx, decls, rc, overrides)
//
// Resolution never fails. Explicit overrides win; otherwise the source
// resolver runs, and anything it cannot produce falls back to the declared
// default. Only external_api variables perform I/O, bounded by ctx.
//
// # Registry
//
// Well-known variables are listed in an embedded YAML [Registry], grouped by
// [Namespace]. The registry drives autocomplete through [Resolver.Suggest]
// and supplies name aliases for customer and conversation lookups.
//
// # Validation
//
// [ValidateValue] checks a runtime value against its declaration and collects
// every failure. [CheckDeclaration] checks the declaration itself.
package variable
