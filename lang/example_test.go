package lang_test

import (
	"context"
	"fmt"

	"github.com/ardnew/tdl/lang"
)

func ExampleParse() {
	pt := lang.Parse(context.Background(),
		"Hi {{customer_name}}, {{#if status == open}}we are on it{{#else}}all done{{/if}}.")

	fmt.Println(pt.Variables)
	fmt.Println(pt.Render(map[string]any{"customer_name": "Ana", "status": "open"}))
	fmt.Println(pt.Render(map[string]any{"status": "closed"}))
	// Output:
	// [customer_name]
	// Hi Ana, we are on it.
	// Hi [customer_name], all done.
}

func ExampleValidate() {
	r := lang.Validate(context.Background(), "Hello {{ }} and {{#if vip}}friend")

	fmt.Println(r.Valid)

	for _, e := range r.Errors {
		fmt.Println(e)
	}
	// Output:
	// false
	// syntax: unbalanced conditional blocks: 1 {{#if}} vs 0 {{/if}}
	// 1:7: variable: empty variable name
}

func ExampleOptimize() {
	res := lang.Optimize(context.Background(), "Hi  {{name}} {{name}}!{{#if true}} Thanks.{{/if}}")

	fmt.Printf("%q\n", res.Optimized)

	for _, imp := range res.Improvements {
		fmt.Println(imp.Pass)
	}

	fmt.Printf("%.2f\n", res.PerformanceGain)
	// Output:
	// "Hi {{name}}! Thanks."
	// whitespace
	// duplicate_variable
	// constant_condition
	// 0.30
}
