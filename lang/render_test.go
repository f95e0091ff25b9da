package lang

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		input string
		vars  map[string]any
		want  string
	}{
		{
			name:  "greeting",
			input: "Hi {{customer_name}}, your order {{order_number}} is {{status}}.",
			vars: map[string]any{
				"customer_name": "Ana",
				"order_number":  "A100",
				"status":        "shipped",
			},
			want: "Hi Ana, your order A100 is shipped.",
		},
		{
			name:  "missing variable",
			input: "{{foo}}",
			want:  "[foo]",
		},
		{
			name:  "nil variable",
			input: "{{foo}}",
			vars:  map[string]any{"foo": nil},
			want:  "[foo]",
		},
		{
			name:  "quoted value with operator word",
			input: `{{#if msg == "it contains x"}}YES{{/if}}`,
			vars:  map[string]any{"msg": "it contains x"},
			want:  "YES",
		},
		{
			name:  "condition true",
			input: "{{#if status == open}}OPEN{{/if}}",
			vars:  map[string]any{"status": "open"},
			want:  "OPEN",
		},
		{
			name:  "condition false",
			input: "{{#if status == open}}OPEN{{/if}}",
			vars:  map[string]any{"status": "closed"},
			want:  "",
		},
		{
			name:  "vip true",
			input: "{{#if vip == true}}Thanks for being VIP!{{/if}}",
			vars:  map[string]any{"vip": true},
			want:  "Thanks for being VIP!",
		},
		{
			name:  "vip false",
			input: "{{#if vip == true}}Thanks for being VIP!{{/if}}",
			vars:  map[string]any{"vip": false},
			want:  "",
		},
		{
			name:  "else branch",
			input: "{{#if vip}}Gold{{#else}}Standard{{/if}} plan",
			vars:  map[string]any{"vip": false},
			want:  "Standard plan",
		},
		{
			name:  "nested condition",
			input: "{{#if a}}A{{#if b}}B{{/if}}{{/if}}",
			vars:  map[string]any{"a": true, "b": "yes"},
			want:  "AB",
		},
		{
			name:  "dotted path",
			input: "{{customer.name}} / {{items.1}}",
			vars: map[string]any{
				"customer": map[string]any{"name": "Ana"},
				"items":    []any{"a", "b"},
			},
			want: "Ana / b",
		},
		{
			name:  "flat dotted key",
			input: "{{customer.name}}",
			vars:  map[string]any{"customer.name": "Ana"},
			want:  "Ana",
		},
		{
			name:  "missing segment",
			input: "{{customer.email}}",
			vars:  map[string]any{"customer": map[string]any{"name": "Ana"}},
			want:  "[customer.email]",
		},
		{
			name:  "object as json",
			input: "{{order}}",
			vars:  map[string]any{"order": map[string]any{"id": 7}},
			want:  `{"id":7}`,
		},
		{
			name:  "numbers",
			input: "{{count}} {{price}}",
			vars:  map[string]any{"count": 3.0, "price": 9.5},
			want:  "3 9.5",
		},
		{
			name:  "media",
			input: "See [media:invoice-42]",
			want:  "See [Media: invoice-42]",
		},
		{
			name:  "loop passthrough",
			input: "{{#each items}}- {{name}}{{/each}}",
			vars:  map[string]any{"items": []any{1, 2}, "name": "x"},
			want:  "{{#each items}}- {{name}}{{/each}}",
		},
		{
			name:  "escaped delimiters",
			input: `\{{name}} and \[media:x]`,
			vars:  map[string]any{"name": "Ana"},
			want:  "{{name}} and [media:x]",
		},
		{
			name:  "unclosed if renders verbatim",
			input: "{{#if vip}}Hello {{name}}",
			vars:  map[string]any{"name": "Ana"},
			want:  "{{#if vip}}Hello Ana",
		},
		{
			name:  "stray close renders verbatim",
			input: "done{{/if}}",
			want:  "done{{/if}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt := Parse(t.Context(), tt.input)

			if got := Render(pt, tt.vars); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRender_PlainTextRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"Hello there.",
		"Braces { alone } and [brackets] and [media without colon]",
		"Multi\nline\n\n  text\twith tabs",
		"back\\slash and unicode: héllo, 世界",
		"single { brace } {not a tag}",
	}

	for _, in := range inputs {
		if got := Render(Parse(t.Context(), in), nil); got != in {
			t.Errorf("Render(Parse(%q)) = %q", in, got)
		}
	}
}

func TestRender_DoesNotMutate(t *testing.T) {
	ClearCache()

	pt := Parse(t.Context(), "{{#if a}}{{b}}{{#else}}[media:c]{{/if}}")
	before := *pt
	before.Blocks = append([]Block(nil), pt.Blocks...)

	_ = Render(pt, map[string]any{"a": true, "b": "x"})
	_ = pt.Render(map[string]any{"a": false})

	if !reflect.DeepEqual(before.Blocks, pt.Blocks) {
		t.Error("render modified the parsed template")
	}
}

func TestRender_Nil(t *testing.T) {
	if got := Render(nil, nil); got != "" {
		t.Errorf("Render(nil) = %q", got)
	}
}
