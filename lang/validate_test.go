package lang

import (
	"strings"
	"testing"

	"github.com/ardnew/tdl/variable"
)

func kindsOf(issues []Issue) []IssueKind {
	out := make([]IssueKind, 0, len(issues))
	for _, is := range issues {
		out = append(out, is.Kind)
	}

	return out
}

func hasMessage(issues []Issue, substr string) bool {
	for _, is := range issues {
		if strings.Contains(is.Message, substr) {
			return true
		}
	}

	return false
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unbalanced braces", "Hi {{name", ErrUnbalancedBraces.Error()},
		{"extra close", "Hi name}}", ErrUnbalancedBraces.Error()},
		{"unclosed if", "{{#if vip}}Hello", ErrUnbalancedIf.Error()},
		{"stray endif", "Hello{{/if}}", ErrUnbalancedIf.Error()},
		{"empty variable", "Hi {{ }}", ErrEmptyVariable.Error()},
		{"invalid variable", "Hi {{ 1st-name }}", ErrInvalidVariable.Error()},
		{"empty condition", "{{#if}}x{{/if}}", ErrEmptyCondition.Error()},
		{"empty media", "see [media: ]", ErrEmptyMedia.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(t.Context(), tt.input)

			if r.Valid {
				t.Fatalf("Validate(%q) valid, want error %q", tt.input, tt.want)
			}

			if !hasMessage(r.Errors, tt.want) {
				t.Errorf("errors = %v, want one containing %q", r.Errors, tt.want)
			}
		})
	}
}

func TestValidate_Valid(t *testing.T) {
	inputs := []string{
		"",
		"Plain text only.",
		"Hi {{customer_name}}, your order {{order.number}} is {{status}}.",
		"{{#if vip}}A{{#else}}B{{/if}}",
		"{{#if a}}{{#if b}}x{{/if}}{{/if}}",
		`\{{literal}}`,
	}

	for _, in := range inputs {
		r := Validate(t.Context(), in)
		if !r.Valid || len(r.Errors) != 0 {
			t.Errorf("Validate(%q) = %+v, want valid", in, r)
		}
	}
}

func TestValidate_BalancedDelimiters(t *testing.T) {
	inputs := []string{
		"{{a}}{{b}}",
		"{{#if a}}{{#if b}}{{/if}}{{/if}}",
		"{{#if a}}{{/if}}{{#if b}}{{/if}}",
		"}}{{",
	}

	for _, in := range inputs {
		r := Validate(t.Context(), in)

		if hasMessage(r.Errors, ErrUnbalancedBraces.Error()) ||
			hasMessage(r.Errors, ErrUnbalancedIf.Error()) {
			t.Errorf("Validate(%q) reported imbalance: %v", in, r.Errors)
		}
	}
}

func TestValidate_Position(t *testing.T) {
	r := Validate(t.Context(), "first line\nab {{}}")

	if len(r.Errors) != 1 {
		t.Fatalf("errors = %v", r.Errors)
	}

	got := r.Errors[0]
	if got.Line != 2 || got.Col != 4 || got.Offset != 14 {
		t.Errorf("position = %d:%d@%d, want 2:4@14", got.Line, got.Col, got.Offset)
	}

	if got.Message != ErrEmptyVariable.Error() {
		t.Errorf("message = %q", got.Message)
	}

	if s := got.String(); s != "2:4: variable: empty variable name" {
		t.Errorf("String() = %q", s)
	}
}

func TestValidate_Warnings(t *testing.T) {
	r := Validate(t.Context(), "{{#if a ~ b}}x{{/if}} {{#each items}}y{{/each}} {{#each z}}")

	if !r.Valid {
		t.Fatalf("warnings must not invalidate: %+v", r.Errors)
	}

	for _, want := range []string{
		ErrUnsupportedOperator.Error(),
		ErrLoopPassthrough.Error(),
		ErrUnbalancedLoop.Error(),
	} {
		if !hasMessage(r.Warnings, want) {
			t.Errorf("warnings = %v, want one containing %q", r.Warnings, want)
		}
	}
}

func TestValidate_Suggestions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  IssueKind
	}{
		{
			name:  "deep nesting",
			input: "{{#if a}}{{#if b}}{{#if c}}{{#if d}}x{{/if}}{{/if}}{{/if}}{{/if}}",
			want:  IssuePerformance,
		},
		{
			name:  "media alt text",
			input: "[media:logo]",
			want:  IssueAccessibility,
		},
		{
			name:  "long text",
			input: strings.Repeat("word ", MaxWordCount+1),
			want:  IssueReadability,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Validate(t.Context(), tt.input)

			if !r.Valid {
				t.Errorf("suggestions must not invalidate: %+v", r.Errors)
			}

			kinds := kindsOf(r.Suggestions)
			if len(kinds) != 1 || kinds[0] != tt.want {
				t.Errorf("suggestions = %v, want [%s]", kinds, tt.want)
			}
		})
	}

	r := Validate(t.Context(), "{{#if a}}{{#if b}}{{#if c}}x{{/if}}{{/if}}{{/if}}")
	if len(r.Suggestions) != 0 {
		t.Errorf("depth 3 suggestions = %v", r.Suggestions)
	}
}

func TestValidate_Declared(t *testing.T) {
	declared := []variable.Variable{
		{Name: "customer_name", Type: variable.TypeText, Source: variable.SourceCustomerData},
		{Name: "status", Type: variable.TypeText, Source: variable.SourceConversationContext},
		{Name: "coupon", Type: variable.TypeText, Source: variable.SourceManual},
	}

	r := Validate(t.Context(),
		"Hi {{customer_name}} {{#if status == open}}{{ticket}}{{/if}}",
		WithDeclared(declared...))

	if !r.Valid {
		t.Fatalf("errors = %v", r.Errors)
	}

	if !hasMessage(r.Warnings, `"ticket"`) {
		t.Errorf("warnings = %v, want undeclared ticket", r.Warnings)
	}

	if hasMessage(r.Warnings, `"status"`) {
		t.Errorf("condition field reported undeclared: %v", r.Warnings)
	}

	if !hasMessage(r.Suggestions, "coupon") || hasMessage(r.Suggestions, "status") {
		t.Errorf("suggestions = %v, want unused coupon only", r.Suggestions)
	}
}

func TestValidate_Configuration(t *testing.T) {
	r := Validate(t.Context(), "{{eta}}", WithDeclared(variable.Variable{
		Name:   "eta",
		Type:   variable.TypeText,
		Source: variable.SourceExternalAPI,
	}))

	if r.Valid {
		t.Fatal("expected configuration error")
	}

	if kinds := kindsOf(r.Errors); len(kinds) != 1 || kinds[0] != IssueConfiguration {
		t.Errorf("errors = %v", r.Errors)
	}
}

func TestTemplate_Validate(t *testing.T) {
	tmpl := New("{{customer_name}}", WithDeclared(variable.Variable{
		Name: "customer_name", Type: variable.TypeText, Source: variable.SourceCustomerData,
	}))

	if r := tmpl.Validate(t.Context()); !r.Valid || len(r.Warnings) != 0 || len(r.Suggestions) != 0 {
		t.Errorf("Validate = %+v", r)
	}

	tmpl.SetText("{{customer_name")

	if r := tmpl.Validate(t.Context()); r.Valid {
		t.Error("expected invalid after SetText")
	}
}
