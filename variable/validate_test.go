package variable

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateValue_AccumulatesRuleFailures(t *testing.T) {
	v := Variable{
		Name: "order_number",
		Type: TypeText,
		Rules: []Rule{
			{Type: RuleMinLength, Value: 5},
			{Type: RulePattern, Value: `^[0-9]+$`},
		},
	}

	res := ValidateValue(v, "ab")
	if res.Valid {
		t.Fatal("expected invalid")
	}

	if len(res.Errors) != 2 {
		t.Fatalf("errors = %q, want 2", res.Errors)
	}

	if res.Errors[0] == res.Errors[1] {
		t.Errorf("errors not distinct: %q", res.Errors)
	}

	if !strings.Contains(res.Errors[0], "at least 5") {
		t.Errorf("min_length error = %q", res.Errors[0])
	}
}

func TestValidateValue_Required(t *testing.T) {
	v := Variable{
		Name:     "customer_email",
		Type:     TypeEmail,
		Required: true,
		Rules:    []Rule{{Type: RuleMinLength, Value: 50}},
	}

	for _, empty := range []any{nil, "", "   ", []any{}} {
		res := ValidateValue(v, empty)
		if res.Valid || len(res.Errors) != 1 || !strings.Contains(res.Errors[0], "required") {
			t.Errorf("ValidateValue(%#v) = %+v, want single required error", empty, res)
		}
	}

	v.Required = false
	if res := ValidateValue(v, ""); !res.Valid {
		t.Errorf("optional empty value rejected: %+v", res)
	}

	v.Rules = []Rule{{Type: RuleRequired, Message: "email please"}}
	if res := ValidateValue(v, ""); res.Valid || res.Errors[0] != "email please" {
		t.Errorf("required rule = %+v", res)
	}
}

func TestValidateValue_Formats(t *testing.T) {
	tests := []struct {
		name    string
		v       Variable
		value   any
		wantErr bool
	}{
		{"email ok", Variable{Type: TypeEmail}, "ana@example.com", false},
		{"email bad", Variable{Type: TypeEmail}, "ana@", true},
		{"phone ok", Variable{Type: TypePhone}, "+1 (555) 012-3456", false},
		{"phone bad", Variable{Type: TypePhone}, "call me", true},
		{"phone short", Variable{Type: TypePhone}, "12-34", true},
		{"url ok", Variable{Type: TypeURL}, "https://acme.test/x", false},
		{"url bad", Variable{Type: TypeURL}, "acme.test", true},
		{"number ok", Variable{Type: TypeNumber}, "42.5", false},
		{"number int", Variable{Type: TypeNumber}, 7, false},
		{"number bad", Variable{Type: TypeNumber}, "seven", true},
		{"date ok", Variable{Type: TypeDate}, "2024-01-15", false},
		{"date bad", Variable{Type: TypeDate}, "yesterday", true},
		{"bool ok", Variable{Type: TypeBoolean}, "true", false},
		{"bool bad", Variable{Type: TypeBoolean}, "maybe", true},
		{"select ok", Variable{Type: TypeSelect, Options: []string{"a", "b"}}, "b", false},
		{"select bad", Variable{Type: TypeSelect, Options: []string{"a", "b"}}, "c", true},
		{"multi ok", Variable{Type: TypeMultiselect, Options: []string{"a", "b"}}, []any{"a", "b"}, false},
		{"multi string", Variable{Type: TypeMultiselect, Options: []string{"a", "b"}}, "a, b", false},
		{"multi bad", Variable{Type: TypeMultiselect, Options: []string{"a", "b"}}, []string{"a", "z"}, true},
		{"text", Variable{Type: TypeText}, "anything", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.v.Name = "field"

			res := ValidateValue(tt.v, tt.value)
			if res.Valid == tt.wantErr {
				t.Errorf("ValidateValue(%v) = %+v, wantErr %v", tt.value, res, tt.wantErr)
			}
		})
	}
}

func TestValidateValue_Rules(t *testing.T) {
	lo, hi := 1.0, 10.0

	tests := []struct {
		name    string
		rule    Rule
		value   any
		wantErr bool
	}{
		{"max_length ok", Rule{Type: RuleMaxLength, Value: 3}, "abc", false},
		{"max_length bad", Rule{Type: RuleMaxLength, Value: 3}, "abcd", true},
		{"max_length runes", Rule{Type: RuleMaxLength, Value: 3}, "héé", false},
		{"range struct ok", Rule{Type: RuleRange, Value: Range{Min: &lo, Max: &hi}}, 5, false},
		{"range struct bad", Rule{Type: RuleRange, Value: Range{Min: &lo, Max: &hi}}, "11", true},
		{"range map", Rule{Type: RuleRange, Value: map[string]any{"min": 0, "max": 1}}, 0.5, false},
		{"range open max", Rule{Type: RuleRange, Value: map[string]any{"min": uint64(3)}}, 1e9, false},
		{"range slice bad", Rule{Type: RuleRange, Value: []any{0, 1}}, 2, true},
		{"range not number", Rule{Type: RuleRange, Value: []any{0, 1}}, "x", true},
		{"expression ok", Rule{Type: RuleExpression, Value: `value startsWith "ORD-"`}, "ORD-1", false},
		{"expression bad", Rule{Type: RuleExpression, Value: `value startsWith "ORD-"`}, "X-1", true},
		{"expression numeric", Rule{Type: RuleExpression, Value: `value > 3`}, 5, false},
		{"unknown", Rule{Type: "luhn"}, "4111", true},
		{"custom message", Rule{Type: RuleMinLength, Value: 9, Message: "too short"}, "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Variable{Name: "field", Type: TypeCustom, Rules: []Rule{tt.rule}}

			res := ValidateValue(v, tt.value)
			if res.Valid == tt.wantErr {
				t.Errorf("ValidateValue(%v) = %+v, wantErr %v", tt.value, res, tt.wantErr)
			}

			if tt.rule.Message != "" && (len(res.Errors) != 1 || res.Errors[0] != tt.rule.Message) {
				t.Errorf("errors = %q, want custom message", res.Errors)
			}
		})
	}
}

func TestCheckDeclaration(t *testing.T) {
	tests := []struct {
		name string
		v    Variable
		want []error
	}{
		{
			name: "valid",
			v:    Variable{Name: "customer.name", Type: TypeText, Source: SourceCustomerData},
		},
		{
			name: "bad name",
			v:    Variable{Name: "1st", Type: TypeText, Source: SourceManual},
			want: []error{ErrInvalidName},
		},
		{
			name: "unknown type and source",
			v:    Variable{Name: "x", Type: "blob", Source: "psychic"},
			want: []error{ErrUnknownType, ErrUnknownSource},
		},
		{
			name: "external without endpoint",
			v:    Variable{Name: "eta", Type: TypeText, Source: SourceExternalAPI},
			want: []error{ErrMissingEndpoint},
		},
		{
			name: "external relative endpoint",
			v: Variable{
				Name: "eta", Type: TypeText, Source: SourceExternalAPI,
				SourceConfig: SourceConfig{APIEndpoint: "/eta"},
			},
			want: []error{ErrMissingEndpoint},
		},
		{
			name: "select without options",
			v:    Variable{Name: "tier", Type: TypeSelect, Source: SourceManual},
			want: []error{ErrMissingOptions},
		},
		{
			name: "bad rules",
			v: Variable{
				Name: "x", Type: TypeText, Source: SourceManual,
				Rules: []Rule{
					{Type: RulePattern, Value: "("},
					{Type: RuleExpression, Value: "value +"},
					{Type: RuleMinLength, Value: "five"},
					{Type: "luhn"},
				},
			},
			want: []error{ErrInvalidPattern, ErrInvalidExpr, ErrInvalidRuleValue, ErrUnknownRule},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckDeclaration(tt.v)
			if len(got) != len(tt.want) {
				t.Fatalf("CheckDeclaration = %v, want %d errors", got, len(tt.want))
			}

			for i, want := range tt.want {
				if !errors.Is(got[i], want) {
					t.Errorf("error %d = %v, want %v", i, got[i], want)
				}
			}
		})
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{3.0, "3"},
		{2.5, "2.5"},
		{42, "42"},
		{true, "true"},
		{map[string]any{"a": 1}, `{"a":1}`},
		{[]any{"a", 2}, `["a",2]`},
	}

	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
