package lang

import (
	"testing"
)

func TestParseCondition(t *testing.T) {
	tests := []struct {
		expr string
		want Condition
	}{
		{"status == open", Condition{Field: "status", Operator: OpEquals, Value: "open"}},
		{"status!=closed", Condition{Field: "status", Operator: OpNotEquals, Value: "closed"}},
		{"count >= 3", Condition{Field: "count", Operator: OpGreaterOrEqual, Value: "3"}},
		{"count<=3", Condition{Field: "count", Operator: OpLessOrEqual, Value: "3"}},
		{"count > 3", Condition{Field: "count", Operator: OpGreaterThan, Value: "3"}},
		{"count < 3", Condition{Field: "count", Operator: OpLessThan, Value: "3"}},
		{`title == "a > b"`, Condition{Field: "title", Operator: OpEquals, Value: "a > b"}},
		{"name contains 'An'", Condition{Field: "name", Operator: OpContains, Value: "An"}},
		{"tags not_contains vip", Condition{Field: "tags", Operator: OpNotContains, Value: "vip"}},
		{"notes is_empty", Condition{Field: "notes", Operator: OpIsEmpty}},
		{"notes is_not_empty", Condition{Field: "notes", Operator: OpIsNotEmpty}},
		{"vip", Condition{Field: "vip", Operator: OpTruthy}},
		{"  customer.tier  ", Condition{Field: "customer.tier", Operator: OpTruthy}},
		{"a ~ b", Condition{Field: "a", Operator: "~", Value: "b"}},
		{`msg == "it contains x"`, Condition{Field: "msg", Operator: OpEquals, Value: "it contains x"}},
		{`msg contains "a == b"`, Condition{Field: "msg", Operator: OpContains, Value: "a == b"}},
		{"count > 3 contains", Condition{Field: "count", Operator: OpGreaterThan, Value: "3 contains"}},
		{"note != 'x > y'", Condition{Field: "note", Operator: OpNotEquals, Value: "x > y"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := ParseCondition(tt.expr); got != tt.want {
				t.Errorf("ParseCondition(%q) = %+v, want %+v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestCondition_Eval(t *testing.T) {
	vars := map[string]any{
		"status":   "open",
		"count":    5,
		"price":    "9.50",
		"vip":      true,
		"regular":  false,
		"notes":    "  ",
		"name":     "Ana Lima",
		"tags":     []any{"vip", "beta"},
		"prefs":    map[string]any{"email": true},
		"zero":     0,
		"customer": map[string]any{"tier": "gold"},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{"status == open", true},
		{"status == closed", false},
		{"status != closed", true},
		{"count == 5.0", true},
		{"count > 3", true},
		{"count < 3", false},
		{"count >= 5", true},
		{"count <= 4", false},
		{"price > 10", false},
		{"price < 10", true},
		{"status > apple", true},
		{"missing > 0", false},
		{"missing < 0", false},
		{"missing == ''", true},
		{"vip == true", true},
		{"regular == true", false},
		{"name contains Ana", true},
		{"name not_contains Bob", true},
		{"tags contains vip", true},
		{"tags contains gold", false},
		{"tags not_contains gold", true},
		{"prefs contains email", true},
		{"missing contains x", false},
		{"missing not_contains x", true},
		{"notes is_empty", true},
		{"missing is_empty", true},
		{"tags is_not_empty", true},
		{"vip", true},
		{"regular", false},
		{"zero", false},
		{"missing", false},
		{"customer.tier == gold", true},
		{"true", true},
		{"false", false},
		{"status ~ open", false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			if got := ParseCondition(tt.expr).Eval(vars); got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestOperator_Known(t *testing.T) {
	for _, op := range Operators() {
		if !op.Known() {
			t.Errorf("%q not known", op)
		}
	}

	if Operator("~").Known() {
		t.Error("unexpected known operator")
	}
}
