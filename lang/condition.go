package lang

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/ardnew/tdl/variable"
)

// Operator is a condition comparison.
type Operator string

// Condition operators.
const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "not_equals"
	OpGreaterThan    Operator = "greater_than"
	OpLessThan       Operator = "less_than"
	OpGreaterOrEqual Operator = "greater_or_equal"
	OpLessOrEqual    Operator = "less_or_equal"
	OpContains       Operator = "contains"
	OpNotContains    Operator = "not_contains"
	OpIsEmpty        Operator = "is_empty"
	OpIsNotEmpty     Operator = "is_not_empty"
	OpTruthy         Operator = "truthy"
)

// Operators returns every supported operator.
func Operators() []Operator {
	return []Operator{
		OpEquals, OpNotEquals,
		OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual,
		OpContains, OpNotContains,
		OpIsEmpty, OpIsNotEmpty,
		OpTruthy,
	}
}

// Known reports whether op is a supported operator.
func (op Operator) Known() bool {
	switch op {
	case OpEquals, OpNotEquals,
		OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual,
		OpContains, OpNotContains,
		OpIsEmpty, OpIsNotEmpty,
		OpTruthy:
		return true
	}

	return false
}

type symbol struct {
	tok string
	op  Operator
}

// symbols in match order; two-character operators come first.
var symbols = []symbol{
	{">=", OpGreaterOrEqual},
	{"<=", OpLessOrEqual},
	{"==", OpEquals},
	{"!=", OpNotEquals},
	{">", OpGreaterThan},
	{"<", OpLessThan},
}

// Condition is a parsed {{#if}} expression.
type Condition struct {
	Field    string   `json:"field"           yaml:"field"`
	Operator Operator `json:"operator"        yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	// Body is the raw source of the branch rendered when the condition holds.
	Body string `json:"body" yaml:"body"`
}

// ParseCondition splits expr on its operator. An expression with no operator
// is a truthiness check of a single field. Three words with an unrecognized
// middle word yield a condition with that unknown operator.
func ParseCondition(expr string) Condition {
	expr = strings.TrimSpace(expr)
	words := strings.Fields(expr)

	if len(words) == 2 {
		switch op := Operator(words[1]); op {
		case OpIsEmpty, OpIsNotEmpty:
			return Condition{Field: words[0], Operator: op}
		}
	}

	if i, tok, op := findOperator(expr); i >= 0 {
		return Condition{
			Field:    strings.TrimSpace(expr[:i]),
			Operator: op,
			Value:    unquote(strings.TrimSpace(expr[i+len(tok):])),
		}
	}

	if len(words) == 3 {
		return Condition{
			Field:    words[0],
			Operator: Operator(words[1]),
			Value:    unquote(words[2]),
		}
	}

	return Condition{Field: expr, Operator: OpTruthy}
}

// wordOperators match only as whole words.
var wordOperators = []Operator{OpNotContains, OpContains}

// findOperator returns the offset of the leftmost operator in expr that is
// outside quotes, or -1. Word operators need a field before them and
// whitespace on both sides.
func findOperator(expr string) (int, string, Operator) {
	var quote byte

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}

			continue
		case c == '"' || c == '\'':
			quote = c

			continue
		}

		for _, op := range wordOperators {
			if isWordAt(expr, i, string(op)) {
				return i, string(op), op
			}
		}

		for _, sym := range symbols {
			if strings.HasPrefix(expr[i:], sym.tok) {
				return i, sym.tok, sym.op
			}
		}
	}

	return -1, "", ""
}

func isWordAt(expr string, i int, word string) bool {
	end := i + len(word)

	return i > 0 && end < len(expr) &&
		isSpace(expr[i-1]) && isSpace(expr[end]) &&
		expr[i:end] == word
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r':
		return true
	}

	return false
}

func unquote(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '\'' && s[len(s)-1] == '\'':
			return s[1 : len(s)-1]
		}
	}

	return s
}

// isLiteral reports whether a condition field is a boolean literal rather
// than a variable reference.
func isLiteral(field string) bool {
	switch field {
	case "true", "false":
		return true
	}

	return false
}

// Eval evaluates c against vars. Unknown operators are false.
func (c Condition) Eval(vars map[string]any) bool {
	val, found := lookup(vars, c.Field)
	if !found && isLiteral(c.Field) {
		val, found = c.Field == "true", true
	}

	switch c.Operator {
	case OpEquals:
		return equal(val, c.Value)
	case OpNotEquals:
		return !equal(val, c.Value)
	case OpGreaterThan:
		return found && compare(val, c.Value) > 0
	case OpLessThan:
		return found && compare(val, c.Value) < 0
	case OpGreaterOrEqual:
		return found && compare(val, c.Value) >= 0
	case OpLessOrEqual:
		return found && compare(val, c.Value) <= 0
	case OpContains:
		return found && contains(val, c.Value)
	case OpNotContains:
		return !found || !contains(val, c.Value)
	case OpIsEmpty:
		return empty(val)
	case OpIsNotEmpty:
		return !empty(val)
	case OpTruthy:
		return truthy(val)
	}

	return false
}

// lookup resolves name in vars, preferring an exact key over a dotted path.
func lookup(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok && v != nil {
		return v, true
	}

	return variable.Lookup(vars, name)
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case nil, bool:
		return 0, false
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)

		return f, err == nil
	}

	rv := reflect.ValueOf(v)

	switch {
	case rv.CanInt():
		return float64(rv.Int()), true
	case rv.CanUint():
		return float64(rv.Uint()), true
	case rv.CanFloat():
		return rv.Float(), true
	}

	return 0, false
}

func equal(val any, lit string) bool {
	a, aok := number(val)
	b, bok := number(lit)

	if aok && bok {
		return a == b
	}

	return variable.Stringify(val) == lit
}

func compare(val any, lit string) int {
	a, aok := number(val)
	b, bok := number(lit)

	if aok && bok {
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}

		return 0
	}

	return strings.Compare(variable.Stringify(val), lit)
}

func contains(val any, lit string) bool {
	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := range rv.Len() {
			if variable.Stringify(rv.Index(i).Interface()) == lit {
				return true
			}
		}

		return false

	case reflect.Map:
		for _, k := range rv.MapKeys() {
			if variable.Stringify(k.Interface()) == lit {
				return true
			}
		}

		return false
	}

	return strings.Contains(variable.Stringify(val), lit)
}

func empty(val any) bool {
	if val == nil {
		return true
	}

	if s, ok := val.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}

	return false
}

func truthy(val any) bool {
	if empty(val) {
		return false
	}

	switch x := val.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "false", "0":
			return false
		}

		return true
	}

	if f, ok := number(val); ok {
		return f != 0
	}

	return true
}
