package variable

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strconv"
)

// Type identifies the kind of value a variable holds.
type Type string

const (
	TypeText        Type = "text"
	TypeNumber      Type = "number"
	TypeDate        Type = "date"
	TypeBoolean     Type = "boolean"
	TypeSelect      Type = "select"
	TypeMultiselect Type = "multiselect"
	TypeEmail       Type = "email"
	TypePhone       Type = "phone"
	TypeURL         Type = "url"
	TypeCustom      Type = "custom"
)

// Types returns all known variable types in declaration order.
func Types() []Type {
	return []Type{
		TypeText, TypeNumber, TypeDate, TypeBoolean, TypeSelect,
		TypeMultiselect, TypeEmail, TypePhone, TypeURL, TypeCustom,
	}
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool { return slices.Contains(Types(), t) }

// Source identifies the subsystem that supplies a variable's runtime value.
type Source string

const (
	SourceManual              Source = "manual"
	SourceCustomerData        Source = "customer_data"
	SourceConversationContext Source = "conversation_context"
	SourceSystem              Source = "system"
	SourceExternalAPI         Source = "external_api"
)

// Sources returns all known variable sources.
func Sources() []Source {
	return []Source{
		SourceManual, SourceCustomerData, SourceConversationContext,
		SourceSystem, SourceExternalAPI,
	}
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool { return slices.Contains(Sources(), s) }

// RuleType names a validation rule.
type RuleType string

const (
	RuleRequired   RuleType = "required"
	RuleMinLength  RuleType = "min_length"
	RuleMaxLength  RuleType = "max_length"
	RulePattern    RuleType = "pattern"
	RuleRange      RuleType = "range"
	RuleExpression RuleType = "expression"
)

// Rule is one declared validation rule.
//
// Value depends on Type: an integer for min_length and max_length, a regular
// expression for pattern, a [Range] (or a map with "min"/"max" keys) for
// range, and an expr-lang boolean expression over "value" for expression.
type Rule struct {
	Type    RuleType `json:"type"              yaml:"type"`
	Value   any      `json:"value,omitempty"   yaml:"value,omitempty"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Range bounds a numeric value. A nil bound is open.
type Range struct {
	Min *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max *float64 `json:"max,omitempty" yaml:"max,omitempty"`
}

// SourceConfig holds source-specific settings.
type SourceConfig struct {
	APIEndpoint string         `json:"api_endpoint,omitempty" yaml:"api_endpoint,omitempty"`
	Params      map[string]any `json:"params,omitempty"       yaml:"params,omitempty"`
}

// Variable is a typed variable declaration attached to a template.
type Variable struct {
	Name         string       `json:"name"                    yaml:"name"`
	Type         Type         `json:"type"                    yaml:"type"`
	Source       Source       `json:"source"                  yaml:"source"`
	Required     bool         `json:"required,omitempty"      yaml:"required,omitempty"`
	Rules        []Rule       `json:"validation_rules,omitempty" yaml:"validation_rules,omitempty"`
	Default      any          `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Description  string       `json:"description,omitempty"   yaml:"description,omitempty"`
	Options      []string     `json:"options,omitempty"       yaml:"options,omitempty"`
	SourceConfig SourceConfig `json:"source_config,omitzero"  yaml:"source_config,omitempty"`
}

// namePattern is the grammar for variable names: dot-separated identifiers.
var namePattern = regexp.MustCompile(
	`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*$`,
)

// ValidName reports whether name matches the variable name grammar.
func ValidName(name string) bool { return namePattern.MatchString(name) }

// DefaultString returns the declared default stringified, or "" if unset.
func (v Variable) DefaultString() string {
	if v.Default == nil {
		return ""
	}

	return Stringify(v.Default)
}

// fallback returns the declared default, or "" and false when none is
// declared.
func (v Variable) fallback() (any, bool) {
	if v.Default == nil {
		return "", false
	}

	return v.Default, true
}

// Stringify converts a resolved value to its display form. Maps, slices and
// structs are encoded as JSON; floats print without a trailing fraction when
// integral.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
	}

	return fmt.Sprint(v)
}

