package variable

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Result is the outcome of [ValidateValue].
type Result struct {
	Valid  bool     `json:"valid"            yaml:"valid"`
	Errors []string `json:"errors,omitempty" yaml:"errors,omitempty"`
}

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9\s\-().]{7,20}$`)
)

// dateLayouts are the accepted textual forms of a date value.
var dateLayouts = []string{
	time.DateOnly,
	time.DateTime,
	time.RFC3339,
	"2006-01-02 15:04",
	"01/02/2006",
}

// ValidateValue checks value against the declaration v.
//
// The required check runs first; an empty value stops there. Then the format
// check for v.Type runs, followed by every rule in declaration order. All
// failures are collected.
func ValidateValue(v Variable, value any) Result {
	var errs []string

	fail := func(rule Rule, format string, args ...any) {
		if rule.Message != "" {
			errs = append(errs, rule.Message)

			return
		}

		errs = append(errs, v.Name+" "+fmt.Sprintf(format, args...))
	}

	if isEmpty(value) {
		if v.Required {
			fail(Rule{}, "is required")
		}

		for _, rule := range v.Rules {
			if rule.Type == RuleRequired && !v.Required {
				fail(rule, "is required")
			}
		}

		return Result{Valid: len(errs) == 0, Errors: errs}
	}

	if msg := checkFormat(v, value); msg != "" {
		fail(Rule{}, "%s", msg)
	}

	for _, rule := range v.Rules {
		if msg := checkRule(rule, value); msg != "" {
			fail(rule, "%s", msg)
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func isEmpty(value any) bool {
	switch x := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}

	rv := reflect.ValueOf(value)

	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

// checkFormat returns a description of the format violation, or "".
func checkFormat(v Variable, value any) string {
	s := Stringify(value)

	switch v.Type {
	case TypeEmail:
		if !emailPattern.MatchString(s) {
			return "must be a valid email address"
		}

	case TypePhone:
		if !phonePattern.MatchString(s) || countDigits(s) < 7 {
			return "must be a valid phone number"
		}

	case TypeURL:
		u, err := url.Parse(s)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return "must be a valid URL"
		}

	case TypeNumber:
		if _, ok := toFloat(value); !ok {
			return "must be a number"
		}

	case TypeDate:
		if _, ok := value.(time.Time); ok {
			return ""
		}

		if !slices.ContainsFunc(dateLayouts, func(layout string) bool {
			_, err := time.Parse(layout, s)

			return err == nil
		}) {
			return "must be a valid date"
		}

	case TypeBoolean:
		if _, ok := value.(bool); ok {
			return ""
		}

		if _, err := strconv.ParseBool(s); err != nil {
			return "must be true or false"
		}

	case TypeSelect:
		if len(v.Options) > 0 && !slices.Contains(v.Options, s) {
			return fmt.Sprintf("must be one of %s", strings.Join(v.Options, ", "))
		}

	case TypeMultiselect:
		if len(v.Options) == 0 {
			return ""
		}

		for _, item := range multiValues(value) {
			if !slices.Contains(v.Options, item) {
				return fmt.Sprintf("contains %q, not one of %s",
					item, strings.Join(v.Options, ", "))
			}
		}
	}

	return ""
}

func countDigits(s string) int {
	n := 0

	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}

	return n
}

func multiValues(value any) []string {
	if s, ok := value.(string); ok {
		var out []string

		for part := range strings.SplitSeq(s, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}

		return out
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []string{Stringify(value)}
	}

	out := make([]string, rv.Len())
	for i := range rv.Len() {
		out[i] = Stringify(rv.Index(i).Interface())
	}

	return out
}

// checkRule returns a description of the rule violation, or "".
func checkRule(rule Rule, value any) string {
	switch rule.Type {
	case RuleRequired:
		return ""

	case RuleMinLength:
		n, ok := toInt(rule.Value)
		if !ok {
			return "has an invalid min_length rule"
		}

		if utf8.RuneCountInString(Stringify(value)) < n {
			return fmt.Sprintf("must be at least %d characters", n)
		}

	case RuleMaxLength:
		n, ok := toInt(rule.Value)
		if !ok {
			return "has an invalid max_length rule"
		}

		if utf8.RuneCountInString(Stringify(value)) > n {
			return fmt.Sprintf("must be at most %d characters", n)
		}

	case RulePattern:
		src, _ := rule.Value.(string)

		re, err := regexp.Compile(src)
		if err != nil {
			return "has an invalid pattern rule"
		}

		if !re.MatchString(Stringify(value)) {
			return fmt.Sprintf("must match pattern %s", src)
		}

	case RuleRange:
		lo, hi, ok := toRange(rule.Value)
		if !ok {
			return "has an invalid range rule"
		}

		f, ok := toFloat(value)
		if !ok {
			return "must be a number"
		}

		if f < lo || f > hi {
			return fmt.Sprintf("must be between %s and %s",
				Stringify(lo), Stringify(hi))
		}

	case RuleExpression:
		src, _ := rule.Value.(string)

		program, err := compileExpression(src)
		if err != nil {
			return "has an invalid expression rule"
		}

		out, err := expr.Run(program, map[string]any{"value": value})
		if err != nil {
			return fmt.Sprintf("could not evaluate %s", src)
		}

		if ok, _ := out.(bool); !ok {
			return fmt.Sprintf("must satisfy %s", src)
		}

	default:
		return fmt.Sprintf("has unknown rule %q", rule.Type)
	}

	return ""
}

func compileExpression(src string) (*vm.Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errors.New("empty expression")
	}

	return expr.Compile(src, expr.AsBool())
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || f != math.Trunc(f) || f < 0 {
		return 0, false
	}

	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)

		return f, err == nil
	default:
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
}

// toRange extracts bounds from a [Range], a map with "min"/"max" keys, or a
// two-element slice. Missing bounds are infinite.
func toRange(v any) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)

	bound := func(x any, dst *float64) bool {
		if x == nil {
			return true
		}

		f, ok := toFloat(x)
		if ok {
			*dst = f
		}

		return ok
	}

	switch r := v.(type) {
	case Range:
		if r.Min != nil {
			lo = *r.Min
		}

		if r.Max != nil {
			hi = *r.Max
		}

		return lo, hi, lo <= hi

	case *Range:
		if r == nil {
			return lo, hi, false
		}

		return toRange(*r)

	case map[string]any:
		ok = bound(r["min"], &lo) && bound(r["max"], &hi)

		return lo, hi, ok && lo <= hi

	case []any:
		if len(r) != 2 {
			return lo, hi, false
		}

		ok = bound(r[0], &lo) && bound(r[1], &hi)

		return lo, hi, ok && lo <= hi

	default:
		return lo, hi, false
	}
}

// CheckDeclaration reports every configuration problem with v. A nil result
// means the declaration is usable.
func CheckDeclaration(v Variable) []error {
	var errs []error

	attr := slog.String("variable", v.Name)

	if !ValidName(v.Name) {
		errs = append(errs, ErrInvalidName.With(attr))
	}

	if !v.Type.Valid() {
		errs = append(errs, ErrUnknownType.With(attr,
			slog.String("type", string(v.Type))))
	}

	if !v.Source.Valid() {
		errs = append(errs, ErrUnknownSource.With(attr,
			slog.String("source", string(v.Source))))
	}

	if v.Source == SourceExternalAPI {
		u, err := url.Parse(v.SourceConfig.APIEndpoint)

		switch {
		case v.SourceConfig.APIEndpoint == "":
			errs = append(errs, ErrMissingEndpoint.With(attr))
		case err != nil:
			errs = append(errs, ErrMissingEndpoint.Wrap(err).With(attr))
		case u.Scheme == "" || u.Host == "":
			errs = append(errs, ErrMissingEndpoint.Wrap(
				fmt.Errorf("endpoint %q is not absolute", v.SourceConfig.APIEndpoint)).
				With(attr))
		}
	}

	if (v.Type == TypeSelect || v.Type == TypeMultiselect) && len(v.Options) == 0 {
		errs = append(errs, ErrMissingOptions.With(attr))
	}

	for i, rule := range v.Rules {
		ra := slog.Int("rule", i)

		switch rule.Type {
		case RuleRequired:

		case RuleMinLength, RuleMaxLength:
			if _, ok := toInt(rule.Value); !ok {
				errs = append(errs, ErrInvalidRuleValue.With(attr, ra,
					slog.String("type", string(rule.Type))))
			}

		case RulePattern:
			src, _ := rule.Value.(string)
			if _, err := regexp.Compile(src); err != nil || src == "" {
				if err == nil {
					err = errors.New("empty pattern")
				}

				errs = append(errs, ErrInvalidPattern.Wrap(err).With(attr, ra))
			}

		case RuleRange:
			if _, _, ok := toRange(rule.Value); !ok {
				errs = append(errs, ErrInvalidRuleValue.With(attr, ra,
					slog.String("type", string(rule.Type))))
			}

		case RuleExpression:
			src, _ := rule.Value.(string)
			if _, err := compileExpression(src); err != nil {
				errs = append(errs, ErrInvalidExpr.Wrap(err).With(attr, ra))
			}

		default:
			errs = append(errs, ErrUnknownRule.With(attr, ra,
				slog.String("type", string(rule.Type))))
		}
	}

	return errs
}
