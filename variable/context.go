package variable

import (
	"reflect"
	"strconv"
	"strings"
)

// Context is a read-only snapshot of customer and conversation state supplied
// at render time.
type Context struct {
	Customer         map[string]any `json:"customer_data,omitempty"     yaml:"customer_data,omitempty"`
	ConversationID   string         `json:"conversation_id,omitempty"   yaml:"conversation_id,omitempty"`
	Sentiment        string         `json:"sentiment,omitempty"         yaml:"sentiment,omitempty"`
	Intent           string         `json:"intent,omitempty"            yaml:"intent,omitempty"`
	Channel          string         `json:"channel,omitempty"           yaml:"channel,omitempty"`
	InteractionCount int            `json:"interaction_count,omitempty" yaml:"interaction_count,omitempty"`
	UserID           string         `json:"user_id,omitempty"           yaml:"user_id,omitempty"`
	Extra            map[string]any `json:"extra,omitempty"             yaml:"extra,omitempty"`
}

// Map returns the conversation fields as a map suitable for dotted lookup.
// Extra entries never shadow the named fields.
func (c Context) Map() map[string]any {
	m := make(map[string]any, len(c.Extra)+7)

	for k, v := range c.Extra {
		m[k] = v
	}

	m["conversation_id"] = c.ConversationID
	m["sentiment"] = c.Sentiment
	m["intent"] = c.Intent
	m["channel"] = c.Channel
	m["interaction_count"] = c.InteractionCount
	m["user_id"] = c.UserID

	if c.Customer != nil {
		m["customer_data"] = c.Customer
	}

	return m
}

// Lookup resolves a dotted path against data. Maps are indexed by key and
// slices by decimal index. It reports false when any segment is missing or
// the final value is nil.
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	cur := data

	for seg := range strings.SplitSeq(path, ".") {
		next, ok := step(cur, seg)
		if !ok {
			return nil, false
		}

		cur = next
	}

	if cur == nil {
		return nil, false
	}

	return cur, true
}

func step(cur any, seg string) (any, bool) {
	switch c := cur.(type) {
	case nil:
		return nil, false

	case map[string]any:
		v, ok := c[seg]

		return v, ok

	case []any:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= len(c) {
			return nil, false
		}

		return c[i], true
	}

	rv := reflect.ValueOf(cur)

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}

		v := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}

		return v.Interface(), true

	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(seg)
		if err != nil || i < 0 || i >= rv.Len() {
			return nil, false
		}

		return rv.Index(i).Interface(), true

	default:
		return nil, false
	}
}
