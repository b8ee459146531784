package growatt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies the JSON type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

// String returns the lowercase JSON type name
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Value is an opaque, read-only JSON document as returned by the Growatt API.
//
// Growatt changes field names and types without notice, so nothing here is typed.
// Lookups on the wrong kind or on missing keys return the null Value instead of
// failing. Numbers are kept as json.Number and re-encode exactly as received.
type Value struct {
	raw any
}

// ParseValue decodes a JSON document into a Value.
func ParseValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Value{}, err
	}
	// More stops at a stray ']' or '}', so demand EOF instead
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, fmt.Errorf("trailing data after JSON document")
	}
	return Value{raw: raw}, nil
}

// Kind reports the JSON type of v
func (v Value) Kind() Kind {
	switch v.raw.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case json.Number:
		return KindNumber
	case string:
		return KindString
	case []any:
		return KindArray
	case map[string]any:
		return KindObject
	default:
		return KindNull
	}
}

// IsNull reports whether v is JSON null or absent
func (v Value) IsNull() bool {
	return v.Kind() == KindNull
}

// Get returns the member named key of an object.
func (v Value) Get(key string) Value {
	if obj, ok := v.raw.(map[string]any); ok {
		return Value{raw: obj[key]}
	}
	return Value{}
}

// Has reports whether v is an object with a member named key.
func (v Value) Has(key string) bool {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return false
	}
	_, ok = obj[key]
	return ok
}

// Path follows a sequence of object keys.
func (v Value) Path(keys ...string) Value {
	cur := v
	for _, key := range keys {
		cur = cur.Get(key)
	}
	return cur
}

// Index returns the i-th element of an array.
func (v Value) Index(i int) Value {
	if arr, ok := v.raw.([]any); ok && i >= 0 && i < len(arr) {
		return Value{raw: arr[i]}
	}
	return Value{}
}

// Len returns the number of elements of an array or members of an object.
func (v Value) Len() int {
	switch typed := v.raw.(type) {
	case []any:
		return len(typed)
	case map[string]any:
		return len(typed)
	}
	return 0
}

// Items returns the elements of an array.
func (v Value) Items() []Value {
	arr, ok := v.raw.([]any)
	if !ok {
		return nil
	}
	items := make([]Value, len(arr))
	for i, item := range arr {
		items[i] = Value{raw: item}
	}
	return items
}

// Keys returns the member names of an object in sorted order.
func (v Value) Keys() []string {
	obj, ok := v.raw.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for key := range obj {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Str returns the value rendered as a string. Numbers and booleans are formatted
// as they appear in JSON; null, arrays and objects yield "".
func (v Value) Str() string {
	switch typed := v.raw.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	}
	return ""
}

// Float parses numbers and numeric strings. Growatt sends most readings as strings.
func (v Value) Float() (float64, bool) {
	var text string
	switch typed := v.raw.(type) {
	case json.Number:
		text = typed.String()
	case string:
		text = strings.TrimSpace(typed)
	default:
		return 0, false
	}
	if text == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Bool interprets JSON booleans and the strings "true"/"false".
func (v Value) Bool() (bool, bool) {
	switch typed := v.raw.(type) {
	case bool:
		return typed, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(typed))
		return b, err == nil
	}
	return false, false
}

// Interface returns the underlying decoded value: nil, bool, json.Number, string,
// []any or map[string]any. Callers must not modify it.
func (v Value) Interface() any {
	return v.raw
}

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.raw)
}

// UnmarshalJSON implements json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	parsed, err := ParseValue(data)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// String implements fmt.Stringer with the compact JSON encoding
func (v Value) String() string {
	data, err := json.Marshal(v.raw)
	if err != nil {
		return fmt.Sprintf("%v", v.raw)
	}
	return string(data)
}
