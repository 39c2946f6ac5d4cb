package jira

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{"null", "bool", "number", "string", "array", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a decoded JSON document. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	n    json.Number
	s    string
	arr  []Value
	obj  map[string]Value
}

// Null returns the null Value.
func Null() Value { return Value{} }

// BoolValue wraps b.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// NumberValue wraps n.
func NumberValue(n json.Number) Value { return Value{kind: KindNumber, n: n} }

// StringValue wraps s.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// ArrayValue wraps items.
func ArrayValue(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// ObjectValue wraps fields.
func ObjectValue(fields map[string]Value) Value {
	if fields == nil {
		fields = map[string]Value{}
	}
	return Value{kind: KindObject, obj: fields}
}

// ParseValue decodes raw JSON into a Value. Empty input yields null.
func ParseValue(raw []byte) (Value, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Null(), nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber() // keep integer precision for ids and counters

	var v any
	if err := dec.Decode(&v); err != nil {
		return Value{}, &DeserializationError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Value{}, &DeserializationError{Err: errors.New("trailing data after JSON document")}
	}
	return fromAny(v)
}

// fromAny converts the output of a UseNumber decoder into a Value.
func fromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return BoolValue(x), nil
	case json.Number:
		return NumberValue(x), nil
	case string:
		return StringValue(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			item, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			items[i] = item
		}
		return ArrayValue(items...), nil
	case map[string]any:
		fields := make(map[string]Value, len(x))
		for k, e := range x {
			item, err := fromAny(e)
			if err != nil {
				return Value{}, err
			}
			fields[k] = item
		}
		return ObjectValue(fields), nil
	default:
		return Value{}, &DeserializationError{Err: fmt.Errorf("unsupported JSON type %T", v)}
	}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is JSON null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean held by v.
func (v Value) Bool() (bool, error) {
	if v.kind != KindBool {
		return false, v.kindError(KindBool)
	}
	return v.b, nil
}

// Number returns the number held by v in its textual form.
func (v Value) Number() (json.Number, error) {
	if v.kind != KindNumber {
		return "", v.kindError(KindNumber)
	}
	return v.n, nil
}

// Int64 returns the number held by v as an int64.
func (v Value) Int64() (int64, error) {
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	i, err := n.Int64()
	if err != nil {
		return 0, &DeserializationError{Err: err}
	}
	return i, nil
}

// Float64 returns the number held by v as a float64.
func (v Value) Float64() (float64, error) {
	n, err := v.Number()
	if err != nil {
		return 0, err
	}
	f, err := n.Float64()
	if err != nil {
		return 0, &DeserializationError{Err: err}
	}
	return f, nil
}

// Str returns the string held by v.
func (v Value) Str() (string, error) {
	if v.kind != KindString {
		return "", v.kindError(KindString)
	}
	return v.s, nil
}

// Array returns the items held by v.
func (v Value) Array() ([]Value, error) {
	if v.kind != KindArray {
		return nil, v.kindError(KindArray)
	}
	return v.arr, nil
}

// Object returns the fields held by v.
func (v Value) Object() (map[string]Value, error) {
	if v.kind != KindObject {
		return nil, v.kindError(KindObject)
	}
	return v.obj, nil
}

// Len returns the number of items or fields; scalars have length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindArray:
		return len(v.arr)
	case KindObject:
		return len(v.obj)
	default:
		return 0
	}
}

// Keys returns the object keys of v in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindObject {
		return nil
	}
	keys := make([]string, 0, len(v.obj))
	for k := range v.obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the field key of an object and whether it exists.
func (v Value) Lookup(key string) (Value, bool) {
	if v.kind != KindObject {
		return Value{}, false
	}
	f, ok := v.obj[key]
	return f, ok
}

// Get returns the field key of an object.
func (v Value) Get(key string) (Value, error) {
	if v.kind != KindObject {
		return Value{}, &DeserializationError{Key: key, Err: fmt.Errorf("expected object, got %s", v.kind)}
	}
	f, ok := v.obj[key]
	if !ok {
		return Value{}, &DeserializationError{Key: key, Err: errors.New("missing key")}
	}
	return f, nil
}

// Index returns the i-th item of an array.
func (v Value) Index(i int) (Value, error) {
	key := "[" + strconv.Itoa(i) + "]"
	if v.kind != KindArray {
		return Value{}, &DeserializationError{Key: key, Err: fmt.Errorf("expected array, got %s", v.kind)}
	}
	if i < 0 || i >= len(v.arr) {
		return Value{}, &DeserializationError{Key: key, Err: errors.New("index out of range")}
	}
	return v.arr[i], nil
}

// Path walks nested objects by key, e.g. Path("avatarUrls", "48x48").
func (v Value) Path(keys ...string) (Value, error) {
	cur := v
	for i, k := range keys {
		next, err := cur.Get(k)
		if err != nil {
			var de *DeserializationError
			if errors.As(err, &de) {
				de.Key = joinPath(keys[:i+1])
			}
			return Value{}, err
		}
		cur = next
	}
	return cur, nil
}

// StringAt is Path followed by Str.
func (v Value) StringAt(keys ...string) (string, error) {
	f, err := v.Path(keys...)
	if err != nil {
		return "", err
	}
	s, err := f.Str()
	if err != nil {
		return "", &DeserializationError{Key: joinPath(keys), Err: errors.Unwrap(err)}
	}
	return s, nil
}

// Interface converts v back into plain Go values (map[string]any, []any, json.Number, ...).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindObject:
		out := make(map[string]any, len(v.obj))
		for k, e := range v.obj {
			out[k] = e.Interface()
		}
		return out
	default:
		return nil
	}
}

// Decode re-encodes v and unmarshals it into out.
func (v Value) Decode(out any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &DeserializationError{Err: err}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &DeserializationError{Err: err}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(raw []byte) error {
	parsed, err := ParseValue(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Value) kindError(want Kind) error {
	return &DeserializationError{Err: fmt.Errorf("expected %s, got %s", want, v.kind)}
}

func joinPath(keys []string) string {
	var b bytes.Buffer
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(k)
	}
	return b.String()
}
