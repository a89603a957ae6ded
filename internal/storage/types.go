package storage

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StringList is a list of strings stored as a JSON array in a text column.
type StringList []string

// Value implements the driver.Valuer interface for database storage.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface. Anything other than a JSON
// array of strings is rejected.
func (s *StringList) Scan(value interface{}) error {
	data, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 || string(data) == "null" {
		*s = StringList{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("scan string list: %w", err)
	}
	*s = out
	return nil
}

// MarshalJSON renders a nil list as [] rather than null.
func (s StringList) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Normalized returns a trimmed copy with blanks and duplicates removed,
// preserving first-seen order.
func (s StringList) Normalized() StringList {
	out := make(StringList, 0, len(s))
	seen := make(map[string]bool, len(s))
	for _, v := range s {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// JSONDoc is an opaque JSON document stored as text. It must be a JSON
// object or array; scalars are rejected on both read and write.
type JSONDoc json.RawMessage

// Value implements the driver.Valuer interface. An empty document is NULL.
func (d JSONDoc) Value() (driver.Value, error) {
	if len(d) == 0 {
		return nil, nil
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return string(d), nil
}

// Scan implements the sql.Scanner interface.
func (d *JSONDoc) Scan(value interface{}) error {
	if value == nil {
		*d = nil
		return nil
	}
	data, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("scan json document: %w", err)
	}
	doc := JSONDoc(append([]byte(nil), data...))
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("scan json document: %w", err)
	}
	*d = doc
	return nil
}

// MarshalJSON returns the raw document, or null when empty.
func (d JSONDoc) MarshalJSON() ([]byte, error) {
	if len(d) == 0 {
		return []byte("null"), nil
	}
	return d, nil
}

// UnmarshalJSON stores a copy of data. JSON null leaves the document empty.
func (d *JSONDoc) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*d = nil
		return nil
	}
	*d = append((*d)[:0], data...)
	return nil
}

// Validate checks that the document is a JSON object or array.
func (d JSONDoc) Validate() error {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 {
		return nil
	}
	if !json.Valid(trimmed) {
		return errors.New("invalid JSON")
	}
	if trimmed[0] != '{' && trimmed[0] != '[' {
		return errors.New("JSON document must be an object or array")
	}
	return nil
}

// Decode unmarshals the document into dst. An empty document leaves dst untouched.
func (d JSONDoc) Decode(dst interface{}) error {
	if len(d) == 0 {
		return nil
	}
	return json.Unmarshal(d, dst)
}

// MustJSONDoc encodes v as a JSONDoc, returning nil if v cannot be encoded.
func MustJSONDoc(v interface{}) JSONDoc {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return JSONDoc(data)
}

// Condition is one operator set applied to a single field. A bare JSON
// scalar decodes as an equality test and a bare array as a membership test.
type Condition struct {
	Eq       interface{}   `json:"eq,omitempty"`
	Ne       interface{}   `json:"ne,omitempty"`
	Contains string        `json:"contains,omitempty"`
	In       []interface{} `json:"in,omitempty"`
	Exists   *bool         `json:"exists,omitempty"`
}

var conditionOperators = map[string]bool{"eq": true, "ne": true, "contains": true, "in": true, "exists": true}

// UnmarshalJSON accepts the operator object form or a shorthand scalar/array.
func (c *Condition) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty condition")
	}

	switch trimmed[0] {
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return err
		}
		if len(raw) == 0 {
			return errors.New("condition has no operators")
		}
		for op := range raw {
			if !conditionOperators[op] {
				return fmt.Errorf("unknown condition operator %q", op)
			}
		}
		type plain Condition
		var p plain
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return err
		}
		*c = Condition(p)
	case '[':
		var in []interface{}
		if err := json.Unmarshal(trimmed, &in); err != nil {
			return err
		}
		*c = Condition{In: in}
	default:
		var eq interface{}
		if err := json.Unmarshal(trimmed, &eq); err != nil {
			return err
		}
		if eq == nil {
			return errors.New("condition value must not be null")
		}
		*c = Condition{Eq: eq}
	}
	return nil
}

// Matches reports whether value satisfies every operator in c. present is
// false when the field was absent from the source object.
func (c Condition) Matches(value interface{}, present bool) bool {
	if c.Exists != nil && *c.Exists != (present && value != nil) {
		return false
	}
	if c.Eq != nil && !looseEqual(value, c.Eq) {
		return false
	}
	if c.Ne != nil && looseEqual(value, c.Ne) {
		return false
	}
	if c.Contains != "" {
		if !present || !strings.Contains(strings.ToLower(scalarString(value)), strings.ToLower(c.Contains)) {
			return false
		}
	}
	if len(c.In) > 0 {
		found := false
		for _, candidate := range c.In {
			if looseEqual(value, candidate) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Predicate maps a field path (relative to the element being filtered) to
// the condition it must satisfy. An empty predicate matches everything.
type Predicate map[string]Condition

// Fields returns the predicate's field names in sorted order.
func (p Predicate) Fields() []string {
	fields := make([]string, 0, len(p))
	for f := range p {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

// Value implements the driver.Valuer interface.
func (p Predicate) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	data, err := json.Marshal(map[string]Condition(p))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface, validating operators on read.
func (p *Predicate) Scan(value interface{}) error {
	data, err := scanBytes(value)
	if err != nil {
		return fmt.Errorf("scan predicate: %w", err)
	}
	return p.decode(data)
}

// UnmarshalJSON decodes and validates a predicate document.
func (p *Predicate) UnmarshalJSON(data []byte) error {
	return p.decode(data)
}

// MarshalJSON renders an empty predicate as {}.
func (p Predicate) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]Condition(p))
}

func (p *Predicate) decode(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		*p = Predicate{}
		return nil
	}
	var m map[string]Condition
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return fmt.Errorf("invalid when_conditions: %w", err)
	}
	if m == nil {
		m = map[string]Condition{}
	}
	*p = m
	return nil
}

func scanBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("cannot scan %T into JSON column", value)
	}
}

func looseEqual(a, b interface{}) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return strings.EqualFold(scalarString(a), scalarString(b))
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func scalarString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
