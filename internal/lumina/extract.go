package lumina

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/edwinlov3tt/report-ai-sub000/internal/metrics"
	"github.com/edwinlov3tt/report-ai-sub000/internal/storage"
)

// step is one parsed path segment: a key, optionally followed by [] (fan
// out over the array) or [n] (index into it).
type step struct {
	key    string
	fanOut bool
	index  int
}

func parsePath(path string) ([]step, error) {
	path = strings.TrimPrefix(strings.TrimSpace(path), "$.")
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	var steps []step
	for _, part := range strings.Split(path, ".") {
		s := step{key: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 {
			if !strings.HasSuffix(part, "]") {
				return nil, fmt.Errorf("path segment %q: missing ]", part)
			}
			s.key = part[:open]
			inner := part[open+1 : len(part)-1]
			if inner == "" {
				s.fanOut = true
			} else {
				n, err := strconv.Atoi(inner)
				if err != nil || n < 0 {
					return nil, fmt.Errorf("path segment %q: bad index", part)
				}
				s.index = n
			}
		}
		if s.key == "" && !s.fanOut && s.index < 0 {
			return nil, fmt.Errorf("path %q has an empty segment", path)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// ValidatePath reports whether path uses the supported syntax.
func ValidatePath(path string) error {
	_, err := parsePath(path)
	return err
}

// frame is a value reached by the walk plus the innermost array element it
// came from, which when_conditions are evaluated against.
type frame struct {
	value   interface{}
	element map[string]interface{}
}

// Evaluate applies an extractor to a raw order. ok is false when no value
// matched.
func Evaluate(e *storage.LuminaExtractor, raw map[string]interface{}) (interface{}, bool, error) {
	steps, err := parsePath(e.Path)
	if err != nil {
		return nil, false, err
	}

	frames := []frame{{value: raw, element: raw}}
	for _, s := range steps {
		var next []frame
		for _, f := range frames {
			v := f.value
			if s.key != "" {
				obj, ok := v.(map[string]interface{})
				if !ok {
					continue
				}
				if v, ok = obj[s.key]; !ok {
					continue
				}
			}
			switch {
			case s.fanOut:
				arr, ok := v.([]interface{})
				if !ok {
					continue
				}
				for _, el := range arr {
					elem, _ := el.(map[string]interface{})
					next = append(next, frame{value: el, element: elem})
				}
			case s.index >= 0:
				arr, ok := v.([]interface{})
				if !ok || s.index >= len(arr) {
					continue
				}
				next = append(next, frame{value: arr[s.index], element: f.element})
			default:
				next = append(next, frame{value: v, element: f.element})
			}
		}
		frames = next
	}

	var values []interface{}
	for _, f := range frames {
		if f.value == nil || !matches(e.WhenConditions, f.element) {
			continue
		}
		values = append(values, f.value)
	}
	if len(values) == 0 {
		return nil, false, nil
	}
	return aggregate(e.AggregateType, values), true, nil
}

func matches(p storage.Predicate, element map[string]interface{}) bool {
	for _, field := range p.Fields() {
		v, present := lookup(element, field)
		if !p[field].Matches(v, present) {
			return false
		}
	}
	return true
}

// lookup resolves a dotted field path inside obj.
func lookup(obj map[string]interface{}, path string) (interface{}, bool) {
	var cur interface{} = obj
	for _, key := range strings.Split(path, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if cur, ok = m[key]; !ok {
			return nil, false
		}
	}
	return cur, true
}

func aggregate(kind storage.AggregateType, values []interface{}) interface{} {
	switch kind {
	case storage.AggregateFirst:
		return values[0]
	case storage.AggregateUnique:
		seen := map[string]bool{}
		out := []interface{}{}
		for _, v := range values {
			k := fmt.Sprint(v)
			if !seen[k] {
				seen[k] = true
				out = append(out, v)
			}
		}
		return out
	case storage.AggregateSum:
		var sum float64
		for _, v := range values {
			switch n := v.(type) {
			case float64:
				sum += n
			case string:
				sum += metrics.ParseNumber(n)
			}
		}
		return sum
	case storage.AggregateJoin:
		parts := make([]string, 0, len(values))
		for _, v := range values {
			parts = append(parts, display(v))
		}
		return strings.Join(parts, ", ")
	default:
		if len(values) == 1 {
			return values[0]
		}
		return values
	}
}

func display(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
