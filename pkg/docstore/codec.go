package docstore

import (
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Encode converts a bson-tagged struct into a field map. The _id key is
// dropped; ids travel separately.
func Encode(v any) (map[string]any, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	delete(m, "_id")
	return map[string]any(m), nil
}

// Decode fills out (a pointer to a bson-tagged struct) from doc, exposing
// the document id under _id.
func Decode(doc *Document, out any) error {
	fields := make(bson.M, len(doc.Fields)+1)
	for k, v := range doc.Fields {
		fields[k] = v
	}
	fields["_id"] = doc.ID

	raw, err := bson.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document %s: %w", doc.ID, err)
	}
	return nil
}

// normalize gives a Go value the shape it has after a round trip through the
// store, so that in-memory comparisons match what Mongo would see.
func normalize(v any) (any, error) {
	raw, err := bson.Marshal(bson.M{"v": v})
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m["v"], nil
}

// String reads a string field, returning "" when absent or mistyped
func String(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// Int reads any numeric field as int
func Int(m map[string]any, key string) (int, bool) {
	switch n := m[key].(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	}
	return 0, false
}

// Bool reads a boolean field
func Bool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

// Map reads a nested document in any of the shapes the driver produces
func Map(m map[string]any, key string) (map[string]any, bool) {
	return AsMap(m[key])
}

// AsMap converts v to a plain map when it is a document
func AsMap(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case primitive.M:
		return map[string]any(t), true
	case primitive.D:
		return t.Map(), true
	}
	return nil, false
}

// Slice reads an array field
func Slice(m map[string]any, key string) ([]any, bool) {
	return AsSlice(m[key])
}

// AsSlice converts v to a plain slice when it is an array
func AsSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case primitive.A:
		return []any(t), true
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}

// StringSlice reads an array of strings, skipping non-string elements
func StringSlice(m map[string]any, key string) []string {
	items, ok := Slice(m, key)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringMap reads a nested document of string values
func StringMap(m map[string]any, key string) map[string]string {
	nested, ok := Map(m, key)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(nested))
	for k, v := range nested {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
