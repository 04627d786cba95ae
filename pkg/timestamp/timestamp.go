// Package timestamp converts between the representations a point in time can
// take once it has been persisted: native time.Time, Mongo date/timestamp
// values, and the plain {seconds, nanoseconds} shape used for cached copies.
package timestamp

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Plain is the serialization-safe shape of a point in time
type Plain struct {
	Seconds     int64 `json:"seconds" bson:"seconds"`
	Nanoseconds int32 `json:"nanoseconds" bson:"nanoseconds"`
}

// From converts t without losing precision
func From(t time.Time) Plain {
	return Plain{Seconds: t.Unix(), Nanoseconds: int32(t.Nanosecond())}
}

// Time returns the UTC instant represented by p
func (p Plain) Time() time.Time {
	return time.Unix(p.Seconds, int64(p.Nanoseconds)).UTC()
}

// Map returns p as a generic field map, the shape it takes inside documents
func (p Plain) Map() map[string]any {
	return map[string]any{"seconds": p.Seconds, "nanoseconds": p.Nanoseconds}
}

// Parse interprets v as a point in time. It returns false for nil and for any
// value that carries no recognizable time.
func Parse(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t.UTC(), true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	case primitive.DateTime:
		return t.Time().UTC(), true
	case primitive.Timestamp:
		return time.Unix(int64(t.T), 0).UTC(), true
	case Plain:
		return t.Time(), true
	case *Plain:
		if t == nil {
			return time.Time{}, false
		}
		return t.Time(), true
	case primitive.M:
		return parseMap(map[string]any(t))
	case map[string]any:
		return parseMap(t)
	case primitive.D:
		return parseMap(t.Map())
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed.UTC(), true
	}
	return time.Time{}, false
}

// ParsePtr is Parse for optional fields
func ParsePtr(v any) *time.Time {
	t, ok := Parse(v)
	if !ok {
		return nil
	}
	return &t
}

func parseMap(m map[string]any) (time.Time, bool) {
	secRaw, ok := m["seconds"]
	if !ok {
		secRaw, ok = m["_seconds"]
	}
	if !ok {
		return time.Time{}, false
	}
	sec, ok := toInt64(secRaw)
	if !ok {
		return time.Time{}, false
	}

	nsRaw, ok := m["nanoseconds"]
	if !ok {
		nsRaw = m["_nanoseconds"]
	}
	ns, _ := toInt64(nsRaw)
	return time.Unix(sec, ns).UTC(), true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return int64(n), true
	}
	return 0, false
}

// Normalize walks a document value and rewrites every nested time-like value
// into its Plain map form. Maps and slices are copied, never mutated.
func Normalize(v any) any {
	switch t := v.(type) {
	case time.Time, *time.Time, primitive.DateTime, primitive.Timestamp, Plain, *Plain:
		parsed, ok := Parse(t)
		if !ok {
			return nil
		}
		return From(parsed).Map()
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Normalize(val)
		}
		return out
	case primitive.M:
		return Normalize(map[string]any(t))
	case primitive.D:
		return Normalize(t.Map())
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Normalize(val)
		}
		return out
	case primitive.A:
		return Normalize([]any(t))
	}
	return v
}
