package docstore

import (
	"encoding/json"
	"fmt"
	"time"
)

// DecodeTimestamp converts the serialized forms a stored timestamp can take
// into a time.Time. The recognized shapes are closed:
//
//   - time.Time (in-process, never round-tripped)
//   - map with "seconds" and optional "nanoseconds"/"nanos" keys
//   - epoch numbers (milliseconds when large enough, seconds otherwise)
//   - RFC3339 / RFC3339Nano / "2006-01-02" strings
//
// Anything else is an error; callers decide the fallback.
func DecodeTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case map[string]any:
		secs, ok := numberField(t, "seconds")
		if !ok {
			return time.Time{}, fmt.Errorf("timestamp map without seconds: %v", v)
		}
		nanos, ok := numberField(t, "nanoseconds")
		if !ok {
			nanos, _ = numberField(t, "nanos")
		}
		return time.Unix(secs, nanos).UTC(), nil
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparsable timestamp string %q", t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("unparsable timestamp number %q", t)
		}
		return epochToTime(f), nil
	case float64:
		return epochToTime(t), nil
	case int64:
		return epochToTime(float64(t)), nil
	case int:
		return epochToTime(float64(t)), nil
	default:
		return time.Time{}, fmt.Errorf("unrecognized timestamp shape %T", v)
	}
}

// epochToTime treats values above 1e11 as epoch milliseconds, everything
// else as epoch seconds. The cutoff (year 5138 in seconds, 1973 in millis)
// keeps both interpretations unambiguous for realistic dates.
func epochToTime(f float64) time.Time {
	if f > 1e11 || f < -1e11 {
		return time.UnixMilli(int64(f)).UTC()
	}
	return time.Unix(int64(f), 0).UTC()
}

func numberField(m map[string]any, key string) (int64, bool) {
	raw, ok := m[key]
	if !ok {
		return 0, false
	}
	switch n := raw.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

// EncodeTimestamp converts a time.Time into the canonical stored form:
// epoch milliseconds. Numbers keep range predicates and ordering sound on
// every backend.
func EncodeTimestamp(t time.Time) int64 {
	return t.UnixMilli()
}
