package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

type sentinel string

var (
	// ServerTimestamp is replaced with the commit time when written.
	ServerTimestamp any = sentinel("server_timestamp")
	// DeleteField removes a field in Update. Elsewhere it is dropped.
	DeleteField any = sentinel("delete_field")
)

// Timestamp is how instants are persisted: whole seconds plus the remaining
// nanoseconds.
type Timestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// TimestampOf converts t.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanoseconds: int64(t.Nanosecond())}
}

// ToTime converts back to a time.Time in UTC.
func (t Timestamp) ToTime() time.Time {
	return time.Unix(t.Seconds, t.Nanoseconds).UTC()
}

// resolve replaces sentinels, recursing into nested maps. DeleteField
// entries are reported in deleted rather than kept.
func resolve(data map[string]any, now time.Time) (out map[string]any, deleted []string) {
	out = make(map[string]any, len(data))
	for k, v := range data {
		switch v {
		case ServerTimestamp:
			out[k] = TimestampOf(now)
		case DeleteField:
			deleted = append(deleted, k)
		default:
			if nested, ok := v.(map[string]any); ok {
				inner, _ := resolve(nested, now)
				out[k] = inner
				continue
			}
			out[k] = v
		}
	}
	return out, deleted
}

// normalize turns arbitrary Go values into their JSON shape so that every
// store returns the same types: strings, float64, bool, nil, []any and
// map[string]any.
func normalize(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return decode(raw)
}

func decode(raw []byte) (map[string]any, error) {
	out := map[string]any{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

func encodeValue(v any) ([]byte, error) {
	if v == ServerTimestamp || v == DeleteField {
		return nil, fmt.Errorf("sentinel %v cannot be used in a filter", v)
	}
	return json.Marshal(v)
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	default:
		return v
	}
}

// equalValues compares two normalized values by their canonical JSON.
func equalValues(a, b any) bool {
	ra, errA := json.Marshal(a)
	rb, errB := json.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ra, rb)
}

// typeRank follows jsonb ordering: null < string < number < bool < array < object.
func typeRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 1
	case float64:
		return 2
	case bool:
		return 3
	case []any:
		return 4
	default:
		return 5
	}
}

func compareValues(a, b any) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case bool:
		bv := b.(bool)
		if av != bv {
			if !av {
				return -1
			}
			return 1
		}
	case map[string]any:
		bm, _ := b.(map[string]any)
		return compareObjects(av, bm)
	}
	return 0
}

// compareObjects orders objects key by key over the sorted union of keys,
// which puts stored timestamps in chronological order.
func compareObjects(a, b map[string]any) int {
	keys := make([]string, 0, len(a)+len(b))
	seen := map[string]bool{}
	for k := range a {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range b {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	// seconds sorts after nanoseconds alphabetically but matters more
	sort.SliceStable(keys, func(i, j int) bool { return keys[i] == "seconds" && keys[j] != "seconds" })
	for _, k := range keys {
		if c := compareValues(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}
