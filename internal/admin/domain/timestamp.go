// Package domain holds the pure attendance rules: how stored time values are
// read, how worked hours are rendered and how employee identifiers are
// normalized. Nothing here talks to the store.
package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// TimeKind tells which encoding a stored time value used.
type TimeKind int

const (
	KindUnparseable TimeKind = iota
	KindNative
	KindEpoch
	KindString
)

func (k TimeKind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindEpoch:
		return "epoch"
	case KindString:
		return "string"
	default:
		return "unparseable"
	}
}

// TimeValue is a check-in or check-out value as found in a document,
// classified once so callers never inspect raw values again.
type TimeValue struct {
	kind    TimeKind
	native  time.Time
	seconds int64
	nanos   int64
	text    string
	raw     any
}

func NativeTime(t time.Time) TimeValue {
	return TimeValue{kind: KindNative, native: t, raw: t}
}

func EpochSeconds(seconds, nanos int64) TimeValue {
	return TimeValue{kind: KindEpoch, seconds: seconds, nanos: nanos}
}

func TimeString(s string) TimeValue {
	return TimeValue{kind: KindString, text: s, raw: s}
}

// Unparseable keeps the original value so it can still be displayed.
func Unparseable(raw any) TimeValue {
	return TimeValue{kind: KindUnparseable, raw: raw}
}

func (v TimeValue) Kind() TimeKind {
	return v.kind
}

// Present reports whether the document carried a value at all.
func (v TimeValue) Present() bool {
	switch v.kind {
	case KindUnparseable:
		return v.raw != nil
	case KindString:
		return v.text != ""
	default:
		return true
	}
}

// String renders the raw value the way it was stored.
func (v TimeValue) String() string {
	switch v.kind {
	case KindString:
		return v.text
	case KindEpoch:
		return fmt.Sprintf("{seconds: %d, nanoseconds: %d}", v.seconds, v.nanos)
	case KindNative:
		return v.native.String()
	}
	if v.raw == nil {
		return ""
	}
	return fmt.Sprint(v.raw)
}

type timeConverter interface {
	ToTime() time.Time
}

// ClassifyTime resolves a raw document value into a TimeValue.
func ClassifyTime(raw any) TimeValue {
	switch v := raw.(type) {
	case nil:
		return Unparseable(nil)
	case TimeValue:
		return v
	case timeConverter:
		return NativeTime(v.ToTime())
	case time.Time:
		return NativeTime(v)
	case *time.Time:
		if v == nil {
			return Unparseable(nil)
		}
		return NativeTime(*v)
	case string:
		return TimeString(v)
	case map[string]any:
		if tv, ok := epochFromMap(v); ok {
			return tv
		}
	}
	return Unparseable(raw)
}

// epochFromMap accepts both the stored shape {seconds, nanoseconds} and the
// underscore-prefixed shape some exporters write.
func epochFromMap(m map[string]any) (TimeValue, bool) {
	secRaw, ok := m["seconds"]
	nanoKey := "nanoseconds"
	if !ok {
		secRaw, ok = m["_seconds"]
		nanoKey = "_nanoseconds"
	}
	if !ok {
		return TimeValue{}, false
	}
	seconds, ok := toInt64(secRaw)
	if !ok {
		return TimeValue{}, false
	}
	var nanos int64
	if n, present := m[nanoKey]; present && n != nil {
		if nanos, ok = toInt64(n); !ok {
			return TimeValue{}, false
		}
	}
	tv := EpochSeconds(seconds, nanos)
	tv.raw = m
	return tv, true
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case float32:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	}
	return 0, false
}

// Instant is milliseconds since the Unix epoch.
type Instant int64

func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i))
}

// Layouts tried for strings that carry an explicit offset.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

// Layouts tried for strings without an offset; they are read in the
// normalizer's location.
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"15:04:05.999999999",
	"15:04",
}

// Normalizer turns TimeValues into Instants. Location applies to strings
// without an offset; nil means UTC.
type Normalizer struct {
	Location *time.Location
}

func (n Normalizer) location() *time.Location {
	if n.Location == nil {
		return time.UTC
	}
	return n.Location
}

// Normalize returns the instant and whether the value could be read.
func (n Normalizer) Normalize(v TimeValue) (Instant, bool) {
	switch v.kind {
	case KindNative:
		return Instant(v.native.UnixMilli()), true
	case KindEpoch:
		return Instant(v.seconds*1000 + floorDiv(v.nanos, 1_000_000)), true
	case KindString:
		t, ok := n.parse(v.text)
		if !ok {
			return 0, false
		}
		return Instant(t.UnixMilli()), true
	}
	return 0, false
}

func (n Normalizer) parse(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if !strings.Contains(s, "T") {
		s = strings.Replace(s, " ", "T", 1)
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, n.location()); err == nil {
			return t, true
		}
	}
	// Date-only strings mean midnight UTC.
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// FormatClock renders the time of day as "03:04 PM". Values that cannot be
// read are returned as stored.
func (n Normalizer) FormatClock(v TimeValue) string {
	instant, ok := n.Normalize(v)
	if !ok {
		return v.String()
	}
	return instant.Time().In(n.location()).Format("03:04 PM")
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
