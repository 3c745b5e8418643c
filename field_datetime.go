/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// dateTimeZero is the canonical default timestamp, carried over from the
// original schema layer's epoch.
var dateTimeZero = time.Date(1969, 12, 31, 19, 0, 0, 0, time.UTC)

var dateTimeSuffixes = [7]string{
	"_year", "_month", "_day", "_hour", "_minute", "_second", "_microsecond",
}

// dateTimeValue is the stored form of a bound timestamp. The seven slot
// components are cached at bind time so decomposition never re-derives them.
type dateTimeValue struct {
	t     time.Time
	parts [7]int64
}

func makeDateTimeValue(t time.Time) dateTimeValue {
	return dateTimeValue{
		t: t,
		parts: [7]int64{
			int64(t.Year()),
			int64(t.Month()),
			int64(t.Day()),
			int64(t.Hour()),
			int64(t.Minute()),
			int64(t.Second()),
			int64(t.Nanosecond() / 1000),
		},
	}
}

type dateTimeSpec struct {
	blank   bool
	def     time.Time
	choices []time.Time
}

func (f Field) buildDateTime(table string) (fieldSpec, error) {
	spec := &dateTimeSpec{blank: f.blank || f.defSet, def: dateTimeZero}

	if f.defSet {
		raw := f.def
		if fn, ok := raw.(func() any); ok {
			raw = fn()
			if _, ok := asTime(raw); !ok {
				return nil, errors.NewConfigError(table, f.Name, "wrong type returned by default callable")
			}
		}
		t, ok := asTime(raw)
		if !ok {
			return nil, errors.NewConfigError(table, f.Name, "wrong type for default")
		}
		spec.def = t
	}

	if f.chSet {
		spec.choices = make([]time.Time, 0, len(f.choices))
		for _, c := range f.choices {
			t, ok := asTime(c)
			if !ok {
				return nil, errors.NewConfigError(table, f.Name,
					fmt.Sprintf("wrong type for choice %v in choices", c))
			}
			spec.choices = append(spec.choices, t)
		}
	}

	if spec.blank && spec.choices != nil && !containsTime(spec.choices, spec.def) {
		return nil, errors.NewConfigError(table, f.Name, "invalid default value - not a valid choice")
	}
	return spec, nil
}

func (s *dateTimeSpec) blankAllowed() bool { return s.blank }
func (s *dateTimeSpec) defaultValue() any  { return s.def }

func (s *dateTimeSpec) bind(name string, v any) (any, error) {
	var t time.Time
	if v == nil {
		if !s.blank {
			return nil, errors.NewMissingValueError(name)
		}
		t = s.def
	} else {
		parsed, ok := asTime(v)
		if !ok {
			return nil, errors.NewTypeMismatchError(name, "time.Time", fmt.Sprintf("%T", v))
		}
		t = parsed
	}
	if s.choices != nil && !containsTime(s.choices, t) {
		return nil, errors.NewInvalidChoiceError(name, t)
	}
	return makeDateTimeValue(t), nil
}

func (s *dateTimeSpec) slots(name string) []store.Column {
	cols := make([]store.Column, len(dateTimeSuffixes))
	for i, suffix := range dateTimeSuffixes {
		cols[i] = store.Column{Name: name + suffix, Type: store.TypeInteger}
	}
	return cols
}

func (s *dateTimeSpec) decompose(stored any) ([]any, error) {
	dv, ok := stored.(dateTimeValue)
	if !ok {
		return nil, fmt.Errorf("datetime field holds %T", stored)
	}
	out := make([]any, len(dv.parts))
	for i, p := range dv.parts {
		out[i] = p
	}
	return out, nil
}

func (s *dateTimeSpec) compose(cur *store.Cursor) (any, error) {
	var parts [7]int64
	for i := range parts {
		n, err := cur.NextInt()
		if err != nil {
			return nil, err
		}
		parts[i] = n
	}
	return time.Date(
		int(parts[0]), time.Month(parts[1]), int(parts[2]),
		int(parts[3]), int(parts[4]), int(parts[5]),
		int(parts[6])*1000, time.UTC,
	), nil
}

func (s *dateTimeSpec) logical(stored any) any {
	return stored.(dateTimeValue).t
}

// asTime accepts the timestamp shapes callers hold: time.Time and the
// strfmt.DateTime wrapper used by generated API models.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case strfmt.DateTime:
		return time.Time(t), true
	case *strfmt.DateTime:
		if t == nil {
			return time.Time{}, false
		}
		return time.Time(*t), true
	}
	return time.Time{}, false
}

func containsTime(choices []time.Time, t time.Time) bool {
	for _, c := range choices {
		if c.Equal(t) {
			return true
		}
	}
	return false
}
