/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"fmt"

	"github.com/go-openapi/strfmt"
	"gopkg.in/yaml.v3"

	"github.com/rowkit/rowkit/errors"
	"github.com/rowkit/rowkit/store"
)

// declDoc is the YAML declaration format consumed by LoadSchema. It describes
// logical fields, not flat columns; a datetime field here becomes seven wire
// columns after registration.
type declDoc struct {
	Tables []tableDecl `yaml:"tables"`
}

type tableDecl struct {
	Name   string      `yaml:"name"`
	Fields []fieldDecl `yaml:"fields"`
}

type fieldDecl struct {
	Name    string `yaml:"name"`
	Type    string `yaml:"type"`
	Ref     string `yaml:"ref"`
	Blank   bool   `yaml:"blank"`
	Default any    `yaml:"default"`
	Choices []any  `yaml:"choices"`
}

// LoadSchema builds a Registry from a YAML schema declaration. Tables register
// in document order, so a foreign field may only reference a table declared
// before it.
func LoadSchema(data []byte) (*Registry, error) {
	var doc declDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing schema document: %w", err)
	}
	if len(doc.Tables) == 0 {
		return nil, errors.NewConfigError("", "", "schema document declares no tables")
	}

	reg := NewRegistry()
	for _, td := range doc.Tables {
		fields := make([]Field, 0, len(td.Fields))
		for _, fd := range td.Fields {
			f, err := fd.field(td.Name, reg)
			if err != nil {
				return nil, err
			}
			fields = append(fields, f)
		}
		if _, err := reg.Register(td.Name, fields...); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (fd fieldDecl) field(table string, reg *Registry) (Field, error) {
	var opts []Option
	if fd.Blank {
		opts = append(opts, Blank())
	}

	if fd.Type == "foreign" {
		if fd.Default != nil || fd.Choices != nil {
			return Field{}, errors.NewConfigError(table, fd.Name, "foreign fields take no default or choices")
		}
		ref, ok := reg.Table(fd.Ref)
		if !ok {
			return Field{}, errors.NewConfigError(table, fd.Name,
				fmt.Sprintf("foreign field references undeclared table %q", fd.Ref))
		}
		return Foreign(fd.Name, ref, opts...), nil
	}

	if fd.Default != nil {
		def, err := declValue(table, fd.Name, fd.Type, fd.Default)
		if err != nil {
			return Field{}, err
		}
		opts = append(opts, Default(def))
	}
	if fd.Choices != nil {
		choices := make([]any, 0, len(fd.Choices))
		for _, c := range fd.Choices {
			v, err := declValue(table, fd.Name, fd.Type, c)
			if err != nil {
				return Field{}, err
			}
			choices = append(choices, v)
		}
		opts = append(opts, Choices(choices...))
	}

	switch fd.Type {
	case store.TypeInteger:
		return Int(fd.Name, opts...), nil
	case store.TypeFloat:
		return Float(fd.Name, opts...), nil
	case store.TypeString:
		return String(fd.Name, opts...), nil
	case "datetime":
		return DateTime(fd.Name, opts...), nil
	case "coordinate":
		return Coordinate(fd.Name, opts...), nil
	}
	return Field{}, errors.NewConfigError(table, fd.Name,
		fmt.Sprintf("unknown field type %q", fd.Type))
}

// declValue converts a YAML literal into the field's base type. YAML numbers
// decode as int or float64, timestamps as RFC 3339 strings, and coordinates as
// two-element sequences.
func declValue(table, field, typ string, raw any) (any, error) {
	switch typ {
	case store.TypeInteger, store.TypeString:
		return raw, nil
	case store.TypeFloat:
		if n, ok := toInt64(raw); ok {
			return float64(n), nil
		}
		return raw, nil
	case "datetime":
		s, ok := raw.(string)
		if !ok {
			return nil, errors.NewConfigError(table, field, "datetime literal must be an RFC 3339 string")
		}
		dt, err := strfmt.ParseDateTime(s)
		if err != nil {
			return nil, errors.NewConfigError(table, field,
				fmt.Sprintf("invalid datetime literal %q: %v", s, err))
		}
		return dt, nil
	case "coordinate":
		pair, ok := raw.([]any)
		if !ok || len(pair) != 2 {
			return nil, errors.NewConfigError(table, field, "coordinate literal must be a two-element sequence")
		}
		ll := LatLon{}
		for i, component := range pair {
			f, ok := toFloat(component)
			if !ok {
				return nil, errors.NewConfigError(table, field, "coordinate components must be floats")
			}
			if i == 0 {
				ll.Lat = f
			} else {
				ll.Lon = f
			}
		}
		return ll, nil
	}
	return nil, errors.NewConfigError(table, field, fmt.Sprintf("unknown field type %q", typ))
}

func toFloat(v any) (float64, bool) {
	switch f := v.(type) {
	case float64:
		return f, true
	case int:
		return float64(f), true
	case int64:
		return float64(f), true
	}
	return 0, false
}
