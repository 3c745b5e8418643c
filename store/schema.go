/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package store

// Primitive column types. A Column whose Type is none of these names a
// referenced table instead (a forward type reference for a foreign key slot,
// which stores carry as an integer pk).
const (
	TypeInteger = "integer"
	TypeFloat   = "float"
	TypeString  = "string"
)

// Column is one slot in a table's flat wire layout.
type Column struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// Primitive reports whether the column holds a primitive value rather than a
// foreign pk.
func (c Column) Primitive() bool {
	switch c.Type {
	case TypeInteger, TypeFloat, TypeString:
		return true
	}
	return false
}

// TableSchema describes one table: its name and the ordered columns obtained by
// concatenating every field's slots in declaration order. Stores use it to
// bootstrap physical tables; the order must never change without a migration.
type TableSchema struct {
	Name    string   `yaml:"name"`
	Columns []Column `yaml:"columns"`
}

// Column returns the index of the named column, or -1.
func (s TableSchema) Column(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
