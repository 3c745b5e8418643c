/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package store

import "fmt"

// Cursor is a forward-only reader over one row's flat value slice. Adjacent
// fields compose themselves from contiguous runs of the same cursor, so a
// cursor is per-row, stateful, and must not be shared across rows.
type Cursor struct {
	values []any
	pos    int
}

// NewCursor returns a cursor positioned at the start of values.
func NewCursor(values []any) *Cursor {
	return &Cursor{values: values}
}

// Next consumes and returns the next flat value.
func (c *Cursor) Next() (any, error) {
	if c.pos >= len(c.values) {
		return nil, fmt.Errorf("row stream exhausted at position %d", c.pos)
	}
	v := c.values[c.pos]
	c.pos++
	return v, nil
}

// NextInt consumes the next value and requires it to be an integer slot.
func (c *Cursor) NextInt() (int64, error) {
	v, err := c.Next()
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("position %d: expected int64 slot, got %T", c.pos-1, v)
	}
	return n, nil
}

// NextFloat consumes the next value and requires it to be a float slot.
func (c *Cursor) NextFloat() (float64, error) {
	v, err := c.Next()
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("position %d: expected float64 slot, got %T", c.pos-1, v)
	}
	return f, nil
}

// NextString consumes the next value and requires it to be a string slot.
func (c *Cursor) NextString() (string, error) {
	v, err := c.Next()
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("position %d: expected string slot, got %T", c.pos-1, v)
	}
	return s, nil
}

// Remaining returns how many values have not been consumed yet.
func (c *Cursor) Remaining() int {
	return len(c.values) - c.pos
}
