/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowkit/rowkit/store/memstore"
)

func TestStoreSet(t *testing.T) {
	ss := NewStoreSet()
	primary := memstore.New()
	archive := memstore.New()

	require.NoError(t, ss.Register("primary", primary))
	require.NoError(t, ss.Register("archive", archive))

	t.Run("DuplicateKeyFails", func(t *testing.T) {
		err := ss.Register("primary", memstore.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("Get", func(t *testing.T) {
		st, err := ss.Get("primary")
		require.NoError(t, err)
		assert.Same(t, primary, st)

		_, err = ss.Get("missing")
		require.Error(t, err)
	})

	t.Run("List", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"primary", "archive"}, ss.List())
	})

	t.Run("Remove", func(t *testing.T) {
		require.NoError(t, ss.Remove("archive"))
		_, err := ss.Get("archive")
		require.Error(t, err)
		assert.Error(t, ss.Remove("archive"))
	})
}
