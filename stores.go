/*
 * Copyright © 2025 Rowkit Labs, All rights reserved.
 */

package rowkit

import (
	"fmt"
	"sync"

	"github.com/rowkit/rowkit/store"
)

// StoreSet is a thread-safe collection of named store backends. Callers that
// route tables across several stores (a primary plus an archive, say) register
// each under a key and resolve them here.
type StoreSet struct {
	mu     sync.RWMutex
	stores map[string]store.Store
}

// NewStoreSet creates an empty StoreSet.
func NewStoreSet() *StoreSet {
	return &StoreSet{stores: make(map[string]store.Store)}
}

// Register stores the provided backend under the given key.
func (ss *StoreSet) Register(key string, st store.Store) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, exists := ss.stores[key]; exists {
		return fmt.Errorf("store with key %q already registered", key)
	}
	ss.stores[key] = st
	return nil
}

// Get retrieves the backend registered under the given key.
func (ss *StoreSet) Get(key string) (store.Store, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	st, exists := ss.stores[key]
	if !exists {
		return nil, fmt.Errorf("store with key %q not found", key)
	}
	return st, nil
}

// Remove deletes the backend registered under the given key.
func (ss *StoreSet) Remove(key string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if _, exists := ss.stores[key]; !exists {
		return fmt.Errorf("store with key %q not found", key)
	}
	delete(ss.stores, key)
	return nil
}

// List returns all registered store keys.
func (ss *StoreSet) List() []string {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	keys := make([]string, 0, len(ss.stores))
	for k := range ss.stores {
		keys = append(keys, k)
	}
	return keys
}
