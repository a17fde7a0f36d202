package view

import "maps"

// DataStore holds engine-level data visible to every render on the same Engine.
// SetGlobal and SetShared are aliases over one map: a later write for a key
// replaces the earlier value.
//
// Like Extensions, DataStore performs no locking.
type DataStore struct {
	values map[string]any
}

// NewDataStore returns an empty store.
func NewDataStore() *DataStore {
	return &DataStore{values: make(map[string]any)}
}

// SetGlobal stores value under key.
func (d *DataStore) SetGlobal(key string, value any) {
	d.values[key] = value
}

// SetShared stores value under key. Same store as SetGlobal.
func (d *DataStore) SetShared(key string, value any) {
	d.SetGlobal(key, value)
}

// Get returns the value stored under key.
func (d *DataStore) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Len returns the number of stored keys.
func (d *DataStore) Len() int { return len(d.values) }

// merge returns a fresh map holding the store overlaid with local (local wins).
// Neither input is modified.
func (d *DataStore) merge(local map[string]any) map[string]any {
	out := make(map[string]any, len(d.values)+len(local))
	maps.Copy(out, d.values)
	maps.Copy(out, local)
	return out
}
