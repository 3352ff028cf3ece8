package models

import "sort"

// Capability tag keys applied by the tagging pass so downstream passes can
// recognize synthesized and special members without re-running synthesis.
const (
	TagStoreHandle     = "store.handle"
	TagIdentifierField = "store.identifier"
	TagCommit          = "store.commit"
	TagRemove          = "store.remove"
	TagFlush           = "store.flush"
	TagDiscard         = "store.discard"
	TagMerge           = "store.merge"
	TagCount           = "store.count"
	TagFindAll         = "store.findAll"
	TagFind            = "store.find"
	TagFindPaged       = "store.findPaged"
	TagNamedFinders    = "store.namedFinders"
)

// TagSet is the monotonically-growing capability tag set of a member or type
// structure. This subsystem only ever adds tags; removal would be a new
// capability.
type TagSet map[string]interface{}

// Has reports whether the key is present.
func (t TagSet) Has(key string) bool {
	_, ok := t[key]
	return ok
}

// Keys returns the tag keys in sorted order.
func (t TagSet) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ContainsAllKeys reports whether every key in other is already present.
// Values are not compared: tag presence is what downstream passes query.
func (t TagSet) ContainsAllKeys(other TagSet) bool {
	for k := range other {
		if !t.Has(k) {
			return false
		}
	}
	return true
}

// Clone returns a shallow value copy (tag values are treated as immutable).
func (t TagSet) Clone() TagSet {
	if t == nil {
		return nil
	}
	out := make(TagSet, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// Merge adds every entry of other into t, overwriting existing values.
func (t TagSet) Merge(other TagSet) {
	for k, v := range other {
		t[k] = v
	}
}
