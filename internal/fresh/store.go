package fresh

import (
	"fmt"
	"sort"
)

// BindingStore maps normalized path keys to bindings. It owns every key and
// record it creates until Clear is called. Not safe for concurrent use.
type BindingStore struct {
	bindings map[string]*Binding
}

// NewBindingStore creates an empty store.
func NewBindingStore() *BindingStore {
	return &BindingStore{bindings: make(map[string]*Binding)}
}

// FindOrInsert returns the binding stored under key, creating a zero record
// if none exists. existing reports whether the binding was already present;
// when it is false the caller initializes the record's fields.
func (s *BindingStore) FindOrInsert(key string) (b *Binding, existing bool) {
	if s.bindings == nil {
		s.bindings = make(map[string]*Binding)
	}
	if b, ok := s.bindings[key]; ok {
		return b, true
	}
	b = &Binding{}
	s.bindings[key] = b
	return b, false
}

// Lookup returns the binding for key without creating one.
func (s *BindingStore) Lookup(key string) (*Binding, bool) {
	b, ok := s.bindings[key]
	return b, ok
}

// ForEach calls fn for every binding in key order.
func (s *BindingStore) ForEach(fn func(key string, b *Binding)) {
	keys := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fn(k, s.bindings[k])
	}
}

// Len returns the number of bindings.
func (s *BindingStore) Len() int {
	return len(s.bindings)
}

// Clear discards every binding and key.
func (s *BindingStore) Clear() {
	s.bindings = nil
}

// check panics if a binding's recorded name no longer matches its key. A
// mismatch is a programming error, not a runtime condition.
func (s *BindingStore) check(key string, b *Binding) {
	if b.Name != key {
		panic(fmt.Sprintf("binding store corrupt: key %q holds binding %q", key, b.Name))
	}
}
