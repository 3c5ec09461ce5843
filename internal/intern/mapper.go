// Package intern provides bidirectional maps from comparable keys to dense
// integer handles.
//
// A Mapper assigns each distinct key the next handle, starting at 1, and
// keeps the first value stored for it. Handle 0 is never assigned, so callers
// can use it as "not yet interned".
//
// Handles are never reused and entries are never removed: the mapper only
// grows for its lifetime.
package intern

// Mapper is a bidirectional key/value store with dense integer handles.
type Mapper[K comparable, V any] struct {
	forward map[K]uint64
	values  []V // values[h-1] holds the value for handle h
}

// New creates an empty Mapper with the given initial capacity.
func New[K comparable, V any](capacity int) *Mapper[K, V] {
	return &Mapper[K, V]{
		forward: make(map[K]uint64, capacity),
		values:  make([]V, 0, capacity),
	}
}

// Map returns the handle for key, assigning a fresh one if key is new.
//
// When key is already mapped, value is ignored and the previously stored
// value is returned. added reports whether a new entry was created.
func (m *Mapper[K, V]) Map(key K, value V) (handle uint64, stored V, added bool) {
	if h, ok := m.forward[key]; ok {
		return h, m.values[h-1], false
	}
	m.values = append(m.values, value)
	h := uint64(len(m.values))
	m.forward[key] = h
	return h, value, true
}

// TryGetMapped returns the handle for key without inserting.
func (m *Mapper[K, V]) TryGetMapped(key K) (uint64, bool) {
	h, ok := m.forward[key]
	return h, ok
}

// ReverseMap returns the value stored for handle.
// ok is false for 0 and for handles never assigned by this mapper.
func (m *Mapper[K, V]) ReverseMap(handle uint64) (V, bool) {
	if handle == 0 || handle > uint64(len(m.values)) {
		var zero V
		return zero, false
	}
	return m.values[handle-1], true
}

// Count returns the number of mapped entries.
func (m *Mapper[K, V]) Count() int {
	return len(m.values)
}

// Strings interns strings to handles. The value is the string itself.
type Strings struct {
	m *Mapper[string, string]
}

// NewStrings creates a string interner.
func NewStrings() *Strings {
	return &Strings{m: New[string, string](64)}
}

// Intern returns the handle for s, assigning one if needed.
func (s *Strings) Intern(str string) uint64 {
	h, _, _ := s.m.Map(str, str)
	return h
}

// Lookup returns the handle for str if it has been interned.
func (s *Strings) Lookup(str string) (uint64, bool) {
	return s.m.TryGetMapped(str)
}

// String returns the string for handle, or "" if unknown.
func (s *Strings) String(handle uint64) string {
	str, _ := s.m.ReverseMap(handle)
	return str
}

// Count returns the number of interned strings.
func (s *Strings) Count() int {
	return s.m.Count()
}
