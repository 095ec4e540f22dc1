package svg

import "strings"

// StyleMap is an ordered set of inline CSS properties as found in an SVG
// style attribute. Insertion order is preserved on re-serialization so that
// rewritten tags stay byte-stable apart from the overridden values.
type StyleMap struct {
	keys   []string
	values map[string]string
}

// NewStyleMap creates an empty StyleMap.
func NewStyleMap() *StyleMap {
	return &StyleMap{values: make(map[string]string)}
}

// DecodeStyle parses the value of a style attribute into a StyleMap.
// The input is split on ';', empty segments are dropped, and each segment is
// split on the first ':' with surrounding whitespace trimmed. A segment
// without a ':' is ignored.
func DecodeStyle(s string) *StyleMap {
	m := NewStyleMap()
	for _, item := range strings.Split(s, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		k, v, ok := strings.Cut(item, ":")
		if !ok {
			continue
		}
		m.Set(strings.TrimSpace(k), strings.TrimSpace(v))
	}
	return m
}

// Set stores a property value. A key seen for the first time is appended;
// an existing key keeps its position and gets the new value.
func (m *StyleMap) Set(key, value string) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key and whether it is present.
func (m *StyleMap) Get(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Len returns the number of properties.
func (m *StyleMap) Len() int {
	return len(m.keys)
}

// Keys returns the property names in insertion order.
// The returned slice is shared; callers must not modify it.
func (m *StyleMap) Keys() []string {
	return m.keys
}

// Merge applies every property of overrides to m, in overrides' order.
// Keys already present keep their position; new keys are appended.
func (m *StyleMap) Merge(overrides *StyleMap) {
	for _, k := range overrides.keys {
		m.Set(k, overrides.values[k])
	}
}

// Encode serializes the map as "key:value;" pairs joined by single spaces,
// matching the formatting the external renderer emits.
func (m *StyleMap) Encode() string {
	var b strings.Builder
	for i, k := range m.keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(m.values[k])
		b.WriteByte(';')
	}
	return b.String()
}
