// Package normalization maps loosely written config values onto enum types.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps case- and whitespace-insensitive strings onto values of T.
type Normalizer[T comparable] struct {
	name        string
	validValues map[string]T
	validKeys   []string // Cached for error messages
}

// NewNormalizer creates a normalizer named name (used in errors) with a map
// of valid string->value pairs.
func NewNormalizer[T comparable](name string, values map[string]T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := defaultNormalization(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{name: name, validValues: normalized, validKeys: validKeys}
}

// Normalize converts raw to its enum value.
func (n *Normalizer[T]) Normalize(raw string) (T, error) {
	if value, ok := n.validValues[defaultNormalization(raw)]; ok {
		return value, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.validKeys, ", "))
}

// Changed reports whether raw differs from its normalized spelling.
func (n *Normalizer[T]) Changed(raw string) bool {
	return defaultNormalization(raw) != raw
}

// ValidKeys returns all valid normalized keys.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

func defaultNormalization(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
