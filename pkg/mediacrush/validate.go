package mediacrush

import "strings"

// requireNonEmpty rejects blank required string arguments before any I/O.
func requireNonEmpty(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return &ArgumentError{Name: name}
	}
	return nil
}

func requirePresent(present bool, name string) error {
	if !present {
		return &ArgumentError{Name: name}
	}
	return nil
}
