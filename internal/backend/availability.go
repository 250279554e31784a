package backend

import "strings"

// Has reports whether the named backend is compiled into this binary.
func Has(name string) bool {
	switch name {
	case Recorder, Auto:
		return true
	case GL:
		return glEnabled
	default:
		return false
	}
}

// Available returns a comma-separated list of available backends.
func Available() string {
	entries := []string{Recorder}
	if Has(GL) {
		entries = append(entries, GL)
	}
	return strings.Join(entries, ",")
}
