package framework

import (
	"sort"
	"strings"
)

// Capabilities is a list of optional features that the server under test is known to support.
// Tests that depend on one of them call itest.(*T).RequireCapability.
type Capabilities []string

// Has returns true if the specified string appears in the list.
func (cs Capabilities) Has(name string) bool {
	for _, c := range cs {
		if c == name {
			return true
		}
	}
	return false
}

// HasAny returns true if at least one of the names appears in the list.
func (cs Capabilities) HasAny(names ...string) bool {
	for _, n := range names {
		if cs.Has(n) {
			return true
		}
	}
	return false
}

// String returns the capabilities as a sorted comma-separated list.
func (cs Capabilities) String() string {
	sorted := append([]string(nil), cs...)
	sort.Strings(sorted)
	return strings.Join(sorted, ",")
}

// Set implements flag.Value. It accepts a comma-separated list and can be repeated.
func (cs *Capabilities) Set(value string) error {
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" && !cs.Has(s) {
			*cs = append(*cs, s)
		}
	}
	return nil
}
