package itest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter decides whether to run a specific test.
type Filter interface {
	Match(TestID) bool
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(TestID) bool

func (f FilterFunc) Match(id TestID) bool { return f(id) }

// SelfDescribingFilter is a Filter that can print a summary of what it excludes.
type SelfDescribingFilter interface {
	Filter
	Describe(out io.Writer, supportedCapabilities, importantCapabilities []string)
}

// RegexFilters selects tests with -run and -skip style patterns. A test runs if it matches any
// MustMatch pattern (or there are none) and no MustNotMatch pattern.
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

func (r RegexFilters) Match(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

// Describe prints the active patterns, and any important capabilities the server lacks.
func (r RegexFilters) Describe(out io.Writer, supportedCapabilities, importantCapabilities []string) {
	if r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if r.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", r.MustMatch)
		}
		if r.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", r.MustNotMatch)
		}
		fmt.Fprintln(out)
	}

	supported := make(map[string]bool, len(supportedCapabilities))
	for _, c := range supportedCapabilities {
		supported[c] = true
	}
	var missing []string
	for _, c := range importantCapabilities {
		if !supported[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintln(out, "Some tests will be skipped because the server was not configured with these capabilities:")
		fmt.Fprintf(out, "  %s\n\n", strings.Join(missing, ", "))
	}
}

// TestIDPattern is a slash-separated list of regexes, one per level of the test ID.
type TestIDPattern []*regexp.Regexp

// Match compares each level of the ID with the corresponding regex. If the ID is shorter than the
// pattern, it matches only when includeParents is true, so that the parents of a selected test
// still run.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	if len(p) > len(id) && !includeParents {
		return false
	}
	for i := 0; i < len(p) && i < len(id); i++ {
		if !p[i].MatchString(id[i]) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	ss := make([]string, 0, len(p))
	for _, c := range p {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, "/")
}

func ParseTestIDPattern(s string) (TestIDPattern, error) {
	parts := strings.Split(s, "/")
	ret := make(TestIDPattern, 0, len(parts))
	for _, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", part, err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set implements flag.Value, so the flag can be repeated.
func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

// AddLiteral adds a pattern that matches exactly the given test ID string, as written by
// Results.FailedIDs.
func (l *TestIDPatternList) AddLiteral(id string) error {
	parts := strings.Split(id, "/")
	for i, part := range parts {
		parts[i] = "^" + regexp.QuoteMeta(part) + "$"
	}
	return l.Set(strings.Join(parts, "/"))
}

func (l TestIDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	for _, p := range l {
		if p.Match(id, includeParents) {
			return true
		}
	}
	return false
}
