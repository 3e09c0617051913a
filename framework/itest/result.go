package itest

import (
	"fmt"
	"strings"
	"time"
)

// Results is the outcome of a test run. Tests lists every test that ran, in completion order.
type Results struct {
	Tests               []TestResult
	Failures            []TestResult
	NonCriticalFailures []TestResult
}

type TestResult struct {
	TestID      TestID
	Errors      []error
	Duration    time.Duration
	Skipped     bool
	NonCritical bool
	Explanation string
}

// OK is true if there were no failures other than non-critical ones.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// FailedIDs returns the string IDs of all critical failures.
func (r Results) FailedIDs() []string {
	ret := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		ret = append(ret, f.TestID.String())
	}
	return ret
}

type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns a new ID with name appended; the receiver is not modified.
func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}

// TestFailure associates an error with the test that produced it.
type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func (f TestFailure) Unwrap() error { return f.Err }
