package helpers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TestContext is a minimal interface for types like *testing.T and *itest.T representing a
// test that can fail.
type TestContext interface {
	Errorf(msgFormat string, msgArgs ...interface{})
	FailNow()
}

// TestRecorder is a TestContext that just records failures, for testing test helpers.
//
// If PanicOnTerminate is true, FailNow panics with the recorder itself, the same way itest.T
// aborts a test.
type TestRecorder struct {
	Errors           []string
	Terminated       bool
	PanicOnTerminate bool
	lock             sync.Mutex
}

func (r *TestRecorder) Errorf(msgFormat string, msgArgs ...interface{}) {
	r.lock.Lock()
	r.Errors = append(r.Errors, fmt.Sprintf(msgFormat, msgArgs...))
	r.lock.Unlock()
}

func (r *TestRecorder) FailNow() {
	r.lock.Lock()
	r.Terminated = true
	r.lock.Unlock()
	if r.PanicOnTerminate {
		panic(r)
	}
}

// Helper is a no-op, so that TestRecorder can stand in where testify expects a tHelper.
func (r *TestRecorder) Helper() {}

// Err returns all recorded failures joined into one error, or nil if there were none.
func (r *TestRecorder) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if len(r.Errors) == 0 {
		return nil
	}
	return errors.New(strings.Join(r.Errors, ", "))
}
