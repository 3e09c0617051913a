// Package internal exists only so that stacktrace tests in itest have a frame from a package
// other than itest itself.
package internal

// RunAction calls action. It must live outside itest for the stacktrace filtering tests.
func RunAction(action func()) {
	action()
}
