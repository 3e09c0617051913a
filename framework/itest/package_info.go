// Package itest is a test runner similar to Go's testing package, except that it runs as ordinary
// application code against a live server. It adds test filtering by regex path, per-test debug
// output capture, non-critical failures, and console and JUnit reporting.
package itest
