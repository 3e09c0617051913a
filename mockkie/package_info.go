// Package mockkie is an in-memory stand-in for the workbench REST API, used to unit-test the
// client and the test scenarios without a running server.
//
// It is not a process engine. Each bundled test process is replayed from a script in the data
// package, which describes the variables it sets and the human tasks it creates.
package mockkie
