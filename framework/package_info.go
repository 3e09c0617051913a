// Package framework contains the reusable parts of the integration test harness. The base package
// holds shared types such as Logger and Capabilities; the subpackages are:
//
// itest: a test scope runner similar to Go's testing package, run as application code
//
// harness: the connection to the server under test, plus callback endpoints that the server
// can reach (for instance to download artifacts from the harness)
//
// helpers: polling, channel and option helpers
//
// opt: an optional value type
//
// Nothing in this tree knows about processes or tasks; that belongs to kietests and the packages
// it builds on.
package framework
