// Package resultstore keeps the list of suppressed tests and a record of each test run.
//
// The suppression list is simply the set of tests that failed in the last recorded run, so that a
// run with known failures can be repeated while skipping them. Where it is kept depends on the
// store URL given to Open: a file path, a Redis server, a Consul KV tree, or a DynamoDB table.
package resultstore
