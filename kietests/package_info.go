// Package kietests contains the test scenarios that are run against a KIE workbench.
//
// Each scenario is a short script of REST or remote API calls. The entry point is RunKieTestSuite;
// everything else is called from there through itest.T.Run.
package kietests
