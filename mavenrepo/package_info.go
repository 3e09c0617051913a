// Package mavenrepo publishes build artifacts to Maven repositories, so that a workbench can
// resolve the test kjar by its coordinates.
package mavenrepo
