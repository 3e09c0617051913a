// Package kjar builds the test deployment unit: a jar with a kmodule descriptor, a pom and the
// bundled process definitions, published to a Maven repository where the workbench can find it.
package kjar
