// Package war assembles the workbench WAR used by the tests: the released distribution with its
// remote API jars replaced by freshly built ones and the data-service classes added.
package war
