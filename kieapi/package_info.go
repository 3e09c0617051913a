// Package kieapi contains the wire model of the KIE workbench REST API: resource payloads, command
// requests and responses, and the XML/JSON codecs used to read and write them.
//
// The types mirror what the server sends. They carry no behavior beyond encoding and a few
// convenience accessors, since the process engine that gives them meaning is the system under test.
package kieapi
