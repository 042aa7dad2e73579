// Package testdoubles provides spy implementations of the licensing
// observability interfaces.
//
// LoggerSpy captures log calls and MetricsCollectorSpy captures metric calls,
// both with fluent matchers for asserting on what was recorded during tests.
package testdoubles
