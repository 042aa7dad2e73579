// Package loggers provides ready-made implementations of the dependency-free
// licensing.Logger interface.
package loggers
