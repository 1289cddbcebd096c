// Package logger is a standardized event logging framework for interpreter
// sessions. Events are written as newline delimited JSON objects and can be
// read back to build reports.
package logger
