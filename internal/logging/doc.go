// Package logging is the generic structured logger of the program.
// Loggers are created per category from a Factory, decide enablement per
// level and format their message only when the record is written.
package logging
