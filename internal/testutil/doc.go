// Package testutil contains helper builders used by tests to reduce
// boilerplate when constructing message transcripts. These helpers are
// intentionally minimal and avoid adding third-party dependencies.
// They are not intended for production usage.
package testutil
