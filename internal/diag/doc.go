// Package diag defines the structured diagnostic events emitted while
// configuration files are parsed and validated.
//
// A Diagnostic carries a severity, a message template key (Code), the
// template arguments and the exact provenance of the offending value (file,
// line, section, key). The core never formats or persists diagnostics; it
// hands them to a Sink. Rendering lives in the report package.
package diag
