/*
Package ini implements the document model for the hierarchical key/value
configuration format validated by this tool.

The format is line oriented:

	; comment
	[Section]
	Key=Value
	+=AppendedValue        ; stored under a generated key var_N
	BareKey                ; stored with an empty value
	[Child]:[Parent]       ; copies keys of Parent that Child lacks

	[#include]
	1=other.ini            ; loaded after this file, relative to its directory

Every stored Value remembers the file and line it came from so that
diagnostics can point at the exact source location. Parse problems never
abort loading: they are reported to a diag.Sink and the parser continues
with whatever state it could build.
*/
package ini
