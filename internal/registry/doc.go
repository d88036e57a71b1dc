// Package registry holds the type tables built from a schema document.
//
// A schema names its types in a handful of well-known sections:
//
//	[NumberLimits]  numeric range types
//	[Limits]        string shape types
//	[Lists]         comma-separated list types
//	[Globals]       singleton sections validated by name
//	[Sections]      section types referenced from values
//	[Registries]    registration sections, Name=Type
//
// Each listed name has a schema section of the same name describing it.
// The Registry is populated once by Load, checked for consistency by
// Validate, and is read-only afterwards.
package registry
