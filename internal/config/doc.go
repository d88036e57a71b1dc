// Package config defines the format-agnostic settings model of the
// validator, along with the Loader interface implemented by the HCL and
// TOML adapters.
//
// Settings sit between built-in defaults and command-line flags: a field
// left at its zero value in the Model is treated as unset.
package config
