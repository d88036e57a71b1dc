// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the validation lifecycle: settings, schema
// and target loading, the checker run, reporting and watch mode. It is
// decoupled from any specific entrypoint like a CLI.
package app
