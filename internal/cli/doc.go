// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// merges the project settings with the flags into the application's
// configuration.
package cli
