// Package cmd provides the command-line interface implementation for jsonfs.
//
// This package contains all the subcommand implementations for the jsonfs CLI tool.
// It uses the Cobra library for command structure and Fang for styling.
//
// The package is organized into the following commands:
//   - root: Main command coordinator and entry point
//   - mount: FUSE mount of a JSON document, with optional reload on change
//   - validate: Load documents as a mount would and report failures
//   - count: Entry counts for a document or a path within it
//   - seed: Test document generation
//   - convert: Directory tree to JSON document conversion
//
// Each command is implemented as a separate file with its own constructor function
// that returns a *cobra.Command.
package cmd
