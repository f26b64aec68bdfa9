package cmd

import (
	"github.com/dendrascience/jsonfs/version"
	"github.com/spf13/cobra"
)

// NewRootCmd creates and returns the root cobra command for the jsonfs CLI.
// It sets up all subcommands, command groups, and basic configuration.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsonfs",
		Short: "jsonfs - A read-only FUSE filesystem view of a JSON document",
		Long: `jsonfs mounts a single JSON document as a read-only directory tree.

Objects and arrays become directories, and every other value becomes a file
holding its JSON encoding. Object keys name entries; array elements are named
by their index. With --watch the document is reloaded whenever it changes on
disk, and the previous version keeps being served if the new one fails to load.

Use subcommands to perform different operations:
  - mount: Mount a JSON document at a specified mountpoint
  - validate: Check that a document would load
  - count: Count the directories and files a mount would expose
  - seed: Generate a test document
  - convert: Pack a directory tree into a single JSON document`,
		Version:       version.GetFullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	groupUtilities := "utilities"
	groupFilesystem := "filesystem"

	// Add command groups for better organization
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupFilesystem,
		Title: "Filesystem Operations",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    groupUtilities,
		Title: "Utility Commands",
	})

	mountCmd := NewMountCmd()
	validateCmd := NewValidateCmd()
	countCmd := NewCountCmd()
	seedCmd := NewSeedCmd()
	convertCmd := NewConvertCmd()

	mountCmd.GroupID = groupFilesystem
	validateCmd.GroupID = groupUtilities
	countCmd.GroupID = groupUtilities
	seedCmd.GroupID = groupUtilities
	convertCmd.GroupID = groupUtilities

	rootCmd.AddCommand(mountCmd, validateCmd, countCmd, seedCmd, convertCmd)

	return rootCmd
}
