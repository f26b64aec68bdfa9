package cmd

import (
	"fmt"
	"io"

	"github.com/dendrascience/jsonfs/jsonfs"
	"github.com/dendrascience/jsonfs/tree"
	"github.com/spf13/cobra"
)

// NewCountCmd creates and returns the count subcommand for the jsonfs CLI.
// It counts the entries a mount of the document would expose.
func NewCountCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "count DOCUMENT",
		Short: "Count the directories and files a mount would expose",
		Long: `Count the directories and files below a path of a mounted document,
without mounting it.

Objects and arrays count as directories and every other value as a file.
Keys that cannot be directory entry names are reported separately.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCount(cmd.OutOrStdout(), args[0], path)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "p", "/", "Virtual path to count below")

	return cmd
}

func runCount(out io.Writer, document, path string) error {
	store, err := jsonfs.Open(document)
	if err != nil {
		return err
	}
	n, err := store.Resolve(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if !tree.IsContainer(n) {
		return fmt.Errorf("%s: %w", path, jsonfs.ErrNotDirectory)
	}

	s := collect(n)
	fmt.Fprintf(out, "Total directories: %d\n", s.Dirs)
	fmt.Fprintf(out, "Total files: %d\n", s.Files)
	fmt.Fprintf(out, "Total file bytes: %d\n", s.Bytes)
	if s.Unnamed > 0 {
		fmt.Fprintf(out, "Unlisted keys: %d\n", s.Unnamed)
	}
	return nil
}
