package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/dendrascience/jsonfs/jsonfs"
	"github.com/dendrascience/jsonfs/tree"
	"github.com/dendrascience/jsonfs/util"
	"github.com/spf13/cobra"
)

// NewValidateCmd creates and returns the validate subcommand for the jsonfs CLI.
// It loads documents the same way a mount does and reports the outcome.
func NewValidateCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate DOCUMENT...",
		Short: "Check that JSON documents would mount",
		Long: `Load each document exactly as a mount would and report the result.

A document fails if it cannot be read, is not valid JSON, has a root that is
neither an object nor an array, or cannot be stat'ed. The stage that failed is
reported. The command exits non-zero if any document fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print statistics for valid documents")

	return cmd
}

var errValidation = errors.New("validation failed")

func runValidate(out io.Writer, paths []string, verbose bool) error {
	var failed int
	for _, path := range paths {
		store, err := jsonfs.Open(path)
		if err != nil {
			failed++
			var le *jsonfs.LoadError
			if errors.As(err, &le) {
				fmt.Fprintf(out, "%s: FAIL at %s [%s]: %v\n", path, le.Stage, le.Code(), le.Cause())
			} else {
				fmt.Fprintf(out, "%s: FAIL: %v\n", path, err)
			}
			continue
		}

		root := store.Snapshot().Document.Root
		if !verbose {
			fmt.Fprintf(out, "%s: ok (%s root)\n", path, root.Kind())
			continue
		}
		s := collect(root)
		fmt.Fprintf(out, "%s: ok (%s root)\n", path, root.Kind())
		fmt.Fprintf(out, "  Directories: %d\n", s.Dirs+1)
		fmt.Fprintf(out, "  Files: %d\n", s.Files)
		fmt.Fprintf(out, "  Max depth: %d\n", s.MaxDepth)
		fmt.Fprintf(out, "  Canonical size: %d bytes\n", tree.Size(root))
		reportDigest(out, path, store.Snapshot().Document.Digest)
		if s.Unnamed > 0 {
			fmt.Fprintf(out, "  Keys hidden from listings: %d\n", s.Unnamed)
		}
	}

	fmt.Fprintf(out, "\nValidation complete:\n")
	fmt.Fprintf(out, "  Documents checked: %d\n", len(paths))
	fmt.Fprintf(out, "  Failed: %d\n", failed)

	if failed > 0 {
		return fmt.Errorf("%d of %d documents: %w", failed, len(paths), errValidation)
	}
	return nil
}

// reportDigest prints the digest of the loaded content and notes when the
// file on disk no longer matches it.
func reportDigest(out io.Writer, path, loaded string) {
	fmt.Fprintf(out, "  SHA-256: %s\n", loaded)
	onDisk, err := util.GetFileHash(path)
	switch {
	case err != nil:
		fmt.Fprintf(out, "  On-disk SHA-256: unavailable: %v\n", err)
	case onDisk != loaded:
		fmt.Fprintf(out, "  On-disk SHA-256: %s (changed since load)\n", onDisk)
	}
}
