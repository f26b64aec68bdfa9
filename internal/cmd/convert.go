package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dendrascience/jsonfs/tree"
	"github.com/spf13/cobra"
)

// NewConvertCmd creates and returns the convert subcommand for the jsonfs CLI.
// It packs a directory tree into one JSON document.
func NewConvertCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		values     bool
		verbose    bool
		dryRun     bool
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Pack a directory tree into a single JSON document",
		Long: `Convert a directory tree into one JSON document that mounts back as the
same tree.

Directories become objects, or arrays when their entries are named 0..n-1.
Files ending in .json are embedded as parsed values under their name without
the extension, and other files become strings. With --values every file is
read as a JSON value, falling back to a string, which inverts a copy taken
from a mount.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.OutOrStdout(), inputPath, outputPath, convertOptions{values: values, verbose: verbose}, dryRun)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to input directory (required)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output document (required)")
	cmd.Flags().BoolVar(&values, "values", false, "Read every file as a JSON value")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without writing the output")

	cmd.MarkFlagRequired("input")
	cmd.MarkFlagRequired("output")

	return cmd
}

type convertOptions struct {
	values  bool
	verbose bool
	out     io.Writer
}

func runConvert(out io.Writer, inputPath, outputPath string, opts convertOptions, dryRun bool) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("input %s is not a directory", inputPath)
	}

	if opts.verbose {
		fmt.Fprintf(out, "Converting %s to %s\n", inputPath, outputPath)
		if dryRun {
			fmt.Fprintln(out, "DRY RUN - no changes will be made")
		}
	}

	opts.out = out
	root, err := convertDir(inputPath, opts)
	if err != nil {
		return err
	}

	s := collect(root)
	fmt.Fprintf(out, "Converted %d directories and %d files (%d bytes)\n", s.Dirs+1, s.Files, tree.Size(root))
	if dryRun {
		return nil
	}
	if err := writeDocument(outputPath, root); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	return nil
}

func convertDir(dir string, opts convertOptions) (tree.Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	obj := tree.NewObject()
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		var (
			key   = e.Name()
			value tree.Node
		)
		switch {
		case e.IsDir():
			value, err = convertDir(p, opts)
		case e.Type().IsRegular():
			if !opts.values && strings.HasSuffix(key, ".json") {
				key = strings.TrimSuffix(key, ".json")
			}
			value, err = convertFile(p, e.Name(), opts)
		default:
			if opts.verbose {
				fmt.Fprintf(opts.out, "Skipping %s: not a regular file or directory\n", p)
			}
			continue
		}
		if err != nil {
			return nil, err
		}
		if _, dup := obj.Get(key); dup {
			return nil, fmt.Errorf("%s: key %q produced twice", dir, key)
		}
		obj.Set(key, value)
	}

	if arr, ok := asArray(obj); ok {
		return arr, nil
	}
	return obj, nil
}

func convertFile(path, name string, opts convertOptions) (tree.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if opts.values || strings.HasSuffix(name, ".json") {
		n, err := tree.Parse(data)
		if err == nil {
			return n, nil
		}
		if !opts.values {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return tree.String(data), nil
}

// asArray returns obj as an array if its keys are exactly the canonical
// indexes 0..n-1 in some order. Empty directories stay objects.
func asArray(obj *tree.Object) (*tree.Array, bool) {
	n := obj.Len()
	if n == 0 {
		return nil, false
	}
	for _, k := range obj.Keys() {
		i, ok := tree.ParseIndex(k)
		if !ok || i >= n {
			return nil, false
		}
	}
	arr := tree.NewArray()
	for i := 0; i < n; i++ {
		v, _ := obj.Get(strconv.Itoa(i))
		arr.Append(v)
	}
	return arr, true
}
