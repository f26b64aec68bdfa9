package cmd

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/dendrascience/jsonfs/tree"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewSeedCmd creates and returns the seed subcommand for the jsonfs CLI.
// It generates a test document with a date-partitioned hierarchy.
func NewSeedCmd() *cobra.Command {
	var (
		outputPath  string
		recordCount int
		verbose     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a test JSON document",
		Long: `Generate a JSON document for testing jsonfs.

Records are placed in a YYYY/MM/DD object hierarchy, each day holding an
array of records. Every record carries its own UUID, the UUID of one of a
small pool of stations, a timestamp and a value. The output file is replaced
atomically, so a mount watching it sees a single change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.OutOrStdout(), outputPath, recordCount, verbose)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Path to output document (required)")
	cmd.Flags().IntVarP(&recordCount, "count", "c", 10000, "Number of records to generate")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	cmd.MarkFlagRequired("output")

	return cmd
}

const stationPoolSize = 50

func randInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		panic(err)
	}
	return v.Int64()
}

func seedDocument(recordCount int) *tree.Object {
	stations := make([]string, stationPoolSize)
	for i := range stations {
		stations[i] = uuid.New().String()
	}

	// Start from a base time and vary it within a year
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, recordCount)
	for i := range times {
		times[i] = baseTime.Add(time.Duration(randInt(int64(366*24*time.Hour/time.Second))) * time.Second)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	root := tree.NewObject()
	for _, ts := range times {
		year := child(root, fmt.Sprintf("%04d", ts.Year()))
		month := child(year, fmt.Sprintf("%02d", ts.Month()))

		day := fmt.Sprintf("%02d", ts.Day())
		n, ok := month.Get(day)
		if !ok {
			n = tree.NewArray()
			month.Set(day, n)
		}

		record := tree.NewObject()
		record.Set("id", tree.String(uuid.New().String()))
		record.Set("station", tree.String(stations[randInt(stationPoolSize)]))
		record.Set("time", tree.String(ts.Format(time.RFC3339)))
		record.Set("value", tree.Number(strconv.FormatFloat(float64(randInt(100000))/100, 'f', -1, 64)))
		record.Set("valid", tree.Bool(randInt(20) != 0))
		n.(*tree.Array).Append(record)
	}
	return root
}

func child(parent *tree.Object, key string) *tree.Object {
	if n, ok := parent.Get(key); ok {
		return n.(*tree.Object)
	}
	obj := tree.NewObject()
	parent.Set(key, obj)
	return obj
}

// writeDocument replaces path with the encoding of root.
func writeDocument(path string, root tree.Node) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(tree.Encode(root)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func runSeed(out io.Writer, outputPath string, recordCount int, verbose bool) error {
	if recordCount < 0 {
		return fmt.Errorf("count must not be negative: %d", recordCount)
	}
	if verbose {
		fmt.Fprintf(out, "Generating %d records in %s\n", recordCount, outputPath)
	}

	root := seedDocument(recordCount)
	if err := writeDocument(outputPath, root); err != nil {
		return fmt.Errorf("write %s: %w", outputPath, err)
	}

	if verbose {
		s := collect(root)
		fmt.Fprintf(out, "Successfully created %d records\n", recordCount)
		fmt.Fprintf(out, "Records distributed across %d days\n", countDays(root))
		fmt.Fprintf(out, "Document size: %d bytes, %d directories, %d files\n", tree.Size(root), s.Dirs, s.Files)
	}
	return nil
}

func countDays(root *tree.Object) int {
	days := 0
	root.Each(func(_ string, year tree.Node) bool {
		year.(*tree.Object).Each(func(_ string, month tree.Node) bool {
			days += month.(*tree.Object).Len()
			return true
		})
		return true
	})
	return days
}
