// Command opticscan clusters lon,lat records from a CSV file with
// OPTICS and writes the reachability-ordered clusters as
// zstd-compressed, newline-delimited text (blank lines separate
// clusters).
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TrevorS/opticsphere"
	"github.com/TrevorS/opticsphere/internal/ingest"
	"github.com/TrevorS/opticsphere/internal/sink"
)

func main() {
	input := flag.String("input", "", "Input CSV file of lon,lat records")
	output := flag.String("output", "", "Output file (default clusters-<run id>.zst)")
	epsilon := flag.Float64("epsilon", 1.0, "Neighborhood radius in degrees")
	minNeighbors := flag.Int("min-neighbors", 5, "Neighbors within epsilon required for a core object")
	pointsPerLeaf := flag.Int("points-per-leaf", 32, "Target points per spatial-index leaf")
	leafExtent := flag.Float64("leaf-extent", 0, "Extent at or below which index nodes are not subdivided")
	delim := flag.String("delim", ",", "CSV field delimiter (single character)")
	workers := flag.Int("workers", runtime.NumCPU(), "Goroutines used for point conversion")
	flag.Parse()

	if *input == "" || len(*delim) != 1 {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	runID := uuid.New().String()[:8] // first 8 chars are plenty for a run id
	if *output == "" {
		*output = fmt.Sprintf("clusters-%s.zst", runID)
	}
	log := logger.With(zap.String("run", runID))

	cfg := opticsphere.Config{
		MinNeighbors:        *minNeighbors,
		Epsilon:             *epsilon,
		PointsPerLeaf:       *pointsPerLeaf,
		LeafExtentThreshold: *leafExtent,
		Logger:              log,
	}
	if err := run(*input, *output, rune((*delim)[0]), *workers, cfg, log); err != nil {
		log.Fatal("clustering failed", zap.Error(err))
	}
}

func run(input, output string, delim rune, workers int, cfg opticsphere.Config, log *zap.Logger) error {
	// The mapping must outlive the run: record handles point into it.
	file, err := ingest.Open(input)
	if err != nil {
		return err
	}
	defer file.Close()

	rows, err := ingest.ParseCSV(file.Data(), delim)
	if err != nil {
		return err
	}
	log.Info("parsed input", zap.String("file", input), zap.Int("points", len(rows)))

	points := ingest.ConvertParallel(rows, workers)

	driver, err := opticsphere.NewDriver(points, cfg)
	if err != nil {
		return err
	}

	pub, err := sink.NewZstdPublisher(output)
	if err != nil {
		return err
	}
	if err := driver.Run(pub); err != nil {
		pub.Close()
		return err
	}
	if err := pub.Close(); err != nil {
		return err
	}

	log.Info("wrote clusters", zap.String("output", output), zap.Int("clusters", pub.Clusters()))
	return nil
}
