package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Locate every image in a directory in parallel",
	Long: `Batch runs the pipeline over every image file in a directory:
- Each image gets its own isolated run
- Runs execute in parallel with a configurable worker count
- One run document is written per image

Example:
  geolens batch ./photos
  geolens batch ./photos --concurrency 4 --output-dir ./runs`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent runs")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./geolens-runs", "output directory for run documents")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	paths, err := imagePaths(dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no image files found in %s", dir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	locator, logger, err := buildLocator()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "Processing %d images with %d workers\n", len(paths), concurrency)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var failed int
	results := make([]string, len(paths))
	for i, path := range paths {
		g.Go(func() error {
			image, err := os.ReadFile(path)
			if err != nil {
				results[i] = fmt.Sprintf("FAIL %s: %v", path, err)
				return nil
			}

			state, err := locator.Locate(gctx, path, image)
			if err != nil {
				results[i] = fmt.Sprintf("FAIL %s: %v", path, err)
				return nil
			}

			doc, err := state.MarshalDocument()
			if err != nil {
				results[i] = fmt.Sprintf("FAIL %s: %v", path, err)
				return nil
			}
			outPath := filepath.Join(outputDir, state.ID.String()+".json")
			if err := os.WriteFile(outPath, doc, 0o644); err != nil {
				results[i] = fmt.Sprintf("FAIL %s: %v", path, err)
				return nil
			}

			results[i] = fmt.Sprintf("OK   %s -> %s (confidence %.2f)",
				path, outPath, state.Prediction.Confidence)
			return nil
		})
	}
	_ = g.Wait()

	for _, line := range results {
		if strings.HasPrefix(line, "FAIL") {
			failed++
		}
		fmt.Fprintln(os.Stderr, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d images failed", failed, len(paths))
	}
	return nil
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

func imagePaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
