package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geolens/geolens/internal/agent"
	"github.com/geolens/geolens/internal/config"
	"github.com/geolens/geolens/internal/geoclip"
	"github.com/geolens/geolens/internal/llm"
	"github.com/geolens/geolens/internal/tools"
	"github.com/geolens/geolens/internal/vlm"
)

var (
	outJSON        string
	locateTimeout  time.Duration
	maxIterations  int
	threshold      float32
	topK           int
	enableTopology bool
)

// locateCmd represents the locate command
var locateCmd = &cobra.Command{
	Use:   "locate <image>",
	Short: "Locate a single image and print the run document",
	Long: `Locate runs the full pipeline on one image:
- Extract text, visual, and metadata clues
- Propose region hypotheses
- Ground hypotheses into coordinate candidates
- Verify candidates against the evidence checks

Example:
  geolens locate photo.jpg
  geolens locate photo.jpg --json run.json --threshold 0.9
  geolens locate photo.jpg --max-iterations 3 --topology`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

func init() {
	rootCmd.AddCommand(locateCmd)

	locateCmd.Flags().StringVar(&outJSON, "json", "", "write the run document to this path instead of stdout")
	locateCmd.Flags().DurationVar(&locateTimeout, "timeout", 5*time.Minute, "overall run timeout")
	locateCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "hypothesis loop bound (default from env)")
	locateCmd.Flags().Float32Var(&threshold, "threshold", 0, "fused-score termination threshold (default from env)")
	locateCmd.Flags().IntVar(&topK, "top-k", 0, "embedding retrieval fan-out (default from env)")
	locateCmd.Flags().BoolVar(&enableTopology, "topology", false, "enable the POI layout check")
}

func runLocate(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), locateTimeout)
	defer cancel()

	image, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image %s: %w", path, err)
	}

	locator, logger, err := buildLocator()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Locating: %s\n", path)
	}

	state, err := locator.Locate(ctx, path, image)
	if err != nil {
		return err
	}

	doc, err := state.MarshalDocument()
	if err != nil {
		return err
	}

	if outJSON != "" {
		if err := os.WriteFile(outJSON, doc, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", outJSON, err)
		}
		fmt.Fprintf(os.Stderr, "Run document written to %s\n", outJSON)
	} else {
		fmt.Println(string(doc))
	}

	if state.Prediction != nil {
		fmt.Fprintf(os.Stderr, "\nPrediction: %s (%.4f, %.4f) confidence %.2f converged=%v\n",
			state.Prediction.Name, state.Prediction.Lat, state.Prediction.Lon,
			state.Prediction.Confidence, state.Prediction.Converged)
	}
	return nil
}

// buildLocator wires collaborator clients from the environment, mirroring
// the server wiring without the database.
func buildLocator() (*agent.Agent, *zap.Logger, error) {
	if err := config.Load(); err != nil {
		return nil, nil, err
	}

	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger = zap.NewNop()
	}
	if err != nil {
		return nil, nil, err
	}

	vlmClient, err := vlm.NewClient(config.VLMProvider(), config.VLMAPIKey())
	if err != nil {
		return nil, nil, err
	}
	llmClient, err := llm.NewClient(config.LLMProvider(), config.LLMAPIKey())
	if err != nil {
		return nil, nil, err
	}
	cache := geoclip.NewCache(config.CacheTTL(), 2*config.CacheTTL())
	retrievalClient, err := geoclip.NewRetrievalClient(
		config.RetrievalProvider(), config.GeoCLIPURL(), cache, nil)
	if err != nil {
		return nil, nil, err
	}
	geocoder := tools.NewOSMClient(config.NominatimURL(), config.OverpassURL(), config.CacheTTL())

	opts := agent.Options{
		MaxIterations:       config.MaxIterations(),
		ConfidenceThreshold: config.ConfidenceThreshold(),
		TopK:                config.TopK(),
		EnableTopology:      config.EnableTopology() || enableTopology,
	}
	if maxIterations > 0 {
		opts.MaxIterations = maxIterations
	}
	if threshold > 0 {
		opts.ConfidenceThreshold = threshold
	}
	if topK > 0 {
		opts.TopK = topK
	}

	return agent.New(vlmClient, llmClient, retrievalClient, geocoder, opts, logger), logger, nil
}
