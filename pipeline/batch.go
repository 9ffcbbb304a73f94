package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// RunAll exports every input in cfg concurrently. Each file writes into its
// own subdirectory of cfg.OutDir, named after the input without extension.
// The first failure cancels the remaining work; results come back ordered
// like cfg.Inputs.
func RunAll(ctx context.Context, cfg Config) ([]*Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)

	results := make([]*Result, len(cfg.Inputs))
	for i, input := range cfg.Inputs {
		i, input := i, input
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Run(Options{
				FitPath:   input,
				OutDir:    filepath.Join(cfg.OutDir, outputName(input)),
				Format:    cfg.Format,
				Overwrite: cfg.Overwrite,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func outputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
