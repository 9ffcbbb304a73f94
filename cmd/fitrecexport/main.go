package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lucasjlepore/fitrecord/pipeline"
)

func main() {
	var (
		fitPath    = flag.String("fit", "", "Path to input .fit file")
		outDir     = flag.String("out", "", "Output directory")
		format     = flag.String("format", "parquet", "Canonical sample format: parquet|csv")
		overwrite  = flag.Bool("overwrite", true, "Allow overwriting existing artifacts")
		configPath = flag.String("config", "", "TOML batch config; overrides --fit/--out")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --fit input.fit --out outdir [--format parquet|csv]\n", filepath.Base(os.Args[0]))
		fmt.Fprintf(flag.CommandLine.Output(), "       %s --config export.toml\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if strings.TrimSpace(*configPath) != "" {
		runBatch(*configPath)
		return
	}

	if strings.TrimSpace(*fitPath) == "" || strings.TrimSpace(*outDir) == "" {
		flag.Usage()
		os.Exit(2)
	}

	result, err := pipeline.Run(pipeline.Options{
		FitPath:   *fitPath,
		OutDir:    *outDir,
		Format:    *format,
		Overwrite: *overwrite,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitrecexport failed: %v\n", err)
		os.Exit(1)
	}
	printResult(result)
}

func runBatch(configPath string) {
	cfg, err := pipeline.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitrecexport failed: %v\n", err)
		os.Exit(1)
	}
	results, err := pipeline.RunAll(context.Background(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fitrecexport failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d files\n", len(results))
	for _, res := range results {
		fmt.Printf("  %s -> %s (%d samples)\n", res.FitPath, res.OutputDir, res.SampleCount)
	}
}

func printResult(result *pipeline.Result) {
	fmt.Printf("Export complete\n")
	fmt.Printf("Output dir:        %s\n", result.OutputDir)
	fmt.Printf("samples.jsonl:     %s\n", result.SamplesPath)
	fmt.Printf("canonical samples: %s\n", result.CanonicalSamplesPath)
	fmt.Printf("messages index:    %s\n", result.MessagesIndexPath)
	fmt.Printf("summary:           %s\n", result.SummaryPath)
	fmt.Printf("Samples:           %d\n", result.SampleCount)
}
