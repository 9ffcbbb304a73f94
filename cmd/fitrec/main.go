package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lucasjlepore/fitrecord"
	"github.com/lucasjlepore/fitrecord/fitwire"
)

func main() {
	var (
		jsonl   = flag.Bool("jsonl", false, "Emit one JSON object per sample instead of a JSON array")
		pretty  = flag.Bool("pretty", false, "Indent JSON array output")
		outPath = flag.String("o", "", "Write output to file instead of stdout")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <path-to-fit-file>\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "read fit file: %v\n", err)
		os.Exit(1)
	}

	samples, err := fitrecord.DecodeRecords(data)
	if err != nil {
		var ierr *fitwire.IntegrityError
		var derr *fitwire.DecodeError
		switch {
		case errors.As(err, &ierr):
			fmt.Fprintf(os.Stderr, "file failed integrity check: %v\n", err)
		case errors.As(err, &derr):
			fmt.Fprintf(os.Stderr, "file is structurally broken: %v\n", err)
		default:
			fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		}
		os.Exit(1)
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	enc := json.NewEncoder(out)
	if *jsonl {
		for _, s := range samples {
			if err := enc.Encode(s); err != nil {
				fmt.Fprintf(os.Stderr, "write output: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(samples); err != nil {
		fmt.Fprintf(os.Stderr, "write output: %v\n", err)
		os.Exit(1)
	}
}
