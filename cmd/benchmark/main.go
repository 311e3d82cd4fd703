// Command benchmark runs the M64Sim kernel harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	--csv         Output results in CSV format (default: table)
//	--no-icache   Disable the decode cache
//	--no-timing   Run without the cycle model
//	--core        Run only the core kernels
//	--cpuprofile  Write a CPU profile of the run to a file
//
// Example:
//
//	# Compare the decode cache on and off
//	go run ./cmd/benchmark
//	go run ./cmd/benchmark --no-icache
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark --csv > results.csv
package main

import (
	"fmt"
	"os"
	"runtime/pprof"

	"github.com/urfave/cli/v2"

	"github.com/sarchlab/m64sim/benchmarks"
)

func main() {
	app := cli.NewApp()
	app.Name = "benchmark"
	app.Usage = "Run the M64Sim kernel harness"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{Name: "csv", Usage: "Output results in CSV format"},
		&cli.BoolFlag{Name: "no-icache", Usage: "Disable the decode cache"},
		&cli.BoolFlag{Name: "no-timing", Usage: "Run without the cycle model"},
		&cli.BoolFlag{Name: "core", Usage: "Run only the core kernels"},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "Verbose output"},
		&cli.StringFlag{Name: "cpuprofile", Usage: "Write cpu profile to file"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if path := ctx.String("cpuprofile"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	// Configure harness
	config := benchmarks.DefaultConfig()
	config.EnableDecodeCache = !ctx.Bool("no-icache")
	config.EnableTiming = !ctx.Bool("no-timing")
	config.Verbose = ctx.Bool("verbose")
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	if ctx.Bool("core") {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !ctx.Bool("csv") {
		fmt.Println("M64Sim Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("Decode cache: %v\n", config.EnableDecodeCache)
		fmt.Printf("Cycle model:  %v\n", config.EnableTiming)
		fmt.Println("")
	}

	results := harness.RunAll()

	if ctx.Bool("csv") {
		harness.PrintCSV(results)
	} else {
		harness.PrintResults(results)
	}

	for _, r := range results {
		if r.Err != nil {
			return fmt.Errorf("%s: %w", r.Name, r.Err)
		}
		if r.Exited && r.ExitCode != r.ExpectedExit {
			return fmt.Errorf("%s: exit code %d, expected %d", r.Name, r.ExitCode, r.ExpectedExit)
		}
	}

	return nil
}
