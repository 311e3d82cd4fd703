// Package main provides the entry point for M64Sim.
// M64Sim runs big-endian MIPS ELF programs on the VR4300 interpreter.
package main

import (
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/sarchlab/m64sim/emu"
	"github.com/sarchlab/m64sim/loader"
	"github.com/sarchlab/m64sim/timing/latency"
)

var flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "Path to interpreter configuration JSON file",
	},
	&cli.BoolFlag{
		Name:  "timing",
		Usage: "Charge cache and execution stalls",
	},
	&cli.StringFlag{
		Name:  "timing-config",
		Usage: "Path to timing configuration JSON file (implies --timing)",
	},
	&cli.Uint64Flag{
		Name:  "max-instructions",
		Usage: "Stop after this many instructions (0 means no limit)",
	},
	&cli.BoolFlag{
		Name:  "no-icache",
		Usage: "Disable the decode cache",
	},
	&cli.Float64Flag{
		Name:  "clock",
		Usage: "CPU clock in MHz used for emulated time",
		Value: 93.75,
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Aliases: []string{"v"},
		Usage:   "Verbose output",
	},
	&cli.BoolFlag{
		Name:  "trace",
		Usage: "Log every executed instruction",
	},
}

func main() {
	app := cli.NewApp()
	app.Name = "m64sim"
	app.Usage = "VR4300 MIPS interpreter"
	app.ArgsUsage = "<program.elf>"
	app.Flags = flags
	app.Action = run
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		_ = cli.ShowAppHelp(ctx)
		return fmt.Errorf("missing program path")
	}
	programPath := ctx.Args().First()

	logger := newLogger(ctx)

	opts, err := parseOptions(ctx)
	if err != nil {
		return err
	}

	prog, err := loader.Load(programPath)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"entry":    fmt.Sprintf("0x%X", prog.EntryPoint),
		"segments": len(prog.Segments),
	}).Debug("program loaded")

	m, err := newMachine(prog, opts, logger)
	if err != nil {
		return err
	}

	runErr := m.run()
	m.report(programPath).render(ctx.App.Writer)
	if runErr != nil {
		return runErr
	}

	if m.exited && m.exitCode != 0 {
		return cli.Exit("", int(m.exitCode))
	}

	return nil
}

func newLogger(ctx *cli.Context) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(ctx.App.ErrWriter)
	logger.SetLevel(logrus.InfoLevel)

	switch {
	case ctx.Bool("trace"):
		logger.SetLevel(logrus.TraceLevel)
	case ctx.Bool("verbose"):
		logger.SetLevel(logrus.DebugLevel)
	}

	return logger
}

func parseOptions(ctx *cli.Context) (options, error) {
	opts := options{
		config:          emu.DefaultConfig(),
		maxInstructions: ctx.Uint64("max-instructions"),
		trace:           ctx.Bool("trace"),
		clock:           sim.Freq(ctx.Float64("clock")) * sim.MHz,
	}

	if path := ctx.String("config"); path != "" {
		config, err := emu.LoadConfig(path)
		if err != nil {
			return opts, fmt.Errorf("loading config: %w", err)
		}
		opts.config = config
	}
	if ctx.Bool("no-icache") {
		opts.config.InstructionCache = false
	}
	if err := opts.config.Validate(); err != nil {
		return opts, err
	}

	switch path := ctx.String("timing-config"); {
	case path != "":
		timing, err := latency.LoadConfig(path)
		if err != nil {
			return opts, fmt.Errorf("loading timing config: %w", err)
		}
		if err := timing.Validate(); err != nil {
			return opts, err
		}
		opts.timing = timing
	case ctx.Bool("timing"):
		opts.timing = latency.DefaultTimingConfig()
	}

	return opts, nil
}
