package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/host"
	"github.com/wippyai/fmu-runtime/logging"
)

func main() {
	var (
		hostKind    = flag.String("host", "go", "Host memory: go, mmap or linear")
		steps       = flag.Int("steps", 10, "Number of communication steps")
		debug       = flag.Bool("debug", false, "Start with debug logging on")
		name        = flag.String("name", "oscillator", "Instance name")
		failAfter   = flag.Int("fail-after", -1, "Fail host allocations after N successes (-host go only)")
		linearPages = flag.Uint("linear-pages", 1, "Pages of linear memory for -host linear")
		history     = flag.Int("history", 64, "Position history slots kept in host memory")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		jsonLogs    = flag.Bool("json", false, "Log as JSON")
	)
	flag.Parse()

	z, err := newZap(*jsonLogs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer z.Sync()

	host.SetLogger(z.Named("host"))
	logging.SetLogger(z.Named("logging"))

	ctx := context.Background()
	h, err := newHost(ctx, hostConfig{
		kind:        *hostKind,
		failAfter:   *failAfter,
		linearPages: *linearPages,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer h.close()

	cfg := simConfig{
		name:    *name,
		history: *history,
		debug:   *debug,
		diag:    z.Named("instance"),
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(h, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg.callbacks = h.build(logging.ZapLogger(z.Named("model")))
	if err := run(h, cfg, *steps); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newZap(json bool) (*zap.Logger, error) {
	if json {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func run(h *simHost, cfg simConfig, steps int) error {
	fmt.Printf("Host: %s\n", h.name)

	sim, err := newSimulation(cfg)
	if err != nil {
		fmt.Printf("Host memory: %s\n", h.summary())
		return err
	}

	status := fmi.OK
	for i := 0; i < steps && status == fmi.OK; i++ {
		status = sim.doStep()
	}

	o := sim.snapshot()
	fmt.Printf("Status: %s after %d steps\n", status, o.steps)
	fmt.Printf("t=%.2f x=%.4f v=%.4f\n", o.time, o.x, o.v)
	fmt.Printf("History: %d of %d slots\n", len(sim.history), cap(sim.history))

	sim.Close()
	fmt.Printf("Host memory: %s\n", h.summary())

	if status != fmi.OK {
		return fmt.Errorf("simulation stopped with %s", status)
	}
	return nil
}
