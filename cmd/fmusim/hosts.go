package main

import (
	"context"
	"fmt"

	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/host"
)

// simHost is the simulation-host side: the memory callbacks plus a summary
// of what they did.
type simHost struct {
	name    string
	build   func(fmi.Logger) fmi.CallbackFunctions
	summary func() string
	close   func()
}

type hostConfig struct {
	kind        string
	failAfter   int
	linearPages uint
}

func newHost(ctx context.Context, cfg hostConfig) (*simHost, error) {
	if cfg.failAfter >= 0 && cfg.kind != "go" {
		return nil, fmt.Errorf("-fail-after needs -host go")
	}

	switch cfg.kind {
	case "go":
		heap := host.NewHeap()
		heap.FailAfter(cfg.failAfter)
		return &simHost{
			name:  "go heap",
			build: heap.Callbacks,
			summary: func() string {
				s := heap.Stats()
				return fmt.Sprintf("allocs=%d frees=%d failed=%d live=%d peak=%dB",
					s.Allocs, s.Frees, s.Failed, s.Live, s.PeakBytes)
			},
			close: func() {},
		}, nil

	case "mmap":
		return newMappedHost()

	case "linear":
		if cfg.linearPages == 0 || cfg.linearPages > 65535 {
			return nil, fmt.Errorf("-linear-pages must be in [1, 65535]")
		}
		lm, err := host.NewLinearMemory(ctx, uint32(cfg.linearPages))
		if err != nil {
			return nil, err
		}
		return &simHost{
			name:  fmt.Sprintf("wasm linear memory (%d pages)", cfg.linearPages),
			build: lm.Heap.Callbacks,
			summary: func() string {
				return fmt.Sprintf("live=%d free=%dB", lm.Heap.Live(), lm.Heap.FreeBytes())
			},
			close: func() { lm.Close(ctx) },
		}, nil

	default:
		return nil, fmt.Errorf("unknown host %q (want go, mmap or linear)", cfg.kind)
	}
}
