package main

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/errors"
	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/instance"
	"github.com/wippyai/fmu-runtime/memory"
)

// oscillator is a damped harmonic oscillator. It lives in host memory, so it
// holds plain values only.
type oscillator struct {
	x, v  float64
	omega float64
	zeta  float64
	time  float64
	steps int
}

func (o *oscillator) Destroy() {
	*o = oscillator{}
}

// simulation is one model instance: its state and a position history, both
// in host memory.
type simulation struct {
	inst    *instance.Instance
	state   *memory.UniquePtr[oscillator]
	floats  memory.Allocator[float64]
	history []float64
	h       float64
	fatal   bool
}

type simConfig struct {
	name      string
	callbacks fmi.CallbackFunctions
	history   int
	debug     bool
	diag      *zap.Logger
}

func newSimulation(cfg simConfig) (*simulation, error) {
	inst, err := instance.Instantiate(cfg.name, cfg.callbacks,
		instance.WithComponent(1),
		instance.WithDebugLogging(cfg.debug),
		instance.WithDiagnostics(cfg.diag))
	if err != nil {
		return nil, err
	}

	sim := &simulation{
		inst:   inst,
		floats: memory.NewAllocator[float64](inst.Memory()),
		h:      0.01,
	}

	sim.state, err = instance.NewState(inst, func(o *oscillator) error {
		o.x = 1
		o.omega = 2 * math.Pi
		o.zeta = 0.05
		return nil
	})
	if err != nil {
		return nil, sim.fail(err)
	}

	sim.history, err = sim.floats.AllocateSlice(cfg.history)
	if err != nil {
		return nil, sim.fail(err)
	}
	sim.history = sim.history[:0]

	inst.Logger().Log(fmi.OK, "", "instantiated with %d history slots", cfg.history)
	return sim, nil
}

// fail reports err to the host, tears the instance down and returns err.
func (s *simulation) fail(err error) error {
	status := s.inst.Status(err)
	s.Close()
	return &statusError{status: status, err: err}
}

// doStep advances the model by one communication step. After a fatal status
// the instance is invalid and every further step returns fmi.Fatal untouched.
func (s *simulation) doStep() fmi.Status {
	if s.fatal {
		return fmi.Fatal
	}
	o := s.state.Get()
	a := -2*o.zeta*o.omega*o.v - o.omega*o.omega*o.x
	o.v += a * s.h
	o.x += o.v * s.h
	o.time += s.h
	o.steps++

	var status fmi.Status
	if math.IsNaN(o.x) || math.IsInf(o.x, 0) {
		status = s.inst.Status(errors.Fatal("state diverged", nil))
		s.fatal = status == fmi.Fatal
	} else {
		s.record(o.x)
		s.inst.Logger().DebugLog(fmi.OK, "step", "t=%.2f x=%.4f v=%.4f", o.time, o.x, o.v)
	}

	s.inst.StepFinished(status)
	return status
}

func (s *simulation) record(x float64) {
	if cap(s.history) == 0 {
		return
	}
	if len(s.history) == cap(s.history) {
		copy(s.history, s.history[1:])
		s.history[len(s.history)-1] = x
		return
	}
	s.history = append(s.history, x)
}

func (s *simulation) snapshot() oscillator {
	return *s.state.Get()
}

// Close frees the history, the state and the instance, in that order.
func (s *simulation) Close() {
	if s.history != nil {
		s.floats.DeallocateSlice(s.history)
		s.history = nil
	}
	if s.state != nil {
		s.state.Close()
	}
	s.inst.Close()
}

type statusError struct {
	status fmi.Status
	err    error
}

func (e *statusError) Error() string {
	return e.status.String() + ": " + e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}
