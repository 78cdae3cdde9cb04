package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/fmu-runtime/fmi"
	"github.com/wippyai/fmu-runtime/host"
	"github.com/wippyai/fmu-runtime/memory"
)

type logCall struct {
	component fmi.Component
	instance  string
	status    fmi.Status
	category  string
	message   string
	args      []any
}

type recordingLogger struct {
	calls []logCall
}

func (r *recordingLogger) Log(c fmi.Component, instanceName string, status fmi.Status, category, message string, args ...any) {
	r.calls = append(r.calls, logCall{c, instanceName, status, category, message, args})
}

func newTestForwarder(t *testing.T, debug *DebugFlag) (*Forwarder, *recordingLogger, *host.Heap) {
	t.Helper()
	rec := &recordingLogger{}
	heap := host.NewHeap()
	callbacks := heap.Callbacks(rec)

	mem, err := memory.NewMemory(callbacks)
	require.NoError(t, err)
	name, err := memory.CopyString(mem, "tank")
	require.NoError(t, err)

	fwd := NewForwarder(5, &name, callbacks, debug)
	assert.Equal(t, 0, name.Len(), "forwarder takes the name")
	return fwd, rec, heap
}

func TestForwarder_Log(t *testing.T) {
	fwd, rec, _ := newTestForwarder(t, NewDebugFlag(false))

	fwd.Log(fmi.Warning, "solver", "step %d reduced to %g", 3, 0.5)

	require.Len(t, rec.calls, 1)
	call := rec.calls[0]
	assert.Equal(t, fmi.Component(5), call.component)
	assert.Equal(t, "tank", call.instance)
	assert.Equal(t, fmi.Warning, call.status)
	assert.Equal(t, "solver", call.category)
	assert.Equal(t, "step %d reduced to %g", call.message)
	assert.Equal(t, []any{3, 0.5}, call.args)
}

func TestForwarder_LogIgnoresDebugFlag(t *testing.T) {
	debug := NewDebugFlag(false)
	fwd, rec, _ := newTestForwarder(t, debug)

	fwd.Log(fmi.OK, "", "off")
	debug.Set(true)
	fwd.Log(fmi.OK, "", "on")

	assert.Len(t, rec.calls, 2)
}

func TestForwarder_DebugLog(t *testing.T) {
	debug := NewDebugFlag(false)
	fwd, rec, _ := newTestForwarder(t, debug)

	fwd.DebugLog(fmi.OK, "state", "x=%g", 1.0)
	assert.Empty(t, rec.calls)

	debug.Set(true)
	fwd.DebugLog(fmi.OK, "state", "x=%g", 2.0)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []any{2.0}, rec.calls[0].args)

	debug.Set(false)
	fwd.DebugLog(fmi.OK, "state", "x=%g", 3.0)
	assert.Len(t, rec.calls, 1)
}

func TestForwarder_SharedFlag(t *testing.T) {
	debug := NewDebugFlag(false)
	a, recA, _ := newTestForwarder(t, debug)
	b, recB, _ := newTestForwarder(t, debug)

	debug.Set(true)
	a.DebugLog(fmi.OK, "", "a")
	b.DebugLog(fmi.OK, "", "b")

	assert.Len(t, recA.calls, 1)
	assert.Len(t, recB.calls, 1)
}

func TestForwarder_NilFlagIsOff(t *testing.T) {
	fwd, rec, _ := newTestForwarder(t, nil)
	fwd.DebugLog(fmi.OK, "", "never")
	assert.Empty(t, rec.calls)
}

func TestForwarder_NilHostLogger(t *testing.T) {
	heap := host.NewHeap()
	callbacks := heap.Callbacks(nil)
	mem, err := memory.NewMemory(callbacks)
	require.NoError(t, err)
	name, err := memory.CopyString(mem, "quiet")
	require.NoError(t, err)

	fwd := NewForwarder(0, &name, callbacks, NewDebugFlag(true))
	assert.NotPanics(t, func() {
		fwd.Log(fmi.Error, "", "dropped")
		fwd.DebugLog(fmi.OK, "", "dropped")
	})
	fwd.Close()
}

func TestForwarder_HostPanicIsContained(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	SetLogger(zap.New(core))
	defer SetLogger(zap.NewNop())

	heap := host.NewHeap()
	callbacks := heap.Callbacks(fmi.LoggerFunc(func(fmi.Component, string, fmi.Status, string, string, ...any) {
		panic("host logger broke")
	}))
	mem, err := memory.NewMemory(callbacks)
	require.NoError(t, err)
	name, err := memory.CopyString(mem, "fragile")
	require.NoError(t, err)
	fwd := NewForwarder(0, &name, callbacks, NewDebugFlag(true))

	assert.NotPanics(t, func() {
		fwd.Log(fmi.Error, "io", "failed")
		fwd.DebugLog(fmi.OK, "io", "trace")
	})

	entries := logs.FilterMessage("host logger panicked").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "fragile", entries[0].ContextMap()["instance"])
	assert.Equal(t, "io", entries[0].ContextMap()["category"])
}

func TestForwarder_CloseReleasesName(t *testing.T) {
	fwd, _, heap := newTestForwarder(t, nil)
	require.Equal(t, 1, heap.Stats().Live)

	assert.Equal(t, "tank", fwd.InstanceName())
	fwd.Close()
	assert.Equal(t, 0, heap.Stats().Live)

	fwd.Close()
	assert.Equal(t, 1, heap.Stats().Frees)
}
