package host

import (
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/fmi"
)

// EventKind identifies a host memory event.
type EventKind int

const (
	EventAllocate EventKind = iota
	EventFree
	EventFailed
	EventBadFree
)

func (k EventKind) String() string {
	switch k {
	case EventAllocate:
		return "allocate"
	case EventFree:
		return "free"
	case EventFailed:
		return "failed"
	case EventBadFree:
		return "bad-free"
	default:
		return "unknown"
	}
}

// Event describes one call into a host memory callback.
type Event struct {
	Ptr   unsafe.Pointer
	Kind  EventKind
	Count uintptr
	Size  uintptr
}

// Stats is a snapshot of host memory counters.
type Stats struct {
	Allocs    int
	Frees     int
	Failed    int
	BadFrees  int
	Live      int
	LiveBytes uintptr
	PeakBytes uintptr
}

// maxHeapBlock bounds a single Heap allocation.
const maxHeapBlock = 1 << 32

// Heap is an instrumented host allocator backed by the Go heap. Blocks are
// word arrays with no pointers, zero-filled like calloc, and kept reachable
// until freed.
type Heap struct {
	blocks    map[unsafe.Pointer]uintptr
	keep      map[unsafe.Pointer][]uint64
	observers []func(Event)
	stats     Stats
	failNext  int
	failAfter int
	mu        sync.Mutex
}

// NewHeap creates an empty heap with failure injection disabled.
func NewHeap() *Heap {
	return &Heap{
		blocks:    make(map[unsafe.Pointer]uintptr),
		keep:      make(map[unsafe.Pointer][]uint64),
		failAfter: -1,
	}
}

// FailNext makes the next n allocations return nil.
func (h *Heap) FailNext(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failNext = n
}

// FailAfter lets n more allocations succeed and fails every one after that.
// A negative n disables it.
func (h *Heap) FailAfter(n int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failAfter = n
}

// Observe registers fn to be called after every event.
func (h *Heap) Observe(fn func(Event)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, fn)
}

// Stats returns the current counters.
func (h *Heap) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stats
}

// AllocateMemory implements fmi.MemoryAllocator.
func (h *Heap) AllocateMemory(nobj, size uintptr) unsafe.Pointer {
	h.mu.Lock()
	if h.shouldFail() {
		h.stats.Failed++
		h.mu.Unlock()
		h.notify(Event{Kind: EventFailed, Count: nobj, Size: size})
		return nil
	}

	bytes := nobj * size
	if (size != 0 && bytes/size != nobj) || uint64(bytes) > maxHeapBlock {
		h.stats.Failed++
		h.mu.Unlock()
		h.notify(Event{Kind: EventFailed, Count: nobj, Size: size})
		return nil
	}
	words := make([]uint64, max(1, (bytes+7)/8))
	p := unsafe.Pointer(unsafe.SliceData(words))

	h.keep[p] = words
	h.blocks[p] = bytes
	h.stats.Allocs++
	h.stats.Live++
	h.stats.LiveBytes += bytes
	h.stats.PeakBytes = max(h.stats.PeakBytes, h.stats.LiveBytes)
	h.mu.Unlock()

	h.notify(Event{Kind: EventAllocate, Ptr: p, Count: nobj, Size: size})
	return p
}

// FreeMemory implements fmi.MemoryFreer. Unknown pointers are logged and
// ignored.
func (h *Heap) FreeMemory(obj unsafe.Pointer) {
	if obj == nil {
		return
	}

	h.mu.Lock()
	bytes, ok := h.blocks[obj]
	if !ok {
		h.stats.BadFrees++
		h.mu.Unlock()
		Logger().Warn("free of unknown pointer", zap.Uintptr("ptr", uintptr(obj)))
		h.notify(Event{Kind: EventBadFree, Ptr: obj})
		return
	}
	delete(h.blocks, obj)
	delete(h.keep, obj)
	h.stats.Frees++
	h.stats.Live--
	h.stats.LiveBytes -= bytes
	h.mu.Unlock()

	h.notify(Event{Kind: EventFree, Ptr: obj})
}

// Callbacks returns host callbacks that allocate from h and log to logger.
func (h *Heap) Callbacks(logger fmi.Logger) fmi.CallbackFunctions {
	return fmi.CallbackFunctions{
		Logger:         logger,
		AllocateMemory: h,
		FreeMemory:     h,
	}
}

func (h *Heap) shouldFail() bool {
	if h.failNext > 0 {
		h.failNext--
		return true
	}
	if h.failAfter == 0 {
		return true
	}
	if h.failAfter > 0 {
		h.failAfter--
	}
	return false
}

func (h *Heap) notify(e Event) {
	h.mu.Lock()
	observers := h.observers
	h.mu.Unlock()
	for _, fn := range observers {
		fn(e)
	}
}
