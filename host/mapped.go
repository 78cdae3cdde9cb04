//go:build unix

package host

import (
	"math"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/fmu-runtime/fmi"
)

// MappedHeap serves every allocation from its own anonymous private mapping.
// The memory lives outside the Go heap, as it would for a native simulation
// host, and is zero-filled by the kernel.
type MappedHeap struct {
	regions map[unsafe.Pointer][]byte
	mu      sync.Mutex
}

// NewMappedHeap creates an empty mapped heap.
func NewMappedHeap() *MappedHeap {
	return &MappedHeap{regions: make(map[unsafe.Pointer][]byte)}
}

// AllocateMemory implements fmi.MemoryAllocator.
func (h *MappedHeap) AllocateMemory(nobj, size uintptr) unsafe.Pointer {
	bytes := nobj * size
	if size != 0 && bytes/size != nobj {
		return nil
	}
	length := roundUp(max(bytes, 1), uintptr(unix.Getpagesize()))
	if length > math.MaxInt {
		return nil
	}

	region, err := unix.Mmap(-1, 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		Logger().Warn("mmap failed",
			zap.Uintptr("bytes", bytes),
			zap.Error(err))
		return nil
	}
	p := unsafe.Pointer(unsafe.SliceData(region))

	h.mu.Lock()
	h.regions[p] = region
	h.mu.Unlock()
	return p
}

// FreeMemory implements fmi.MemoryFreer.
func (h *MappedHeap) FreeMemory(obj unsafe.Pointer) {
	if obj == nil {
		return
	}

	h.mu.Lock()
	region, ok := h.regions[obj]
	delete(h.regions, obj)
	h.mu.Unlock()

	if !ok {
		Logger().Warn("free of unknown pointer", zap.Uintptr("ptr", uintptr(obj)))
		return
	}
	if err := unix.Munmap(region); err != nil {
		Logger().Warn("munmap failed", zap.Error(err))
	}
}

// Live returns the number of mappings not yet freed.
func (h *MappedHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.regions)
}

// Close unmaps every region still live.
func (h *MappedHeap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var firstErr error
	for p, region := range h.regions {
		if err := unix.Munmap(region); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(h.regions, p)
	}
	return firstErr
}

// Callbacks returns host callbacks that allocate from h and log to logger.
func (h *MappedHeap) Callbacks(logger fmi.Logger) fmi.CallbackFunctions {
	return fmi.CallbackFunctions{
		Logger:         logger,
		AllocateMemory: h,
		FreeMemory:     h,
	}
}
