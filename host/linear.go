package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"unsafe"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/fmu-runtime/fmi"
)

const (
	linearAlign = 8
	// maxPages keeps the byte size representable as uint32.
	maxPages = 65535
)

type span struct {
	off uint32
	len uint32
}

// LinearHeap serves host memory from the linear memory of a WebAssembly
// module instance. Blocks are carved first-fit from a free list and
// coalesced on free. The heap never grows the memory; when it is full,
// allocation returns nil.
//
// Pointers stay valid only while the memory is not grown or closed.
type LinearHeap struct {
	mem  api.Memory
	base unsafe.Pointer
	free []span
	used map[uint32]uint32
	mu   sync.Mutex
}

// NewLinearHeap manages mem from offset start to its current end. Bytes below
// start are left to the guest.
func NewLinearHeap(mem api.Memory, start uint32) (*LinearHeap, error) {
	if mem == nil {
		return nil, fmt.Errorf("linear heap: nil memory")
	}
	size := mem.Size()
	start = alignUp(start)
	if start >= size {
		return nil, fmt.Errorf("linear heap: start %d beyond memory size %d", start, size)
	}
	buf, ok := mem.Read(0, size)
	if !ok || len(buf) == 0 {
		return nil, fmt.Errorf("linear heap: memory not readable")
	}

	return &LinearHeap{
		mem:  mem,
		base: unsafe.Pointer(unsafe.SliceData(buf)),
		free: []span{{off: start, len: size - start}},
		used: make(map[uint32]uint32),
	}, nil
}

// LinearMemory is a wazero runtime hosting one module whose only content is
// an exported, fixed-size memory.
type LinearMemory struct {
	Runtime wazero.Runtime
	Module  api.Module
	Heap    *LinearHeap
}

// NewLinearMemory instantiates a module exporting a memory of exactly pages
// 64KiB pages and returns a heap over all of it.
func NewLinearMemory(ctx context.Context, pages uint32) (*LinearMemory, error) {
	if pages == 0 || pages > maxPages {
		return nil, fmt.Errorf("linear memory: invalid page count %d", pages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryCapacityFromMax(true))
	mod, err := rt.InstantiateWithConfig(ctx, memoryModule(pages), wazero.NewModuleConfig().WithName("fmu-heap"))
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate memory module: %w", err)
	}

	heap, err := NewLinearHeap(mod.ExportedMemory("memory"), linearAlign)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	Logger().Debug("linear memory ready",
		zap.Uint32("pages", pages),
		zap.Uint32("bytes", heap.mem.Size()))

	return &LinearMemory{Runtime: rt, Module: mod, Heap: heap}, nil
}

// Close tears down the module and runtime. Every pointer from the heap
// becomes invalid.
func (l *LinearMemory) Close(ctx context.Context) error {
	return l.Runtime.Close(ctx)
}

// AllocateMemory implements fmi.MemoryAllocator.
func (h *LinearHeap) AllocateMemory(nobj, size uintptr) unsafe.Pointer {
	bytes := nobj * size
	if size != 0 && bytes/size != nobj {
		return nil
	}
	if bytes > uintptr(h.mem.Size()) {
		return nil
	}
	n := alignUp(uint32(max(bytes, 1)))

	h.mu.Lock()
	defer h.mu.Unlock()

	for i, s := range h.free {
		if s.len < n {
			continue
		}
		off := s.off
		if s.len == n {
			h.free = append(h.free[:i], h.free[i+1:]...)
		} else {
			h.free[i] = span{off: s.off + n, len: s.len - n}
		}
		h.used[off] = n
		clear(unsafe.Slice((*byte)(unsafe.Add(h.base, off)), n))
		return unsafe.Add(h.base, off)
	}

	Logger().Debug("linear heap exhausted",
		zap.Uintptr("bytes", bytes),
		zap.Uint32("free", h.freeBytes()))
	return nil
}

// FreeMemory implements fmi.MemoryFreer.
func (h *LinearHeap) FreeMemory(obj unsafe.Pointer) {
	if obj == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	addr, base := uintptr(obj), uintptr(h.base)
	if addr < base || addr-base >= uintptr(h.mem.Size()) {
		Logger().Warn("free of pointer outside linear memory", zap.Uintptr("ptr", addr))
		return
	}
	off := uint32(addr - base)
	n, ok := h.used[off]
	if !ok {
		Logger().Warn("free of unknown pointer", zap.Uintptr("ptr", uintptr(obj)))
		return
	}
	delete(h.used, off)
	h.insertFree(span{off: off, len: n})
}

// Offset returns the linear memory offset of a pointer obtained from h, for
// handing to guest code.
func (h *LinearHeap) Offset(ptr unsafe.Pointer) uint32 {
	return uint32(uintptr(ptr) - uintptr(h.base))
}

// FreeBytes returns the number of bytes available for allocation.
func (h *LinearHeap) FreeBytes() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.freeBytes()
}

// Live returns the number of blocks not yet freed.
func (h *LinearHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.used)
}

// Callbacks returns host callbacks that allocate from h and log to logger.
func (h *LinearHeap) Callbacks(logger fmi.Logger) fmi.CallbackFunctions {
	return fmi.CallbackFunctions{
		Logger:         logger,
		AllocateMemory: h,
		FreeMemory:     h,
	}
}

func (h *LinearHeap) freeBytes() uint32 {
	var total uint32
	for _, s := range h.free {
		total += s.len
	}
	return total
}

// insertFree keeps the free list sorted by offset and merges neighbours.
func (h *LinearHeap) insertFree(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].off > s.off })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	if i+1 < len(h.free) && h.free[i].off+h.free[i].len == h.free[i+1].off {
		h.free[i].len += h.free[i+1].len
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].off+h.free[i-1].len == h.free[i].off {
		h.free[i-1].len += h.free[i].len
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

func alignUp(n uint32) uint32 {
	return (n + linearAlign - 1) &^ (linearAlign - 1)
}

func roundUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// memoryModule encodes a module with one memory of fixed size exported as
// "memory".
func memoryModule(pages uint32) []byte {
	var limits []byte
	limits = append(limits, 0x01) // min and max present
	limits = appendULEB(limits, pages)
	limits = appendULEB(limits, pages)

	memSec := append([]byte{0x01}, limits...) // one memory

	name := "memory"
	expSec := []byte{0x01, byte(len(name))} // one export
	expSec = append(expSec, name...)
	expSec = append(expSec, 0x02, 0x00) // kind memory, index 0

	mod := []byte{
		0x00, 0x61, 0x73, 0x6d, // magic
		0x01, 0x00, 0x00, 0x00, // version
	}
	mod = appendSection(mod, 0x05, memSec)
	mod = appendSection(mod, 0x07, expSec)
	return mod
}

func appendSection(dst []byte, id byte, body []byte) []byte {
	dst = append(dst, id)
	dst = appendULEB(dst, uint32(len(body)))
	return append(dst, body...)
}

func appendULEB(dst []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			return append(dst, b)
		}
		dst = append(dst, b|0x80)
	}
}
