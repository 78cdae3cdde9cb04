package memory

import (
	"unsafe"
)

// String is a byte string whose buffer lives in host memory. The header stays
// on the Go side; only the bytes are allocated through an Allocator[byte].
//
// A String owns its buffer. Copy it with Clone, hand it over with Move and
// give the buffer back with Free.
type String struct {
	alloc Allocator[byte]
	buf   *byte
	len   int
	cap   int
}

// NewString returns an empty String that will allocate through alloc.
// Empty strings hold no host storage.
func NewString(alloc Allocator[byte]) String {
	return String{alloc: alloc}
}

// CopyString returns a String whose contents equal s.
func CopyString(mem Memory, s string) (String, error) {
	str := NewString(NewAllocator[byte](mem))
	if err := str.Assign(s); err != nil {
		return String{}, err
	}
	return str, nil
}

// Allocator returns the allocator backing the string.
func (s *String) Allocator() Allocator[byte] {
	return s.alloc
}

// Len returns the number of bytes in the string.
func (s *String) Len() int {
	return s.len
}

// Cap returns the capacity of the host buffer.
func (s *String) Cap() int {
	return s.cap
}

// Bytes returns a view of the host buffer. It is valid until the next
// mutation or Free.
func (s *String) Bytes() []byte {
	if s.buf == nil {
		return nil
	}
	return unsafe.Slice(s.buf, s.len)
}

// String returns a Go copy of the contents.
func (s *String) String() string {
	return string(s.Bytes())
}

// Equal compares contents.
func (s *String) Equal(other *String) bool {
	return string(s.Bytes()) == string(other.Bytes())
}

// Reserve makes room for at least n bytes.
func (s *String) Reserve(n int) error {
	if n <= s.cap {
		return nil
	}
	newCap := max(n, 2*s.cap)
	buf, err := s.alloc.Allocate(newCap)
	if err != nil {
		return err
	}
	if s.len > 0 {
		copy(unsafe.Slice(buf, newCap), s.Bytes())
	}
	s.alloc.Deallocate(s.buf, s.cap)
	s.buf, s.cap = buf, newCap
	return nil
}

// Assign replaces the contents with v. On failure the string is unchanged.
func (s *String) Assign(v string) error {
	if len(v) > s.cap {
		buf, err := s.alloc.Allocate(len(v))
		if err != nil {
			return err
		}
		s.alloc.Deallocate(s.buf, s.cap)
		s.buf, s.cap = buf, len(v)
	}
	if len(v) > 0 {
		copy(unsafe.Slice(s.buf, s.cap), v)
	}
	s.len = len(v)
	return nil
}

// Append adds v to the end. On failure the string is unchanged.
func (s *String) Append(v string) error {
	if len(v) == 0 {
		return nil
	}
	if err := s.Reserve(s.len + len(v)); err != nil {
		return err
	}
	copy(unsafe.Slice(s.buf, s.cap)[s.len:], v)
	s.len += len(v)
	return nil
}

// Clone returns an independent copy using the same allocator.
func (s *String) Clone() (String, error) {
	c := NewString(s.alloc)
	if err := c.Assign(s.String()); err != nil {
		return String{}, err
	}
	return c, nil
}

// Move transfers the buffer to a new String and leaves s empty.
func (s *String) Move() String {
	m := *s
	s.buf, s.len, s.cap = nil, 0, 0
	return m
}

// Free releases the host buffer and leaves s empty.
func (s *String) Free() {
	s.alloc.Deallocate(s.buf, s.cap)
	s.buf, s.len, s.cap = nil, 0, 0
}
