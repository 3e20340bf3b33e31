package core

import (
	"encoding/binary"
	"unsafe"

	"github.com/sarchlab/broas/errs"
)

// Word is the machine word. It holds integers and address handles alike.
type Word int64

// WordSize is the size of a word in bytes.
const WordSize = 8

// AddressBase is the handle of the first byte of the store. Handles are
// offsets shifted by AddressBase, which keeps them clear of small integers.
const AddressBase Word = 1 << 40

// DefaultMemorySize is the default number of memory words.
const DefaultMemorySize = 1024

// Memory is a flat array of words followed by an arena holding the
// invocation arguments. Both live in one byte store so that a handle taken
// with Ref can be read back byte by byte with Deref.
type Memory struct {
	words int
	store []byte
}

// NewMemory allocates size words and seeds them with args: word 0 holds the
// argument count and words 1..len(args) hold handles of NUL terminated
// copies of the arguments.
func NewMemory(size int, args []string) (*Memory, error) {
	if size < len(args)+1 {
		return nil, errs.HostFault.New(
			"memory of %d words cannot hold %d arguments", size, len(args))
	}

	arena := 0
	for _, a := range args {
		arena += len(a) + 1
	}

	m := &Memory{
		words: size,
		store: make([]byte, size*WordSize+arena),
	}

	m.put(0, Word(len(args)))
	off := size * WordSize
	for i, a := range args {
		copy(m.store[off:], a)
		m.put(i+1, AddressBase+Word(off))
		off += len(a) + 1
	}

	return m, nil
}

// Size returns the number of words.
func (m *Memory) Size() int {
	return m.words
}

func (m *Memory) put(i int, v Word) {
	binary.LittleEndian.PutUint64(m.store[i*WordSize:], uint64(v))
}

func (m *Memory) get(i int) Word {
	return Word(binary.LittleEndian.Uint64(m.store[i*WordSize:]))
}

func (m *Memory) index(i Word) (int, error) {
	if i < 0 || i >= Word(m.words) {
		return 0, errs.HostFault.New(
			"memory index %d out of range [0, %d)", i, m.words)
	}
	return int(i), nil
}

// Load returns word i.
func (m *Memory) Load(i Word) (Word, error) {
	idx, err := m.index(i)
	if err != nil {
		return 0, err
	}
	return m.get(idx), nil
}

// Store sets word i.
func (m *Memory) Store(i Word, v Word) error {
	idx, err := m.index(i)
	if err != nil {
		return err
	}
	m.put(idx, v)
	return nil
}

// Ref returns the handle of word i.
func (m *Memory) Ref(i Word) (Word, error) {
	idx, err := m.index(i)
	if err != nil {
		return 0, err
	}
	return AddressBase + Word(idx*WordSize), nil
}

// Bytes returns n bytes of the store starting at handle addr.
func (m *Memory) Bytes(addr Word, n int) ([]byte, error) {
	off := addr - AddressBase
	if n < 0 || off < 0 || off > Word(len(m.store)) ||
		Word(n) > Word(len(m.store))-off {
		return nil, errs.HostFault.New(
			"address %#x+%d outside of memory", int64(addr), n)
	}
	return m.store[off : off+Word(n)], nil
}

// Deref reads width bytes at handle addr as a little endian unsigned
// integer. Width must be between 0 and WordSize.
func (m *Memory) Deref(addr Word, width Word) (Word, error) {
	if width < 0 || width > WordSize {
		return 0, errs.HostFault.New(
			"deref width %d out of range [0, %d]", width, WordSize)
	}

	b, err := m.Bytes(addr, int(width))
	if err != nil {
		return 0, err
	}

	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return Word(v), nil
}

// CString reads the NUL terminated string at handle addr.
func (m *Memory) CString(addr Word) (string, error) {
	off := addr - AddressBase
	if off < 0 || off >= Word(len(m.store)) {
		return "", errs.HostFault.New("address %#x outside of memory", int64(addr))
	}

	end := off
	for end < Word(len(m.store)) && m.store[end] != 0 {
		end++
	}
	return string(m.store[off:end]), nil
}

// Pointer translates a handle into a host pointer into the store. It
// reports false for words that are not handles.
func (m *Memory) Pointer(w Word) (unsafe.Pointer, bool) {
	off := w - AddressBase
	if off < 0 || off >= Word(len(m.store)) {
		return nil, false
	}
	return unsafe.Pointer(&m.store[off]), true
}
