package nexus

// MemBlock is a resizable byte region backing an Image. It either owns its
// storage or wraps a foreign slice handed in by the caller; wrapped blocks
// never reallocate behind the caller's back.
type MemBlock struct {
	Data []byte // len(Data) is the current size

	capacity int
	owned    bool
}

// NewMemBlock returns an empty owned block.
func NewMemBlock() *MemBlock {
	return &MemBlock{owned: true}
}

// Size returns the current size of the block in bytes.
func (m *MemBlock) Size() int { return len(m.Data) }

// Capacity returns the number of bytes the block can hold without growing.
func (m *MemBlock) Capacity() int { return m.capacity }

// Owned reports whether the block owns its storage. Wrapped blocks return
// false and are never grown in place.
func (m *MemBlock) Owned() bool { return m.owned }

// Resize sets the block size to n bytes. Owned blocks grow their capacity
// by at least a factor of two when the current capacity is insufficient.
// Growing a wrapped block past its capacity reclaims ownership with a fresh
// allocation; the foreign bytes are not copied.
func (m *MemBlock) Resize(n int) {
	if n < 0 {
		panic("nexus: negative MemBlock size")
	}
	if n > m.capacity {
		newCap := 2 * m.capacity
		if newCap < n {
			newCap = n
		}
		buf := make([]byte, newCap)
		if m.owned {
			copy(buf, m.Data)
		}
		m.Data = buf[:n]
		m.capacity = newCap
		m.owned = true
		return
	}
	m.Data = m.Data[:n:m.capacity]
}

// Wrap adopts the given slice as the block's storage. When owned is false
// the block treats the bytes as foreign and Release leaves them untouched.
func (m *MemBlock) Wrap(data []byte, owned bool) {
	m.Data = data
	m.capacity = cap(data)
	m.owned = owned
}

// Release drops the block's storage and resets it to an empty owned block.
func (m *MemBlock) Release() {
	m.Data = nil
	m.capacity = 0
	m.owned = true
}

// SetZero zeroes the block contents.
func (m *MemBlock) SetZero() {
	clear(m.Data)
}

// CopyFrom duplicates the contents and size of src into m, growing as
// needed.
func (m *MemBlock) CopyFrom(src *MemBlock) {
	m.Resize(len(src.Data))
	copy(m.Data, src.Data)
}

// Swap exchanges the storage of two blocks, moving ownership with it.
func (m *MemBlock) Swap(other *MemBlock) {
	*m, *other = *other, *m
}
