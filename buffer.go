package godc

// Buffer is the growable byte vector used by Device.Dump to accumulate an
// entire memory image (spec §2). It is a thin, allocation-aware wrapper
// around a []byte rather than a bare slice so family backends can Reserve
// up front (the way the teacher's decode helpers size a buffer from a
// record's declared Datasize before reading into it).
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty Buffer with capacity reserved up front.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, 0, capacity)}
}

// Clear empties the buffer without releasing its backing array.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

// Reserve grows the backing array's capacity to at least n bytes.
func (b *Buffer) Reserve(n int) {
	if cap(b.data) >= n {
		return
	}
	grown := make([]byte, len(b.data), n)
	copy(grown, b.data)
	b.data = grown
}

// Resize sets the buffer's length to n, zero-filling any newly exposed bytes.
func (b *Buffer) Resize(n int) {
	if n <= len(b.data) {
		b.data = b.data[:n]
		return
	}
	b.Reserve(n)
	b.data = b.data[:n]
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) {
	b.data = append(b.data, p...)
}

// Get returns the buffer's current contents. The returned slice aliases the
// buffer's backing array; callers that need to retain it past the next
// mutation must copy it.
func (b *Buffer) Get() []byte {
	return b.data
}

// Len reports the number of bytes currently held.
func (b *Buffer) Len() int {
	return len(b.data)
}
