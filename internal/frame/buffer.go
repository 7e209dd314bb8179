// SPDX-License-Identifier: MIT
package frame

// compactThreshold is the number of consumed front bytes after which Add
// shifts the remaining data down instead of letting the backing array grow.
const compactThreshold = 64 * 1024

// Buffer accumulates incoming byte chunks into a growable store that is
// consumed from the front. It supports non-destructive lookahead (Peek),
// destructive consumption (Read) and front truncation (Truncate) so a
// scanner can bridge chunk boundaries without re-reading its source.
//
// Not safe for concurrent use; the owning detector drives it sequentially.
type Buffer struct {
	data []byte
	off  int // consumed front bytes, data[off:] is live
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Size returns the number of unread bytes.
func (b *Buffer) Size() int {
	return len(b.data) - b.off
}

// Add appends chunk to the end of the buffer. Empty input is a no-op.
func (b *Buffer) Add(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if b.off >= compactThreshold && b.off >= b.Size() {
		// Reclaim the consumed front before growing further. This moves the
		// live region, which is why Peek views are only valid until the
		// next mutating call.
		n := copy(b.data, b.data[b.off:])
		b.data = b.data[:n]
		b.off = 0
	}
	b.data = append(b.data, chunk...)
}

// Peek returns up to n bytes from the front without consuming them. Fewer
// than n (possibly zero) bytes are returned if less data is buffered; it
// never fails for under-supply. The returned slice is a view into the
// buffer, valid only until the next call to Add, Read or Clear.
func (b *Buffer) Peek(n int) []byte {
	if n <= 0 {
		return nil
	}
	if avail := b.Size(); n > avail {
		n = avail
	}
	return b.data[b.off : b.off+n]
}

// Read returns and removes up to n bytes from the front. The returned slice
// is a stable copy. Semantics otherwise match Peek: short reads for
// under-supply, empty result for n <= 0.
func (b *Buffer) Read(n int) []byte {
	view := b.Peek(n)
	if len(view) == 0 {
		return nil
	}
	out := make([]byte, len(view))
	copy(out, view)
	b.off += len(view)
	return out
}

// Truncate discards up to n bytes from the front without returning them.
// Negative n is a no-op; n greater than Size empties the buffer.
func (b *Buffer) Truncate(n int) {
	if n <= 0 {
		return
	}
	if avail := b.Size(); n > avail {
		n = avail
	}
	b.off += n
}

// Clear empties the buffer and releases the backing array.
func (b *Buffer) Clear() {
	b.data = nil
	b.off = 0
}
