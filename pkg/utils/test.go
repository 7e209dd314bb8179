// SPDX-License-Identifier: MIT
// Package utils holds shared test fixtures: synthetic recorder streams
// with known sync structure, and a mock transport for inspecting published
// detection results.
package utils

import (
	"encoding/binary"

	"flightframe/internal/frame"
)

// MockTransport implements the transport.Transport interface for testing.
type MockTransport struct {
	Sent     []any // Every payload passed to Send, in order
	LastData any   // Convenience alias for the most recent payload
	Closed   bool
}

// Send stores the data for later inspection instead of transmitting.
func (m *MockTransport) Send(data any) error {
	m.Sent = append(m.Sent, data)
	m.LastData = data
	return nil
}

// Close records that the transport was shut down.
func (m *MockTransport) Close() error {
	m.Closed = true
	return nil
}

// fillerWord returns a 16-bit payload value for position i that can never
// collide with a sync word: all sync words are below 0x1000, so anything
// with the top nibble set is safe.
func fillerWord(i int) uint16 {
	return 0xF000 | uint16(i&0x0FFF)
}

// FrameStream builds a synthetic byte stream of the given number of
// complete frames for pattern p: every subframe of wps words starts with
// the expected sync word and is padded with non-sync filler.
func FrameStream(p frame.Pattern, wps, frames int, littleEndian bool) []byte {
	buf := make([]byte, 0, frames*frame.SubframesPerFrame*wps*frame.WordSize)
	word := make([]byte, frame.WordSize)

	put := func(w uint16) {
		if littleEndian {
			binary.LittleEndian.PutUint16(word, w)
		} else {
			binary.BigEndian.PutUint16(word, w)
		}
		buf = append(buf, word...)
	}

	for f := 0; f < frames; f++ {
		for sf := 0; sf < frame.SubframesPerFrame; sf++ {
			put(p.Words[sf])
			for i := 1; i < wps; i++ {
				put(fillerWord(f*1000 + sf*100 + i))
			}
		}
	}
	return buf
}

// Masking returns n bytes of 0xFF filler. 0xFFFF is not a sync word in
// either byte order, so masking sections can never produce a false lock,
// including across boundaries with frame data.
func Masking(n int) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = 0xFF
	}
	return buf
}

// SplitChunks slices data into pieces of the given sizes, in rotation,
// until the data is exhausted. Used to exercise chunk-boundary handling.
func SplitChunks(data []byte, sizes ...int) [][]byte {
	if len(sizes) == 0 {
		return [][]byte{data}
	}
	var chunks [][]byte
	for i := 0; len(data) > 0; i++ {
		n := sizes[i%len(sizes)]
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}
