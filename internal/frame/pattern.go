// SPDX-License-Identifier: MIT
/*
Package frame provides the innermost primitives for byte-aligned
flight-data-frame synchronisation:
- Sync pattern constants (standard and bit-reversed word order)
- 16-bit word access over raw byte slices
- A growable, front-consumable byte buffer for chunked scanning

Everything here is allocation-free on the scan path. The outer
state machine (SEARCHING/LOCKED/LOST) lives in package align.
*/
package frame

import "encoding/binary"

// A frame consists of four subframes. Each subframe starts with one sync
// word, so a full frame carries the complete 4-word sync sequence.
const (
	SubframesPerFrame = 4
	WordSize          = 2 // bytes per 16-bit word
)

// Pattern is an immutable ordered 4-tuple of 16-bit sync words expected at
// the start of four consecutive subframes.
type Pattern struct {
	Name  string
	Words [SubframesPerFrame]uint16
}

// The two known sync sequences. Reversed is the bit-order-reversed form of
// Standard and is used to auto-detect recorders that store words with the
// opposite bit order.
var (
	Standard = Pattern{Name: "Standard", Words: [4]uint16{0x0247, 0x05B8, 0x0A47, 0x0DB8}}
	Reversed = Pattern{Name: "Reversed", Words: [4]uint16{0x0E24, 0x01DA, 0x0E25, 0x01DB}}
)

// Patterns returns the default pattern set in detection order.
func Patterns() []Pattern {
	return []Pattern{Standard, Reversed}
}

// IndexOf returns the position (0-3) of w within the pattern's sync
// sequence, or false if w is not one of its sync words.
func (p Pattern) IndexOf(w uint16) (int, bool) {
	// Fixed-size array scan, no allocation.
	for i := range p.Words {
		if p.Words[i] == w {
			return i, true
		}
	}
	return 0, false
}

// Next returns the sync word following position idx, cyclically modulo 4.
func (p Pattern) Next(idx int) uint16 {
	return p.Words[(idx+1)%SubframesPerFrame]
}

// Word assembles the 16-bit word at byte offset idx of buf. Flight recorders
// covered here store words little-endian; littleEndian=false is provided for
// diagnostic use against big-endian captures.
// The caller guarantees idx+2 <= len(buf).
func Word(buf []byte, idx int, littleEndian bool) uint16 {
	if littleEndian {
		return binary.LittleEndian.Uint16(buf[idx : idx+2])
	}
	return binary.BigEndian.Uint16(buf[idx : idx+2])
}
