// SPDX-License-Identifier: MIT
/*
Package align recovers frame structure from raw flight-recorder byte
streams. An Aligner scans arbitrarily chunked input for the repeating
4-word synchronisation sequence, determines the words-per-second (wps)
frame size and the byte offset of each valid frame, and can re-emit only
the correctly aligned payload.

The detector is a three-state machine:

	SEARCHING: no frame size established; every byte offset is tried as a
	           sync candidate.
	LOCKED:    wps and byte alignment established; the next frame is
	           expected exactly one frame length later and re-verified.
	LOST:      a boundary check failed; scanning resumes byte-by-byte from
	           the first byte after the last confirmed frame.

An Aligner owns its buffer and offset state exclusively and must be driven
from a single goroutine. Reset restores it for reuse against a new stream.
*/
package align

import (
	"errors"
	"fmt"
	"io"

	"flightframe/internal/frame"
	applog "flightframe/internal/log"
	"flightframe/pkg/bitint"
)

// Errors surfaced by the alignment layer.
var (
	// ErrInvalidRange reports an inverted or out-of-domain start/stop word
	// range passed to Process. It is returned before any input is consumed.
	ErrInvalidRange = errors.New("invalid word range")

	// ErrSyncNotFound reports that no frame-boundary-consistent sync
	// sequence was found within the inspected window.
	ErrSyncNotFound = errors.New("no synchronised frame found")
)

// SupportedWPS lists the candidate words-per-subframe sizes in the
// ascending order they are tried. Smaller sizes win when a stream
// satisfies several simultaneously.
var SupportedWPS = []int{64, 128, 256, 512, 1024}

// Options is the immutable configuration an Aligner is constructed with.
// Substituting alternate pattern or wps sets is supported for testing;
// DefaultOptions covers the recorder formats handled in production.
type Options struct {
	Patterns     []frame.Pattern // sync patterns tried at every candidate offset
	WPS          []int           // ascending candidate subframe sizes, powers of two
	LittleEndian bool            // word byte order of the stream
}

// DefaultOptions returns the production configuration: both known patterns,
// all supported wps sizes, little-endian words.
func DefaultOptions() Options {
	return Options{
		Patterns:     frame.Patterns(),
		WPS:          SupportedWPS,
		LittleEndian: true,
	}
}

// Validate checks the option set: at least one pattern, and an ascending
// list of power-of-two wps candidates.
func (o Options) Validate() error {
	if len(o.Patterns) == 0 {
		return fmt.Errorf("options: at least one sync pattern is required")
	}
	if len(o.WPS) == 0 {
		return fmt.Errorf("options: at least one wps candidate is required")
	}
	prev := 0
	for _, wps := range o.WPS {
		if !bitint.IsPowerOfTwo(wps) {
			return fmt.Errorf("options: wps candidate %d is not a power of two", wps)
		}
		if wps <= prev {
			return fmt.Errorf("options: wps candidates must be strictly ascending, got %v", o.WPS)
		}
		prev = wps
	}
	return nil
}

// Result marks a stream position where a complete, frame-boundary-consistent
// match was found. Offsets strictly increase across a run; gaps between
// results mean sync was lost and later reacquired.
type Result struct {
	Offset  int64  // byte offset of the frame start from the beginning of the stream
	WPS     int    // detected words per subframe
	Pattern string // "Standard" or "Reversed"
}

func (r Result) String() string {
	return fmt.Sprintf("offset %d: %d wps (%s)", r.Offset, r.WPS, r.Pattern)
}

type state int

const (
	stateSearching state = iota
	stateLocked
	stateLost
)

// Aligner drives sync detection across an input stream, buffering across
// chunk boundaries transparently. Create one with New, run Identify or
// Process, and call Reset before reusing it on another stream. Concurrent
// use of a single instance is not supported.
type Aligner struct {
	opts Options

	buf *frame.Buffer
	pos int64 // absolute stream offset of the buffer front
	cur int64 // absolute stream offset of the current scan candidate

	st      state
	wps     int           // established wps while locked, 0 otherwise
	pattern frame.Pattern // established pattern while locked

	// maxSpan is the lookahead required before a candidate may be
	// evaluated mid-stream: one full frame of the largest wps candidate.
	// Waiting for it keeps detection independent of input chunking.
	maxSpan int
}

// New constructs an Aligner for the given options.
func New(opts Options) (*Aligner, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	maxWPS := opts.WPS[len(opts.WPS)-1]
	return &Aligner{
		opts:    opts,
		buf:     frame.NewBuffer(),
		maxSpan: frameBytes(maxWPS),
	}, nil
}

// Reset clears all buffer, offset and lock state so the instance can be
// reused against a new stream.
func (a *Aligner) Reset() {
	a.buf.Clear()
	a.pos = 0
	a.cur = 0
	a.st = stateSearching
	a.wps = 0
	a.pattern = frame.Pattern{}
}

// frameBytes returns the byte length of a full frame for the given wps:
// 4 subframes of wps 16-bit words each.
func frameBytes(wps int) int {
	return wps * frame.WordSize * frame.SubframesPerFrame
}

// discardToCursor drops buffered bytes the scan has permanently moved past.
func (a *Aligner) discardToCursor() {
	if n := int(a.cur - a.pos); n > 0 {
		a.buf.Truncate(n)
		a.pos = a.cur
	}
}

// frameAt tests the candidate at the buffer front against every configured
// pattern and wps size. A candidate matches wps when the cyclically-next
// sync words recur at each of the three following subframe boundaries and
// the full frame fits in the window. Returns the smallest satisfying wps.
//
// Hot path: fixed-size array access only, no allocation.
func (a *Aligner) frameAt(window []byte) (int, frame.Pattern, bool) {
	if len(window) < frame.WordSize {
		return 0, frame.Pattern{}, false
	}
	w := frame.Word(window, 0, a.opts.LittleEndian)
	for _, p := range a.opts.Patterns {
		k, ok := p.IndexOf(w)
		if !ok {
			continue
		}
		for _, wps := range a.opts.WPS {
			if frameBytes(wps) > len(window) {
				break // ascending: larger candidates cannot fit either
			}
			if a.subframesMatch(window, p, k, wps) {
				return wps, p, true
			}
		}
	}
	return 0, frame.Pattern{}, false
}

// frameAtLocked re-verifies the established pattern and wps at the buffer
// front. Any mismatch, including a different-but-valid frame size, counts
// as loss of sync; SEARCHING will reacquire whatever is really there.
func (a *Aligner) frameAtLocked(window []byte) bool {
	if frameBytes(a.wps) > len(window) || len(window) < frame.WordSize {
		return false
	}
	w := frame.Word(window, 0, a.opts.LittleEndian)
	k, ok := a.pattern.IndexOf(w)
	if !ok {
		return false
	}
	return a.subframesMatch(window, a.pattern, k, a.wps)
}

// subframesMatch checks that the sync words following position k of p
// appear at the three subsequent subframe boundaries of size wps.
func (a *Aligner) subframesMatch(window []byte, p frame.Pattern, k, wps int) bool {
	sub := wps * frame.WordSize
	for j := 1; j < frame.SubframesPerFrame; j++ {
		if frame.Word(window, sub*j, a.opts.LittleEndian) != p.Words[(k+j)%frame.SubframesPerFrame] {
			return false
		}
	}
	return true
}

// scanner pulls chunks from a Source into the aligner's buffer and steps
// the state machine one confirmed frame at a time. It is shared by the
// Identify and Process iterators.
type scanner struct {
	a   *Aligner
	src Source
	eof bool
	err error
}

// fill appends the next chunk from the source, recording exhaustion or a
// read error. Empty chunks are tolerated.
func (s *scanner) fill() {
	chunk, err := s.src.NextChunk()
	if len(chunk) > 0 {
		s.a.buf.Add(chunk)
	}
	if err != nil {
		if !errors.Is(err, io.EOF) {
			s.err = err
		}
		s.eof = true
	}
}

// nextFrame advances the scan to the next confirmed frame. The returned
// byte slice is a view of the full frame, valid until the next call. ok is
// false once the input is exhausted with no further frame; any read error
// is left in s.err.
func (s *scanner) nextFrame() (Result, []byte, bool) {
	a := s.a
	minFrame := frameBytes(a.opts.WPS[0])

	for {
		a.discardToCursor()

		// Mid-stream a candidate is only judged once the maximal lookahead
		// is buffered; at end of input, whatever remains decides.
		if !s.eof && a.buf.Size() < a.maxSpan {
			s.fill()
			continue
		}

		window := a.buf.Peek(a.buf.Size())

		if a.st == stateLocked {
			if a.frameAtLocked(window) {
				res := Result{Offset: a.cur, WPS: a.wps, Pattern: a.pattern.Name}
				fb := window[:frameBytes(a.wps)]
				a.cur += int64(frameBytes(a.wps))
				return res, fb, true
			}
			// Boundary check failed: drop the established frame size and
			// resume byte-by-byte from the end of the last good frame.
			applog.Debugf("align: sync lost at byte %d (was %d wps, %s)", a.cur, a.wps, a.pattern.Name)
			a.st = stateLost
			a.wps = 0
			a.pattern = frame.Pattern{}
		}

		if wps, p, ok := a.frameAt(window); ok {
			a.st = stateLocked
			a.wps = wps
			a.pattern = p
			applog.Debugf("align: sync acquired at byte %d (%d wps, %s)", a.cur, wps, p.Name)
			res := Result{Offset: a.cur, WPS: wps, Pattern: p.Name}
			fb := window[:frameBytes(wps)]
			a.cur += int64(frameBytes(wps))
			return res, fb, true
		}

		if s.eof && len(window) < minFrame {
			// Tail too short to ever complete a frame; discard it.
			return Result{}, nil, false
		}
		a.cur++
	}
}

// Iter is a lazy, finite, non-restartable sequence of detection results
// produced by Identify. It scans the input exactly once.
type Iter struct {
	s    scanner
	done bool
}

// Identify scans the entire input once and produces one Result per
// confirmed frame. The input may be chunked arbitrarily; results are
// identical regardless of chunk sizes.
func (a *Aligner) Identify(src Source) *Iter {
	return &Iter{s: scanner{a: a, src: src}}
}

// Next returns the next detection result, or ok=false once the stream is
// exhausted. After exhaustion check Err for a read failure.
func (it *Iter) Next() (Result, bool) {
	if it.done {
		return Result{}, false
	}
	res, _, ok := it.s.nextFrame()
	if !ok {
		it.done = true
		return Result{}, false
	}
	return res, true
}

// Err reports a source read error encountered during iteration, if any.
// End of input is not an error.
func (it *Iter) Err() error {
	return it.s.err
}

// Frames is a lazy sequence of aligned payload chunks produced by Process.
// Concatenating every chunk reconstructs the aligned data stream with
// leading, trailing and mid-stream unaligned bytes stripped.
type Frames struct {
	s     scanner
	start int64 // first aligned word index to emit
	stop  int64 // one past the last aligned word index, -1 for unbounded
	words int64 // aligned words seen so far
	done  bool
}

// Process scans the input and re-emits only correctly frame-aligned
// payload, optionally restricted to the [start, stop) range of aligned
// word indexes. Nil bounds mean unbounded. Invalid bounds (negative start,
// stop <= 0, stop <= start) fail immediately with ErrInvalidRange before
// any input is consumed.
func (a *Aligner) Process(src Source, start, stop *int64) (*Frames, error) {
	if start != nil && *start < 0 {
		return nil, fmt.Errorf("%w: start %d is negative", ErrInvalidRange, *start)
	}
	if stop != nil && *stop <= 0 {
		return nil, fmt.Errorf("%w: stop %d is not positive", ErrInvalidRange, *stop)
	}
	if start != nil && stop != nil && *stop <= *start {
		return nil, fmt.Errorf("%w: stop %d is not after start %d", ErrInvalidRange, *stop, *start)
	}
	f := &Frames{s: scanner{a: a, src: src}, stop: -1}
	if start != nil {
		f.start = *start
	}
	if stop != nil {
		f.stop = *stop
	}
	return f, nil
}

// Next returns the next aligned payload chunk as a stable copy, or
// ok=false once the stream or the requested range is exhausted.
func (f *Frames) Next() ([]byte, bool) {
	for !f.done {
		if f.stop >= 0 && f.words >= f.stop {
			f.done = true
			break
		}
		res, fb, ok := f.s.nextFrame()
		if !ok {
			f.done = true
			break
		}

		// The frame covers aligned word indexes [first, last).
		first := f.words
		last := first + int64(res.WPS*frame.SubframesPerFrame)
		f.words = last

		lo, hi := first, last
		if f.start > lo {
			lo = f.start
		}
		if f.stop >= 0 && f.stop < hi {
			hi = f.stop
		}
		if lo >= hi {
			continue // frame lies entirely outside the requested range
		}

		out := make([]byte, (hi-lo)*frame.WordSize)
		copy(out, fb[(lo-first)*frame.WordSize:(hi-first)*frame.WordSize])
		return out, true
	}
	return nil, false
}

// Err reports a source read error encountered during iteration, if any.
func (f *Frames) Err() error {
	return f.s.err
}
