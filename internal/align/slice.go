// SPDX-License-Identifier: MIT
package align

import (
	"fmt"
	"io"
	"os"

	"flightframe/internal/frame"
	applog "flightframe/internal/log"
	"flightframe/pkg/bitint"
)

// Slice extraction defaults.
const (
	// DefaultSliceWords is the size of the inspection window, in 16-bit
	// words, scanned to establish wps before slicing.
	DefaultSliceWords = 65536

	// DefaultSliceBuffer is the copy buffer size in bytes. The slice is
	// copied in buffered chunks so arbitrarily large recorder files never
	// have to fit in memory.
	DefaultSliceBuffer = 1 << 20
)

// SliceOptions selects the time range and tuning knobs for SliceFile.
type SliceOptions struct {
	Start       int64   // slice start in seconds from the beginning of the file
	Stop        int64   // slice stop in seconds, exclusive
	WordsToRead int     // inspection window in words; 0 means DefaultSliceWords
	BufferSize  int     // copy buffer in bytes, rounded up to a power of two; 0 means DefaultSliceBuffer
	Aligner     Options // detector configuration; zero value means DefaultOptions
}

// SliceFile copies the byte range of src corresponding to the [Start, Stop)
// second interval into a newly created dst. The frame size is established
// by a single identification pass over the initial inspection window;
// bytes-per-second is wps * 2. Fails with ErrSyncNotFound, and writes
// nothing, if no valid frame is found within the window.
func SliceFile(src, dst string, opts SliceOptions) error {
	if opts.Stop <= opts.Start || opts.Start < 0 {
		return fmt.Errorf("%w: slice [%d, %d) seconds", ErrInvalidRange, opts.Start, opts.Stop)
	}
	if opts.WordsToRead <= 0 {
		opts.WordsToRead = DefaultSliceWords
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultSliceBuffer
	} else {
		opts.BufferSize = bitint.NextPowerOfTwo(opts.BufferSize)
	}
	if len(opts.Aligner.Patterns) == 0 {
		opts.Aligner = DefaultOptions()
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer in.Close()

	wps, err := inspectWPS(in, opts.WordsToRead, opts.Aligner)
	if err != nil {
		return fmt.Errorf("%w in the first %d words of %s", err, opts.WordsToRead, src)
	}
	bytesPerSecond := int64(wps * frame.WordSize)

	startByte := opts.Start * bytesPerSecond
	length := (opts.Stop - opts.Start) * bytesPerSecond
	applog.Infof("slice: %d wps detected, copying %d bytes from offset %d", wps, length, startByte)

	if _, err := in.Seek(startByte, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek source file: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer out.Close()

	copyBuf := make([]byte, opts.BufferSize)
	copied, err := io.CopyBuffer(out, io.LimitReader(in, length), copyBuf)
	if err != nil {
		return fmt.Errorf("failed to copy slice: %w", err)
	}
	if copied < length {
		applog.Warnf("slice: source ended early, wrote %d of %d bytes", copied, length)
	}
	return out.Close()
}

// inspectWPS runs one identification pass over the first wordsToRead words
// of r and returns the detected frame size.
func inspectWPS(r io.Reader, wordsToRead int, opts Options) (int, error) {
	window := make([]byte, wordsToRead*frame.WordSize)
	n, err := io.ReadFull(r, window)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("failed to read inspection window: %w", err)
	}

	a, err := New(opts)
	if err != nil {
		return 0, err
	}
	res, ok := a.Identify(NewBytesSource(window[:n])).Next()
	if !ok {
		return 0, ErrSyncNotFound
	}
	return res.WPS, nil
}
