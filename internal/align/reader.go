// SPDX-License-Identifier: MIT
package align

import (
	"fmt"
	"io"
	"os"
)

// DefaultChunkSize is the read size used by the reader-backed sources when
// the caller does not specify one.
const DefaultChunkSize = 16 * 1024

// Source yields successive byte chunks of a raw data stream. NextChunk
// returns io.EOF once the stream is exhausted; chunks may be of any size,
// including empty. Returned slices may be reused by the source after the
// next call — consumers copy what they keep (the Aligner buffers
// internally).
type Source interface {
	NextChunk() ([]byte, error)
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource wraps an io.Reader as a Source reading chunkSize bytes at
// a time. A non-positive chunkSize falls back to DefaultChunkSize.
func NewReaderSource(r io.Reader, chunkSize int) Source {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &readerSource{r: r, buf: make([]byte, chunkSize)}
}

func (s *readerSource) NextChunk() ([]byte, error) {
	n, err := s.r.Read(s.buf)
	if n > 0 {
		// Defer the error to the next call so the final short read is
		// delivered on its own.
		return s.buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}

type bytesSource struct {
	data []byte
	done bool
}

// NewBytesSource yields the given data as a single chunk.
func NewBytesSource(data []byte) Source {
	return &bytesSource{data: data}
}

func (s *bytesSource) NextChunk() ([]byte, error) {
	if s.done {
		return nil, io.EOF
	}
	s.done = true
	return s.data, nil
}

type chunksSource struct {
	chunks [][]byte
	next   int
}

// NewChunksSource yields the given chunks in order. Used heavily in tests
// to exercise chunk-boundary handling.
func NewChunksSource(chunks ...[]byte) Source {
	return &chunksSource{chunks: chunks}
}

func (s *chunksSource) NextChunk() ([]byte, error) {
	if s.next >= len(s.chunks) {
		return nil, io.EOF
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

// FileSource is a Source reading a recorder file in fixed-size chunks.
// Close releases the underlying file.
type FileSource struct {
	f *os.File
	Source
}

// OpenFileSource opens path for chunked reading.
func OpenFileSource(path string, chunkSize int) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	return &FileSource{f: f, Source: NewReaderSource(f, chunkSize)}, nil
}

// Close closes the underlying file.
func (s *FileSource) Close() error {
	return s.f.Close()
}
