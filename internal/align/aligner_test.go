// SPDX-License-Identifier: MIT
package align

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"flightframe/internal/frame"
	"flightframe/pkg/utils"
)

// collectResults drains an Identify run into a slice.
func collectResults(t *testing.T, opts Options, src Source) []Result {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	it := a.Identify(src)
	var out []Result
	for {
		res, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, res)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("Identify iteration: %v", err)
	}
	return out
}

// collectFrames drains a Process run into one concatenated byte slice.
func collectFrames(t *testing.T, opts Options, src Source, start, stop *int64) []byte {
	t.Helper()
	a, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frames, err := a.Process(src, start, stop)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	var out []byte
	for {
		chunk, ok := frames.Next()
		if !ok {
			break
		}
		out = append(out, chunk...)
	}
	if err := frames.Err(); err != nil {
		t.Fatalf("Process iteration: %v", err)
	}
	return out
}

func TestIdentifyAllSizesAndPatterns(t *testing.T) {
	for _, p := range frame.Patterns() {
		for _, wps := range SupportedWPS {
			t.Run(fmt.Sprintf("%s/%d", p.Name, wps), func(t *testing.T) {
				stream := utils.FrameStream(p, wps, 3, true)
				results := collectResults(t, DefaultOptions(), NewBytesSource(stream))

				if len(results) != 3 {
					t.Fatalf("wps %d: got %d results, want 3", wps, len(results))
				}
				fb := int64(frameBytes(wps))
				for i, res := range results {
					want := Result{Offset: int64(i) * fb, WPS: wps, Pattern: p.Name}
					if res != want {
						t.Errorf("wps %d result %d = %+v, want %+v", wps, i, res, want)
					}
				}
			})
		}
	}
}

func TestIdentifyLeadingGarbage(t *testing.T) {
	stream := append(utils.Masking(537), utils.FrameStream(frame.Standard, 128, 2, true)...)
	results := collectResults(t, DefaultOptions(), NewBytesSource(stream))

	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Offset != 537 {
		t.Errorf("first offset = %d, want 537", results[0].Offset)
	}
	if results[1].Offset != 537+int64(frameBytes(128)) {
		t.Errorf("second offset = %d, want %d", results[1].Offset, 537+frameBytes(128))
	}
}

func TestIdentifyBigEndianWords(t *testing.T) {
	opts := DefaultOptions()
	opts.LittleEndian = false
	stream := utils.FrameStream(frame.Reversed, 64, 2, false)
	results := collectResults(t, opts, NewBytesSource(stream))

	if len(results) != 2 || results[0].WPS != 64 || results[0].Pattern != "Reversed" {
		t.Fatalf("big-endian scan got %+v", results)
	}
}

func TestIdentifyChunkInvariance(t *testing.T) {
	stream := append(utils.Masking(537), utils.FrameStream(frame.Standard, 64, 4, true)...)
	want := collectResults(t, DefaultOptions(), NewBytesSource(stream))
	if len(want) == 0 {
		t.Fatal("reference scan found nothing")
	}

	chunkings := [][]int{
		{1},
		{7},
		{512, 13},
		{16384},
	}
	for _, sizes := range chunkings {
		src := NewChunksSource(utils.SplitChunks(stream, sizes...)...)
		got := collectResults(t, DefaultOptions(), src)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("chunk sizes %v: results %+v, want %+v", sizes, got, want)
		}
	}
}

func TestIdentifyReacquiresAfterGap(t *testing.T) {
	full := utils.FrameStream(frame.Standard, 64, 2, true)
	fb := frameBytes(64)
	frame1, frame2 := full[:fb], full[fb:]

	var stream []byte
	stream = append(stream, utils.Masking(537)...)
	stream = append(stream, frame1...)
	stream = append(stream, utils.Masking(258)...)
	stream = append(stream, frame2...)
	stream = append(stream, utils.Masking(210)...)

	results := collectResults(t, DefaultOptions(), NewBytesSource(stream))
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2: %+v", len(results), results)
	}
	if results[0].Offset != 537 {
		t.Errorf("first offset = %d, want 537", results[0].Offset)
	}
	wantSecond := int64(537 + fb + 258)
	if results[1].Offset != wantSecond {
		t.Errorf("second offset = %d, want %d", results[1].Offset, wantSecond)
	}
}

func TestIdentifyPartialTrailingFrame(t *testing.T) {
	stream := utils.FrameStream(frame.Standard, 64, 2, true)
	partial := utils.FrameStream(frame.Standard, 64, 1, true)
	stream = append(stream, partial[:frameBytes(64)/2]...)

	results := collectResults(t, DefaultOptions(), NewBytesSource(stream))
	if len(results) != 2 {
		t.Errorf("truncated trailing frame was reported: %+v", results)
	}
}

func TestIdentifyNoSync(t *testing.T) {
	results := collectResults(t, DefaultOptions(), NewBytesSource(utils.Masking(4096)))
	if len(results) != 0 {
		t.Errorf("masking-only stream produced results: %+v", results)
	}
}

func TestIdentifySourceError(t *testing.T) {
	readErr := errors.New("device gone")
	src := &errorSource{chunks: [][]byte{utils.Masking(100)}, err: readErr}

	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	it := a.Identify(src)
	for {
		if _, ok := it.Next(); !ok {
			break
		}
	}
	if !errors.Is(it.Err(), readErr) {
		t.Errorf("Err() = %v, want %v", it.Err(), readErr)
	}
}

// errorSource yields its chunks, then a read error.
type errorSource struct {
	chunks [][]byte
	err    error
	next   int
}

func (s *errorSource) NextChunk() ([]byte, error) {
	if s.next >= len(s.chunks) {
		return nil, s.err
	}
	c := s.chunks[s.next]
	s.next++
	return c, nil
}

func TestResetReusesAligner(t *testing.T) {
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	run := func(stream []byte) []Result {
		it := a.Identify(NewBytesSource(stream))
		var out []Result
		for {
			res, ok := it.Next()
			if !ok {
				break
			}
			out = append(out, res)
		}
		return out
	}

	first := utils.FrameStream(frame.Standard, 64, 2, true)
	second := utils.FrameStream(frame.Reversed, 256, 2, true)

	got1 := run(first)
	a.Reset()
	got2 := run(second)
	a.Reset()
	got3 := run(first)

	if len(got1) != 2 || len(got2) != 2 {
		t.Fatalf("runs found %d and %d results, want 2 each", len(got1), len(got2))
	}
	if got2[0].WPS != 256 || got2[0].Pattern != "Reversed" {
		t.Errorf("second run result = %+v", got2[0])
	}
	if !reflect.DeepEqual(got1, got3) {
		t.Errorf("rerun after Reset differs: %+v vs %+v", got1, got3)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"no patterns", Options{WPS: []int{64}}},
		{"no wps", Options{Patterns: frame.Patterns()}},
		{"non power of two", Options{Patterns: frame.Patterns(), WPS: []int{96}}},
		{"descending", Options{Patterns: frame.Patterns(), WPS: []int{128, 64}}},
		{"duplicate", Options{Patterns: frame.Patterns(), WPS: []int{64, 64}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opts); err == nil {
				t.Errorf("New accepted %+v", tt.opts)
			}
		})
	}
}

func TestProcessInvalidRanges(t *testing.T) {
	i64 := func(v int64) *int64 { return &v }

	tests := []struct {
		name  string
		start *int64
		stop  *int64
	}{
		{"negative start", i64(-1), nil},
		{"zero stop", nil, i64(0)},
		{"negative stop", nil, i64(-5)},
		{"equal bounds", i64(5), i64(5)},
		{"inverted bounds", i64(7), i64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := New(DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			src := &countingSource{src: NewBytesSource(utils.FrameStream(frame.Standard, 64, 1, true))}
			_, err = a.Process(src, tt.start, tt.stop)
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Process error = %v, want ErrInvalidRange", err)
			}
			if src.calls != 0 {
				t.Errorf("input consumed before validation: %d reads", src.calls)
			}
		})
	}
}

// countingSource counts NextChunk calls.
type countingSource struct {
	src   Source
	calls int
}

func (c *countingSource) NextChunk() ([]byte, error) {
	c.calls++
	return c.src.NextChunk()
}

func TestProcessStripsUnalignedBytes(t *testing.T) {
	full := utils.FrameStream(frame.Standard, 64, 2, true)
	fb := frameBytes(64)
	frame1, frame2 := full[:fb], full[fb:]

	var stream []byte
	stream = append(stream, utils.Masking(537)...)
	stream = append(stream, frame1...)
	stream = append(stream, utils.Masking(258)...)
	stream = append(stream, frame2...)
	stream = append(stream, utils.Masking(210)...)

	got := collectFrames(t, DefaultOptions(), NewBytesSource(stream), nil, nil)
	if !bytes.Equal(got, full) {
		t.Errorf("aligned output differs: got %d bytes, want %d", len(got), len(full))
	}
}

func TestProcessWordRange(t *testing.T) {
	stream := utils.FrameStream(frame.Standard, 64, 3, true)
	i64 := func(v int64) *int64 { return &v }

	// Contiguous frames from offset 0: aligned word i is stream byte 2i.
	start, stop := int64(100), int64(600)
	got := collectFrames(t, DefaultOptions(), NewBytesSource(stream), i64(start), i64(stop))
	want := stream[start*frame.WordSize : stop*frame.WordSize]
	if !bytes.Equal(got, want) {
		t.Errorf("range [%d, %d): got %d bytes, want %d", start, stop, len(got), len(want))
	}
}

func TestProcessPartition(t *testing.T) {
	stream := utils.FrameStream(frame.Standard, 64, 3, true)
	whole := collectFrames(t, DefaultOptions(), NewBytesSource(stream), nil, nil)
	i64 := func(v int64) *int64 { return &v }

	// Splitting at K must lose and duplicate nothing, whether K falls on a
	// frame boundary or inside a frame.
	for _, k := range []int64{256, 100} {
		head := collectFrames(t, DefaultOptions(), NewBytesSource(stream), nil, i64(k))
		tail := collectFrames(t, DefaultOptions(), NewBytesSource(stream), i64(k), nil)
		if !bytes.Equal(append(head, tail...), whole) {
			t.Errorf("partition at %d: head %d + tail %d != whole %d bytes",
				k, len(head), len(tail), len(whole))
		}
	}
}

func TestProcessRangeBeyondStream(t *testing.T) {
	stream := utils.FrameStream(frame.Standard, 64, 2, true)
	start := int64(10000)
	got := collectFrames(t, DefaultOptions(), NewBytesSource(stream), &start, nil)
	if len(got) != 0 {
		t.Errorf("out-of-stream range produced %d bytes", len(got))
	}
}

func TestFrameAtAllocFree(t *testing.T) {
	a, err := New(DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	window := utils.FrameStream(frame.Standard, 1024, 1, true)

	allocs := testing.AllocsPerRun(100, func() {
		if _, _, ok := a.frameAt(window); !ok {
			t.Fatal("candidate not detected")
		}
	})
	if allocs != 0 {
		t.Errorf("frameAt allocated %.0f times per run, want 0", allocs)
	}
}

func BenchmarkIdentify(b *testing.B) {
	stream := utils.FrameStream(frame.Standard, 64, 64, true)
	a, err := New(DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.SetBytes(int64(len(stream)))
	for n := 0; n < b.N; n++ {
		a.Reset()
		it := a.Identify(NewBytesSource(stream))
		for {
			if _, ok := it.Next(); !ok {
				break
			}
		}
	}
}

func BenchmarkFrameAtMiss(b *testing.B) {
	a, err := New(DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	window := utils.Masking(frameBytes(1024))
	b.ReportAllocs()
	for n := 0; n < b.N; n++ {
		a.frameAt(window)
	}
}
