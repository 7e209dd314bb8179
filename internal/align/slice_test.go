// SPDX-License-Identifier: MIT
package align

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flightframe/internal/frame"
	"flightframe/pkg/utils"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestSliceFileRoundTrip(t *testing.T) {
	// 10 contiguous 64-wps frames: 128 bytes per second, 40 seconds total.
	stream := utils.FrameStream(frame.Standard, 64, 10, true)
	src := writeTempFile(t, "raw.dat", stream)
	dst := filepath.Join(t.TempDir(), "slice.dat")

	err := SliceFile(src, dst, SliceOptions{Start: 3, Stop: 7})
	if err != nil {
		t.Fatalf("SliceFile: %v", err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	bps := 64 * frame.WordSize
	want := stream[3*bps : 7*bps]
	if !bytes.Equal(got, want) {
		t.Errorf("slice content differs: got %d bytes, want %d", len(got), len(want))
	}
}

func TestSliceFileInvalidRange(t *testing.T) {
	src := writeTempFile(t, "raw.dat", utils.FrameStream(frame.Standard, 64, 2, true))
	dst := filepath.Join(t.TempDir(), "slice.dat")

	tests := []struct {
		name        string
		start, stop int64
	}{
		{"stop before start", 7, 3},
		{"empty interval", 5, 5},
		{"negative start", -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := SliceFile(src, dst, SliceOptions{Start: tt.start, Stop: tt.stop})
			if !errors.Is(err, ErrInvalidRange) {
				t.Errorf("error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestSliceFileNoSync(t *testing.T) {
	src := writeTempFile(t, "noise.dat", utils.Masking(4096))
	dst := filepath.Join(t.TempDir(), "slice.dat")

	err := SliceFile(src, dst, SliceOptions{Start: 0, Stop: 1})
	if !errors.Is(err, ErrSyncNotFound) {
		t.Fatalf("error = %v, want ErrSyncNotFound", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Errorf("destination file was created despite failed detection")
	}
}

func TestSliceFileShortSource(t *testing.T) {
	stream := utils.FrameStream(frame.Standard, 64, 4, true)
	src := writeTempFile(t, "raw.dat", stream)
	dst := filepath.Join(t.TempDir(), "slice.dat")

	// Requested interval extends past end of file: the copy stops at EOF
	// without error.
	err := SliceFile(src, dst, SliceOptions{Start: 0, Stop: 100})
	if err != nil {
		t.Fatalf("SliceFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, stream) {
		t.Errorf("short slice: got %d bytes, want whole file of %d", len(got), len(stream))
	}
}

func TestSliceFileMissingSource(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "slice.dat")
	if err := SliceFile(filepath.Join(t.TempDir(), "absent.dat"), dst, SliceOptions{Start: 0, Stop: 1}); err == nil {
		t.Error("missing source file did not fail")
	}
}
