// SPDX-License-Identifier: MIT
package config

// Core configuration constants that define the boundaries and defaults for
// the frame-alignment tooling.
const (
	// Default values for the detection and slicing tools
	DefaultLogLevel      = "info"    // Quiet operation
	DefaultChunkSize     = 16 * 1024 // Read size for chunked file scanning
	DefaultIdentifyWords = 8192      // Inspection window for the identify command, in 16-bit words
	DefaultSliceWords    = 65536     // Inspection window for slicing, in 16-bit words
	DefaultSliceBuffer   = 1 << 20   // Copy buffer for slice extraction, in bytes

	// Processing limits
	MinChunkSize = 512      // A chunk must hold at least one smallest frame
	MaxChunkSize = 8 << 20  // Upper bound to keep buffering predictable
	MaxWindow    = 64 << 20 // Largest inspection window accepted, in words
)

// Transport defaults.
const (
	DefaultMonitorPort      = "8080"           // WebSocket monitor listen port
	DefaultUDPTargetAddress = "127.0.0.1:9090" // UDP publisher target
)
