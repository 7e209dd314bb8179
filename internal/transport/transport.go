// SPDX-License-Identifier: MIT
package transport

// Transport defines a generic interface for publishing detection results
// or other scan events. Implementations should be thread-safe.
type Transport interface {
	Send(data any) error
	Close() error
}

// Fanout forwards every payload to each of its transports. A send error on
// one transport does not stop the others; the first error is returned.
type Fanout []Transport

// Send forwards data to every transport.
func (f Fanout) Send(data any) error {
	var first error
	for _, t := range f {
		if err := t.Send(data); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close closes every transport, returning the first error.
func (f Fanout) Close() error {
	var first error
	for _, t := range f {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
