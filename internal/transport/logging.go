// SPDX-License-Identifier: MIT
package transport

import (
	applog "flightframe/internal/log"
)

// LoggingTransport implements the Transport interface by writing payloads
// to the application log. Useful as a default sink and in tests.
type LoggingTransport struct{}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	return &LoggingTransport{}
}

// Send logs the received payload. Logging never fails to "send".
func (lt *LoggingTransport) Send(data any) error {
	applog.Infof("transport: %v", data)
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
