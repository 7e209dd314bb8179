// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"flightframe/internal/align"
	applog "flightframe/internal/log"
	"flightframe/internal/transport"
)

/*
UDP Packet Structure (BigEndian)

+---------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description           |
|-------------------|----------------|--------------|-----------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing |
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Frame Offset      | int64          | 8            | Byte offset of the frame |
| WPS               | uint16         | 2            | Words per subframe    |
| Pattern ID        | uint8          | 1            | 0=Standard, 1=Reversed |
+---------------------------------------------------------------------------+
*/

// Pattern identifiers carried on the wire.
const (
	patternStandard = 0
	patternReversed = 1
	patternUnknown  = 0xFF
)

// Publisher packs detection results into the binary packet format above
// and sends one UDP packet per result via a Sender. It implements the
// transport.Transport interface so it can sit in a Fanout next to the
// WebSocket monitor.
type Publisher struct {
	sender      *Sender
	sequenceNum uint32

	// Reusable buffer for constructing packets; Send is driven
	// sequentially by the scan loop so no locking is needed here.
	packetBuffer *bytes.Buffer
}

// NewPublisher creates a Publisher over the given sender.
func NewPublisher(sender *Sender) (*Publisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("publisher: UDP sender cannot be nil")
	}
	return &Publisher{
		sender:       sender,
		packetBuffer: new(bytes.Buffer),
	}, nil
}

// Send packs and transmits a detection result. Payloads other than
// align.Result are ignored.
func (p *Publisher) Send(data any) error {
	res, ok := data.(align.Result)
	if !ok {
		return nil
	}

	p.sequenceNum++
	timestamp := time.Now().UnixNano()

	var patternID uint8
	switch res.Pattern {
	case "Standard":
		patternID = patternStandard
	case "Reversed":
		patternID = patternReversed
	default:
		patternID = patternUnknown
	}

	p.packetBuffer.Reset()
	err := binary.Write(p.packetBuffer, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, timestamp)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, res.Offset)
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, uint16(res.WPS))
	}
	if err == nil {
		err = binary.Write(p.packetBuffer, binary.BigEndian, patternID)
	}
	if err != nil {
		applog.Errorf("publisher: error packing result: %v", err)
		return err
	}

	if err := p.sender.Send(p.packetBuffer.Bytes()); err != nil {
		return err
	}
	applog.Debugf("publisher: sent packet %d (%s)", p.sequenceNum, res)
	return nil
}

// Close shuts down the underlying sender.
func (p *Publisher) Close() error {
	return p.sender.Close()
}

// Ensure Publisher satisfies the interface at compile time.
var _ transport.Transport = (*Publisher)(nil)
