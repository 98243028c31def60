// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/crc"
)

// Config carries every parameter a Transport is fixed to at construction.
// All of it is validated eagerly by New; invalid values are Configuration
// errors, fatal before any packet is ever sent or received.
type Config struct {
	// MaxTxPayload is the largest payload write_data may stage, in [1,254].
	MaxTxPayload int

	// MaxRxPayload is the largest payload receive_data will accept, in
	// [1,254].
	MaxRxPayload int

	// MinRxPayload is the smallest payload size that satisfies Available()
	// and is accepted during READ_SIZE, in [1, MaxRxPayload].
	MinRxPayload int

	// CRCWidth selects the checksum width: crc.Width1, crc.Width2, or
	// crc.Width4.
	CRCWidth crc.Width

	// Polynomial, Init, and XorOut parameterize the CRC table, masked to
	// CRCWidth bytes.
	Polynomial uint32
	Init       uint32
	XorOut     uint32

	// StartByte marks the beginning of a packet on the wire.
	StartByte byte

	// DelimiterByte is the COBS sentinel value. A delimiter of 0 is
	// recommended, since the overhead byte can never be 0 after a
	// successful encode, so it cannot collide with it.
	DelimiterByte byte

	// InterByteTimeoutUs is the maximum allowed gap, in microseconds,
	// between two consecutive successful byte reads during packet
	// reception (τ).
	InterByteTimeoutUs int64

	// AllowStartByteErrors controls whether an unfound start byte is
	// reported as StatusNoBytesToParseFromBuffer (false, the production
	// default — line noise routinely precedes a real packet) or
	// StatusPacketStartByteNotFound (true).
	AllowStartByteErrors bool

	// RingBufferCapacity, when non-zero, is the platform serial driver's
	// ring buffer size. New refuses to build a Transport whose packet size
	// would not fit it. Left at 0, no ceiling is enforced.
	RingBufferCapacity int

	// RejectEqualSentinels rejects a StartByte equal to DelimiterByte at
	// construction. The original accepts equal values; this library leaves
	// that permissive default in place unless a caller opts in here — see
	// the "equal start/delimiter bytes" open question.
	RejectEqualSentinels bool
}

func (c Config) validate() error {
	if c.MaxTxPayload < 1 || c.MaxTxPayload > 254 {
		return fmt.Errorf("transport: MaxTxPayload %d out of [1,254]", c.MaxTxPayload)
	}
	if c.MaxRxPayload < 1 || c.MaxRxPayload > 254 {
		return fmt.Errorf("transport: MaxRxPayload %d out of [1,254]", c.MaxRxPayload)
	}
	if c.MinRxPayload < 1 || c.MinRxPayload > 254 {
		return fmt.Errorf("transport: MinRxPayload %d out of [1,254]", c.MinRxPayload)
	}
	if c.MinRxPayload > c.MaxRxPayload {
		return fmt.Errorf("transport: MinRxPayload %d exceeds MaxRxPayload %d", c.MinRxPayload, c.MaxRxPayload)
	}
	if c.CRCWidth != crc.Width1 && c.CRCWidth != crc.Width2 && c.CRCWidth != crc.Width4 {
		return fmt.Errorf("transport: CRCWidth %d is not one of {1,2,4}", c.CRCWidth)
	}
	if c.InterByteTimeoutUs <= 0 {
		return fmt.Errorf("transport: InterByteTimeoutUs must be positive, got %d", c.InterByteTimeoutUs)
	}
	if c.RejectEqualSentinels && c.StartByte == c.DelimiterByte {
		return fmt.Errorf("transport: StartByte and DelimiterByte are both 0x%02X; set different values or clear RejectEqualSentinels", c.StartByte)
	}
	if c.RingBufferCapacity > 0 {
		maxPayload := c.MaxTxPayload
		if c.MaxRxPayload > maxPayload {
			maxPayload = c.MaxRxPayload
		}
		required := maxPayload + 4 + int(c.CRCWidth)
		if required > c.RingBufferCapacity {
			return fmt.Errorf("transport: packet size %d exceeds ring buffer capacity %d", required, c.RingBufferCapacity)
		}
	}
	return nil
}

func (c Config) txBufferCapacity() int {
	return c.MaxTxPayload + 4 + int(c.CRCWidth)
}

func (c Config) rxBufferCapacity() int {
	return c.MaxRxPayload + 4 + int(c.CRCWidth)
}
