// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package cobs implements in-place Consistent Overhead Byte Stuffing, as
// described in Cheshire & Baker, "Consistent Overhead Byte Stuffing," IEEE/ACM
// Transactions on Networking, vol. 7, no. 2, 1999.
//
// COBS removes every occurrence of a chosen delimiter byte from a payload by
// replacing each one with the distance to the next occurrence (or to the
// trailing delimiter appended at encode time), linked through a leading
// overhead byte. A Codec operates directly on a caller-owned buffer laid out
// as [start][size][overhead][payload...][delimiter][...]; it never allocates.
package cobs

const (
	// MinPayloadSize is the smallest payload a Codec will encode. Empty
	// payloads are rejected as meaningless.
	MinPayloadSize = 1

	// MaxPayloadSize is the largest payload a Codec will encode. 255 is
	// unreachable because a byte-valued overhead/jump cannot express it.
	MaxPayloadSize = 254

	// MinPacketSize is the smallest encoded packet: one payload byte plus
	// overhead and delimiter bytes.
	MinPacketSize = 3

	// MaxPacketSize is the largest encoded packet: MaxPayloadSize payload
	// bytes plus overhead and delimiter bytes.
	MaxPacketSize = 256
)

// Codec encodes and decodes a payload region in place, following the buffer
// layout fixed by SizeIndex and OverheadIndex. A single Codec value may be
// reused across calls; it carries no buffer state of its own, only the last
// Status.
//
// SizeIndex identifies the byte in the buffer that holds the payload size.
// OverheadIndex identifies the byte immediately preceding the payload; the
// payload itself begins at OverheadIndex+1. Both indices are fixed at
// construction to match the layout the caller's buffer uses for every
// packet, mirroring the template-parameter contract of the C++ origin.
type Codec struct {
	SizeIndex     int
	OverheadIndex int
	Status        Status
}

// NewCodec returns a Codec bound to the given buffer layout, with Status set
// to StatusStandby.
func NewCodec(sizeIndex, overheadIndex int) *Codec {
	return &Codec{SizeIndex: sizeIndex, OverheadIndex: overheadIndex, Status: StatusStandby}
}

// Encode replaces every occurrence of delimiter in the payload region of buf
// with a COBS jump value, sets the overhead byte to the distance to the
// first jump (or to the appended delimiter if the payload held no
// occurrences), and appends delimiter immediately after the payload.
//
// buf[c.SizeIndex] must already hold the payload size, in [MinPayloadSize,
// MaxPayloadSize]. buf[c.OverheadIndex] must be 0, signaling the payload has
// not yet been encoded; Encode refuses to run otherwise, to avoid corrupting
// data from a double-encode.
//
// Returns the encoded packet length (payload size plus overhead and
// delimiter bytes) on success, or 0 on failure; c.Status carries the precise
// outcome either way.
func (c *Codec) Encode(buf []byte, delimiter byte) uint16 {
	payloadSize := int(buf[c.SizeIndex])

	if payloadSize < MinPayloadSize {
		c.Status = StatusEncoderTooSmallPayloadSize
		return 0
	}
	if payloadSize > MaxPayloadSize {
		c.Status = StatusEncoderTooLargePayloadSize
		return 0
	}

	minBufSize := c.OverheadIndex + payloadSize + 2
	if len(buf) < minBufSize {
		c.Status = StatusEncoderPacketLargerThanBuffer
		return 0
	}

	if buf[c.OverheadIndex] != 0 {
		c.Status = StatusPayloadAlreadyEncoded
		return 0
	}

	payloadStart := c.OverheadIndex + 1
	payloadEndIdx := payloadSize + c.OverheadIndex // inclusive
	delimiterIdx := payloadEndIdx + 1

	buf[delimiterIdx] = delimiter

	lastDelimiterIdx := 0
	for i := payloadEndIdx; i >= payloadStart; i-- {
		if buf[i] != delimiter {
			continue
		}
		if lastDelimiterIdx == 0 {
			buf[i] = byte(delimiterIdx - i)
		} else {
			buf[i] = byte(lastDelimiterIdx - i)
		}
		lastDelimiterIdx = i
	}

	if lastDelimiterIdx != 0 {
		buf[c.OverheadIndex] = byte(lastDelimiterIdx - c.OverheadIndex)
	} else {
		buf[c.OverheadIndex] = byte(delimiterIdx - c.OverheadIndex)
	}

	c.Status = StatusPayloadEncoded
	return uint16(minBufSize - c.OverheadIndex)
}

// Decode restores the payload region of buf to its pre-encoding state,
// re-materializing every occurrence of delimiter by walking the jump chain
// left by Encode.
//
// buf[c.SizeIndex] must hold the original payload size. buf[c.OverheadIndex]
// must be non-zero, signaling an encoded, not-yet-decoded packet; Decode
// refuses to run otherwise. The overhead byte is always zeroed once Decode
// begins walking the chain, including on a failed decode, marking the buffer
// as consumed regardless of outcome.
//
// Returns the payload size on success, or 0 on failure; c.Status carries the
// precise outcome either way. A failure past the already-decoded check means
// the packet survived CRC validation but is internally inconsistent — data
// corruption the CRC check did not catch.
func (c *Codec) Decode(buf []byte, delimiter byte) uint16 {
	payloadSize := int(buf[c.SizeIndex])
	packetSize := payloadSize + 2
	minBufSize := payloadSize + c.OverheadIndex + 2
	delimiterIdx := c.OverheadIndex + payloadSize + 1

	if packetSize < MinPacketSize {
		c.Status = StatusDecoderTooSmallPacketSize
		return 0
	}
	if packetSize > MaxPacketSize {
		c.Status = StatusDecoderTooLargePacketSize
		return 0
	}
	if len(buf) < minBufSize {
		c.Status = StatusDecoderPacketLargerThanBuffer
		return 0
	}
	if buf[c.OverheadIndex] == 0 {
		c.Status = StatusPacketAlreadyDecoded
		return 0
	}

	readIdx := c.OverheadIndex
	jump := int(buf[readIdx])
	buf[readIdx] = 0
	readIdx += jump

	for readIdx < minBufSize {
		if buf[readIdx] == delimiter {
			if readIdx == delimiterIdx {
				c.Status = StatusPayloadDecoded
				return uint16(payloadSize)
			}
			c.Status = StatusDecoderDelimiterFoundTooEarly
			return 0
		}

		jump = int(buf[readIdx])
		buf[readIdx] = delimiter
		readIdx += jump
	}

	c.Status = StatusDecoderDelimiterNotFound
	return 0
}
