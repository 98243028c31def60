// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package cobs

// Status reports the outcome of the most recent Encode or Decode call on a
// Codec. Numeric values are kept stable across releases since some callers
// persist or transmit them alongside packet diagnostics.
type Status uint8

const (
	// StatusStandby is the value a Codec starts with before any call.
	StatusStandby Status = 11

	// StatusEncoderTooSmallPayloadSize means the requested payload size is
	// below MinPayloadSize.
	StatusEncoderTooSmallPayloadSize Status = 12

	// StatusEncoderTooLargePayloadSize means the requested payload size
	// exceeds MaxPayloadSize.
	StatusEncoderTooLargePayloadSize Status = 13

	// StatusEncoderPacketLargerThanBuffer means the supplied buffer cannot
	// hold the payload plus the overhead and delimiter bytes.
	StatusEncoderPacketLargerThanBuffer Status = 14

	// StatusPayloadAlreadyEncoded means the overhead byte was non-zero when
	// Encode was called, which would indicate double-encoding.
	StatusPayloadAlreadyEncoded Status = 15

	// StatusPayloadEncoded means Encode completed successfully.
	StatusPayloadEncoded Status = 16

	// StatusDecoderTooSmallPacketSize means the declared packet size is
	// below MinPacketSize.
	StatusDecoderTooSmallPacketSize Status = 17

	// StatusDecoderTooLargePacketSize means the declared packet size
	// exceeds MaxPacketSize.
	StatusDecoderTooLargePacketSize Status = 18

	// StatusDecoderPacketLargerThanBuffer means the supplied buffer is
	// smaller than the declared packet requires.
	StatusDecoderPacketLargerThanBuffer Status = 19

	// StatusDecoderDelimiterNotFound means the jump chain ran past the
	// expected delimiter position without ever reaching it.
	StatusDecoderDelimiterNotFound Status = 20

	// StatusDecoderDelimiterFoundTooEarly means the jump chain reached the
	// delimiter value before the expected position, indicating corruption.
	StatusDecoderDelimiterFoundTooEarly Status = 21

	// StatusPacketAlreadyDecoded means the overhead byte was already zero
	// when Decode was called.
	StatusPacketAlreadyDecoded Status = 22

	// StatusPayloadDecoded means Decode completed successfully.
	StatusPayloadDecoded Status = 23
)

func (s Status) String() string {
	switch s {
	case StatusStandby:
		return "standby"
	case StatusEncoderTooSmallPayloadSize:
		return "encoder: payload too small"
	case StatusEncoderTooLargePayloadSize:
		return "encoder: payload too large"
	case StatusEncoderPacketLargerThanBuffer:
		return "encoder: packet larger than buffer"
	case StatusPayloadAlreadyEncoded:
		return "payload already encoded"
	case StatusPayloadEncoded:
		return "payload encoded"
	case StatusDecoderTooSmallPacketSize:
		return "decoder: packet too small"
	case StatusDecoderTooLargePacketSize:
		return "decoder: packet too large"
	case StatusDecoderPacketLargerThanBuffer:
		return "decoder: packet larger than buffer"
	case StatusDecoderDelimiterNotFound:
		return "decoder: delimiter not found"
	case StatusDecoderDelimiterFoundTooEarly:
		return "decoder: delimiter found too early"
	case StatusPacketAlreadyDecoded:
		return "packet already decoded"
	case StatusPayloadDecoded:
		return "payload decoded"
	default:
		return "unknown cobs status"
	}
}
