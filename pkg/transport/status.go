// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

// Status reports the outcome of the most recent Transport operation. Its
// numeric range (101-121) sits above pkg/cobs's (11-23) and pkg/crc's
// (51-57) so that a codec error can be surfaced verbatim through
// Transport.Status, without the transport needing to rewrite it into its
// own taxonomy.
type Status uint8

const (
	// StatusStandby is the value a Transport starts with before any call.
	StatusStandby Status = 101

	// StatusPacketConstructed means COBS encoding and CRC append both
	// succeeded, ahead of the byte-stream write.
	StatusPacketConstructed Status = 102

	// StatusPacketSent means SendData wrote the constructed packet to the
	// byte stream and reset the transmission buffer.
	StatusPacketSent Status = 103

	// StatusPacketStartByteFound means ParsePacket located the start byte.
	StatusPacketStartByteFound Status = 104

	// StatusPacketStartByteNotFound means ParsePacket exhausted the stream
	// without finding the start byte and AllowStartByteErrors is set.
	StatusPacketStartByteNotFound Status = 105

	// StatusPayloadSizeByteFound means ParsePacket read a payload_size byte
	// within range.
	StatusPayloadSizeByteFound Status = 106

	// StatusPayloadSizeByteNotFound means the inter-byte timer exceeded
	// InterByteTimeoutUs while waiting for the payload_size byte during
	// READ_SIZE.
	StatusPayloadSizeByteNotFound Status = 107

	// StatusInvalidPayloadSize means the payload_size byte read during
	// READ_SIZE fell outside [MinRxPayload, MaxRxPayload].
	StatusInvalidPayloadSize Status = 108

	// StatusPacketTimeoutError means the inter-byte timer exceeded
	// InterByteTimeoutUs while waiting for a byte during READ_BODY.
	StatusPacketTimeoutError Status = 109

	// StatusNoBytesToParseFromBuffer means Available() reported fewer bytes
	// than the smallest possible packet, so ReceiveData did not attempt a
	// parse, or that ParsePacket exhausted the stream without finding the
	// start byte while AllowStartByteErrors is unset.
	StatusNoBytesToParseFromBuffer Status = 110

	// StatusPacketParsed means ParsePacket reached SUCCESS: the reception
	// buffer holds a complete, still-COBS-encoded packet.
	StatusPacketParsed Status = 111

	// StatusCRCCheckFailed means ValidatePacket's checksum over the parsed
	// packet plus its CRC bytes was non-zero.
	StatusCRCCheckFailed Status = 112

	// StatusPacketValidated means ValidatePacket's CRC check passed.
	StatusPacketValidated Status = 113

	// StatusPacketReceived means ReceiveData completed successfully: the
	// reception buffer's payload region holds the decoded payload.
	StatusPacketReceived Status = 114

	// StatusWriteObjectBufferError means a write_data call would write past
	// the transmission payload region.
	StatusWriteObjectBufferError Status = 115

	// StatusObjectWrittenToBuffer means a write_data call succeeded.
	StatusObjectWrittenToBuffer Status = 116

	// StatusReadObjectBufferError means a read_data call would read past the
	// current reception payload_size.
	StatusReadObjectBufferError Status = 117

	// StatusObjectReadFromBuffer means a read_data call succeeded.
	StatusObjectReadFromBuffer Status = 118

	// StatusDelimiterNotFoundError mirrors pkg/cobs's
	// StatusDecoderDelimiterNotFound, reported by ParsePacket's
	// DELIMITER_CHECK step rather than the COBS decoder.
	StatusDelimiterNotFoundError Status = 119

	// StatusDelimiterFoundTooEarlyError mirrors pkg/cobs's
	// StatusDecoderDelimiterFoundTooEarly, reported by ParsePacket's
	// DELIMITER_CHECK step.
	StatusDelimiterFoundTooEarlyError Status = 120

	// StatusPostambleTimeoutError means the inter-byte timer exceeded
	// InterByteTimeoutUs while waiting for a CRC byte during READ_CRC.
	StatusPostambleTimeoutError Status = 121
)

func (s Status) String() string {
	switch s {
	case StatusStandby:
		return "standby"
	case StatusPacketConstructed:
		return "packet constructed"
	case StatusPacketSent:
		return "packet sent"
	case StatusPacketStartByteFound:
		return "start byte found"
	case StatusPacketStartByteNotFound:
		return "start byte not found"
	case StatusPayloadSizeByteFound:
		return "payload size byte found"
	case StatusPayloadSizeByteNotFound:
		return "payload size byte not found"
	case StatusInvalidPayloadSize:
		return "invalid payload size"
	case StatusPacketTimeoutError:
		return "packet timeout"
	case StatusNoBytesToParseFromBuffer:
		return "no bytes to parse"
	case StatusPacketParsed:
		return "packet parsed"
	case StatusCRCCheckFailed:
		return "crc check failed"
	case StatusPacketValidated:
		return "packet validated"
	case StatusPacketReceived:
		return "packet received"
	case StatusWriteObjectBufferError:
		return "write buffer overflow"
	case StatusObjectWrittenToBuffer:
		return "object written to buffer"
	case StatusReadObjectBufferError:
		return "read buffer overflow"
	case StatusObjectReadFromBuffer:
		return "object read from buffer"
	case StatusDelimiterNotFoundError:
		return "delimiter not found"
	case StatusDelimiterFoundTooEarlyError:
		return "delimiter found too early"
	case StatusPostambleTimeoutError:
		return "postamble timeout"
	default:
		return "unknown transport status"
	}
}
