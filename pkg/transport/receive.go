// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"time"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/cobs"
)

// spinDelay is slept between unsuccessful non-blocking polls while waiting
// for a byte, so a real byte stream's wait loop does not peg a CPU core.
// It has no bearing on correctness: the inter-byte timer is driven entirely
// by the Clock, not by wall-clock sleep.
const spinDelay = 10 * time.Microsecond

// waitByte polls the stream for a single byte, bounded by
// InterByteTimeoutUs measured from the moment waitByte is entered. It
// returns ok=false once that budget is exceeded without a byte arriving.
func (t *Transport) waitByte() (byte, bool, error) {
	deadline := t.clock.NowMicros() + t.cfg.InterByteTimeoutUs
	for {
		b, ok, err := t.stream.ReadOne()
		if err != nil {
			return 0, false, err
		}
		if ok {
			return b, true, nil
		}
		if t.clock.NowMicros() >= deadline {
			return 0, false, nil
		}
		time.Sleep(spinDelay)
	}
}

// ReceiveData resets the reception buffer, then runs ParsePacket followed by
// ValidatePacket. It returns true only if a complete, CRC-valid, COBS-decoded
// payload now sits in the reception buffer's payload region.
func (t *Transport) ReceiveData() (bool, error) {
	available, err := t.Available()
	if err != nil {
		return false, err
	}
	if !available {
		t.Status = StatusNoBytesToParseFromBuffer
		if t.Stats != nil {
			t.Stats.Update(false, t.Status)
		}
		return false, nil
	}

	t.ResetReceptionBuffer()

	packetLen, status, err := t.parsePacket()
	if err != nil {
		t.Status = status
		return false, err
	}
	if status != StatusPacketParsed {
		t.Status = status
		if t.Stats != nil {
			t.Stats.Update(false, t.Status)
		}
		return false, nil
	}

	ok, verr := t.validatePacket(packetLen)
	if verr != nil {
		return false, verr
	}
	if t.Stats != nil {
		t.Stats.Update(ok, t.Status)
	}
	return ok, nil
}

// parsePacket implements the SEARCH_START -> READ_SIZE -> READ_BODY ->
// DELIMITER_CHECK -> READ_CRC state machine. On success it returns the
// packet length (overhead through the CRC bytes, inclusive of the CRC
// width) and StatusPacketParsed; the reception buffer holds the still
// COBS-encoded packet, CRC bytes included.
func (t *Transport) parsePacket() (uint16, Status, error) {
	// SEARCH_START: consume bytes until the start byte is seen or the
	// stream is exhausted. No inter-byte timer applies here; this state is
	// governed only by stream availability.
	for {
		b, ok, err := t.stream.ReadOne()
		if err != nil {
			return 0, StatusNoBytesToParseFromBuffer, err
		}
		if !ok {
			if t.cfg.AllowStartByteErrors {
				return 0, StatusPacketStartByteNotFound, nil
			}
			return 0, StatusNoBytesToParseFromBuffer, nil
		}
		if b == t.cfg.StartByte {
			t.rxBuf[startIdx] = b
			break
		}
	}

	// READ_SIZE
	sizeByte, ok, err := t.waitByte()
	if err != nil {
		return 0, StatusPayloadSizeByteNotFound, err
	}
	if !ok {
		return 0, StatusPayloadSizeByteNotFound, nil
	}
	payloadSize := int(sizeByte)
	if payloadSize < t.cfg.MinRxPayload || payloadSize > t.cfg.MaxRxPayload {
		return 0, StatusInvalidPayloadSize, nil
	}
	t.rxBuf[sizeIdx] = sizeByte

	// READ_BODY: target is overhead (1) + encoded payload (payloadSize) +
	// delimiter (1).
	target := payloadSize + 2
	count := 0
	for count < target {
		b, ok, err := t.waitByte()
		if err != nil {
			return 0, StatusPacketTimeoutError, err
		}
		if !ok {
			return 0, StatusPacketTimeoutError, nil
		}
		t.rxBuf[overheadIdx+count] = b
		count++
		if b == t.cfg.DelimiterByte {
			break
		}
	}

	// DELIMITER_CHECK
	switch {
	case count < target:
		return 0, StatusDelimiterFoundTooEarlyError, nil
	case t.rxBuf[overheadIdx+count-1] != t.cfg.DelimiterByte:
		return 0, StatusDelimiterNotFoundError, nil
	}

	// READ_CRC
	for i := 0; i < int(t.cfg.CRCWidth); i++ {
		b, ok, err := t.waitByte()
		if err != nil {
			return 0, StatusPostambleTimeoutError, err
		}
		if !ok {
			return 0, StatusPostambleTimeoutError, nil
		}
		t.rxBuf[overheadIdx+count+i] = b
	}

	return uint16(target + int(t.cfg.CRCWidth)), StatusPacketParsed, nil
}

// validatePacket computes the CRC over the parsed packet plus its CRC bytes
// (expecting zero) and, if that passes, runs COBS decode. packetLen is
// overhead through the CRC bytes, inclusive of the CRC width, as returned
// by parsePacket.
func (t *Transport) validatePacket(packetLen uint16) (bool, error) {
	checksum := t.crc.Calculate(t.rxBuf, overheadIdx, int(packetLen))
	if checksum != 0 {
		t.Status = StatusCRCCheckFailed
		return false, nil
	}

	payloadSize := t.rxCodec.Decode(t.rxBuf, t.cfg.DelimiterByte)
	if t.rxCodec.Status != cobs.StatusPayloadDecoded {
		t.Status = Status(t.rxCodec.Status)
		return false, nil
	}

	t.rxBuf[sizeIdx] = byte(payloadSize)
	t.Status = StatusPacketReceived
	return true, nil
}
