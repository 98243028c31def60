// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import "github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/crc"

// SendData runs the encode→checksum→emit pipeline over the transmission
// buffer: COBS-encodes the payload region, appends the CRC over
// [overhead..delimiter], and writes the full packet — start byte through
// the last CRC byte — to the byte stream. On success it resets the
// transmission buffer's payload_size and overhead to 0 and returns true. On
// any failure it propagates the failing codec's status into t.Status
// verbatim and returns false without writing anything.
func (t *Transport) SendData() (bool, error) {
	packetLen := t.txCodec.Encode(t.txBuf, t.cfg.DelimiterByte)
	if packetLen == 0 {
		t.Status = Status(t.txCodec.Status)
		return false, nil
	}

	checksum := t.crc.Calculate(t.txBuf, overheadIdx, int(packetLen))
	if t.crc.Status != crc.StatusChecksumCalculated {
		t.Status = Status(t.crc.Status)
		return false, nil
	}

	crcOffset := overheadIdx + int(packetLen)
	next, ok := t.crc.Append(t.txBuf, crcOffset, checksum)
	if !ok {
		t.Status = Status(t.crc.Status)
		return false, nil
	}

	t.Status = StatusPacketConstructed

	if _, err := t.stream.Write(t.txBuf[:next]); err != nil {
		return false, err
	}

	t.ResetTransmissionBuffer()
	t.Status = StatusPacketSent
	return true, nil
}
