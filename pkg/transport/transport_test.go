// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"testing"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/crc"
	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/stream"
)

func testConfig() Config {
	return Config{
		MaxTxPayload:       254,
		MaxRxPayload:       254,
		MinRxPayload:       1,
		CRCWidth:           crc.Width2,
		Polynomial:         0x1021,
		Init:               0xFFFF,
		XorOut:             0,
		StartByte:          0x81,
		DelimiterByte:      0x00,
		InterByteTimeoutUs: 2000,
	}
}

func newPair(t *testing.T) (*Transport, *Transport, *stream.Loopback, *stream.Loopback, *stream.FakeClock) {
	t.Helper()
	txLink := stream.NewLoopback()
	rxLink := stream.NewLoopback()
	clock := &stream.FakeClock{}

	tx, err := New(testConfig(), txLink, clock)
	if err != nil {
		t.Fatalf("New(tx): %v", err)
	}
	rx, err := New(testConfig(), rxLink, clock)
	if err != nil {
		t.Fatalf("New(rx): %v", err)
	}
	return tx, rx, txLink, rxLink, clock
}

func sendAndRelay(t *testing.T, tx, rx *Transport, txLink, rxLink *stream.Loopback) bool {
	t.Helper()
	ok, err := tx.SendData()
	if err != nil {
		t.Fatalf("SendData: %v", err)
	}
	if !ok {
		return false
	}
	rxLink.Feed(txLink.Written())
	txLink.ResetWritten()
	ok, err = rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	return ok
}

func TestRoundTrip(t *testing.T) {
	tx, rx, txLink, rxLink, _ := newPair(t)

	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if _, status := tx.WriteBytes(payload, 0); status != StatusObjectWrittenToBuffer {
		t.Fatalf("WriteBytes status = %v", status)
	}

	if !sendAndRelay(t, tx, rx, txLink, rxLink) {
		t.Fatalf("ReceiveData failed, status = %v", rx.Status)
	}
	if rx.Status != StatusPacketReceived {
		t.Fatalf("rx.Status = %v, want StatusPacketReceived", rx.Status)
	}

	out := make([]byte, len(payload))
	if _, status := rx.ReadBytes(out, 0); status != StatusObjectReadFromBuffer {
		t.Fatalf("ReadBytes status = %v", status)
	}
	for i := range payload {
		if out[i] != payload[i] {
			t.Fatalf("byte %d: got 0x%02X, want 0x%02X", i, out[i], payload[i])
		}
	}
}

func TestWriteDataReadDataRoundTrip(t *testing.T) {
	tx, rx, txLink, rxLink, _ := newPair(t)

	type reading struct {
		Seq   uint32
		Value float32
	}
	want := reading{Seq: 42, Value: 3.5}

	if _, status := WriteData(tx, want, 0); status != StatusObjectWrittenToBuffer {
		t.Fatalf("WriteData status = %v", status)
	}
	if !sendAndRelay(t, tx, rx, txLink, rxLink) {
		t.Fatalf("ReceiveData failed, status = %v", rx.Status)
	}

	got, _, status := ReadData[reading](rx, 0)
	if status != StatusObjectReadFromBuffer {
		t.Fatalf("ReadData status = %v", status)
	}
	if got != want {
		t.Fatalf("ReadData = %+v, want %+v", got, want)
	}
}

func TestSendEmptyPayloadFails(t *testing.T) {
	tx, _, txLink, _, _ := newPair(t)

	ok, err := tx.SendData()
	if err != nil {
		t.Fatalf("SendData: %v", err)
	}
	if ok {
		t.Fatalf("SendData on an empty buffer should fail")
	}
	if len(txLink.Written()) != 0 {
		t.Fatalf("SendData wrote %d bytes on failure, want 0", len(txLink.Written()))
	}
}

func TestCRCCorruptionDetected(t *testing.T) {
	tx, rx, txLink, rxLink, _ := newPair(t)

	tx.WriteBytes([]byte{1, 2, 3}, 0)
	if ok, err := tx.SendData(); !ok || err != nil {
		t.Fatalf("SendData: ok=%v err=%v", ok, err)
	}

	wire := txLink.Written()
	wire[len(wire)-1] ^= 0xFF // flip a CRC byte
	rxLink.Feed(wire)

	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("ReceiveData should have failed on corrupted CRC")
	}
	if rx.Status != StatusCRCCheckFailed {
		t.Fatalf("rx.Status = %v, want StatusCRCCheckFailed", rx.Status)
	}
}

func TestDelimiterNotFoundDetected(t *testing.T) {
	tx, rx, txLink, rxLink, _ := newPair(t)

	tx.WriteBytes([]byte{1, 2, 3}, 0)
	if ok, err := tx.SendData(); !ok || err != nil {
		t.Fatalf("SendData: ok=%v err=%v", ok, err)
	}

	wire := txLink.Written()
	// Replace the trailing delimiter with a non-delimiter value so
	// DELIMITER_CHECK sees a full-length body that never ended in the
	// delimiter, ahead of any CRC check.
	wire[len(wire)-int(rx.cfg.CRCWidth)-1] = 0xFD
	rxLink.Feed(wire)

	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("ReceiveData should have failed on shape corruption")
	}
	if rx.Status != StatusDelimiterNotFoundError && rx.Status != StatusDelimiterFoundTooEarlyError {
		t.Fatalf("rx.Status = %v, want a delimiter shape error", rx.Status)
	}
}

func TestBodyTimeoutReported(t *testing.T) {
	_, rx, _, rxLink, clock := newPair(t)
	clock.AutoStep = 10000 // exceeds InterByteTimeoutUs on the first poll

	// Start byte + payload_size + 4 of the 6 body bytes, then nothing; six
	// queued bytes satisfy Available() so the parse reaches READ_BODY.
	rxLink.Feed([]byte{0x81, 0x04, 0x05, 0x01, 0x02, 0x03})
	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("ReceiveData should have timed out")
	}
	if rx.Status != StatusPacketTimeoutError {
		t.Fatalf("rx.Status = %v, want StatusPacketTimeoutError", rx.Status)
	}
}

func TestPayloadSizeTimeoutReported(t *testing.T) {
	_, rx, _, rxLink, clock := newPair(t)
	clock.AutoStep = 10000

	// Line noise, then the start byte as the last queued byte; six queued
	// bytes satisfy Available(), and no payload_size byte ever arrives.
	rxLink.Feed([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x81})
	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("ReceiveData should have timed out waiting for payload_size")
	}
	if rx.Status != StatusPayloadSizeByteNotFound {
		t.Fatalf("rx.Status = %v, want StatusPayloadSizeByteNotFound", rx.Status)
	}
}

func TestPostambleTimeoutReported(t *testing.T) {
	tx, rx, txLink, rxLink, clock := newPair(t)

	tx.WriteBytes([]byte{1, 2, 3}, 0)
	if ok, err := tx.SendData(); !ok || err != nil {
		t.Fatalf("SendData: ok=%v err=%v", ok, err)
	}

	wire := txLink.Written()
	body := wire[:len(wire)-int(rx.cfg.CRCWidth)] // everything up to the CRC bytes
	rxLink.Feed(body)
	clock.AutoStep = 10000

	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("ReceiveData should have timed out waiting for the CRC bytes")
	}
	if rx.Status != StatusPostambleTimeoutError {
		t.Fatalf("rx.Status = %v, want StatusPostambleTimeoutError", rx.Status)
	}
}

func TestResetTransmissionBufferIdempotent(t *testing.T) {
	tx, _, _, _, _ := newPair(t)
	tx.WriteBytes([]byte{1, 2, 3}, 0)
	tx.ResetTransmissionBuffer()
	first := tx.TxPayloadSize()
	tx.ResetTransmissionBuffer()
	second := tx.TxPayloadSize()
	if first != 0 || second != 0 {
		t.Fatalf("ResetTransmissionBuffer left payload_size = %d, %d, want 0, 0", first, second)
	}
}

func TestWriteBytesPayloadSizeMonotonic(t *testing.T) {
	tx, _, _, _, _ := newPair(t)
	tx.WriteBytes([]byte{1, 2, 3, 4}, 0)
	if tx.TxPayloadSize() != 4 {
		t.Fatalf("TxPayloadSize = %d, want 4", tx.TxPayloadSize())
	}
	tx.WriteBytes([]byte{9}, 0)
	if tx.TxPayloadSize() != 4 {
		t.Fatalf("TxPayloadSize shrank to %d after overwriting a smaller prefix", tx.TxPayloadSize())
	}
}

func TestBoundaryPayloadSizes(t *testing.T) {
	for _, size := range []int{1, 254} {
		tx, rx, txLink, rxLink, _ := newPair(t)
		payload := make([]byte, size)
		for i := range payload {
			payload[i] = byte(i)
		}
		tx.WriteBytes(payload, 0)
		if !sendAndRelay(t, tx, rx, txLink, rxLink) {
			t.Fatalf("size %d: ReceiveData failed, status = %v", size, rx.Status)
		}
		if rx.RxPayloadSize() != size {
			t.Fatalf("size %d: RxPayloadSize = %d", size, rx.RxPayloadSize())
		}
	}
}

func TestAvailableReflectsMinimumPacketSize(t *testing.T) {
	_, rx, _, rxLink, _ := newPair(t)
	available, err := rx.Available()
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if available {
		t.Fatalf("Available() should be false on an empty stream")
	}
	rxLink.Feed([]byte{0x81, 0x01, 0x00, 0x00, 0x00, 0x00})
	available, err = rx.Available()
	if err != nil {
		t.Fatalf("Available: %v", err)
	}
	if !available {
		t.Fatalf("Available() should be true once the minimum packet size is queued")
	}
}

func TestStatisticsTrackOutcomes(t *testing.T) {
	tx, rx, txLink, rxLink, _ := newPair(t)
	rx.Stats = NewStatistics()

	tx.WriteBytes([]byte{1, 2, 3}, 0)
	if !sendAndRelay(t, tx, rx, txLink, rxLink) {
		t.Fatalf("ReceiveData failed, status = %v", rx.Status)
	}
	if rx.Stats.ValidPackets != 1 || rx.Stats.TotalPackets != 1 {
		t.Fatalf("Stats after one good packet = %+v", rx.Stats)
	}

	ok, err := rx.ReceiveData()
	if err != nil {
		t.Fatalf("ReceiveData: %v", err)
	}
	if ok {
		t.Fatalf("second ReceiveData on an empty stream should fail")
	}
	if rx.Stats.TotalPackets != 2 || rx.Stats.StreamErrors != 1 {
		t.Fatalf("Stats after empty-stream call = %+v", rx.Stats)
	}
}
