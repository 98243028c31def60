// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package transport

import (
	"fmt"
	"time"
)

// Statistics tracks payload-schema-agnostic packet counters and error
// rates, keyed on the Status taxonomy a Transport actually produces
// rather than any particular payload's validation rules.
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	TotalPackets     uint64
	ValidPackets     uint64
	CRCErrors        uint64
	ShapeErrors      uint64 // delimiter-not-found / delimiter-found-too-early / invalid payload size
	TimeoutErrors    uint64 // packet-timeout / postamble-timeout
	StreamErrors     uint64 // no-bytes-to-parse / start-byte-not-found

	PacketRate float64
	ErrorRate  float64
}

// NewStatistics returns a Statistics tracker starting now.
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{StartTime: now, LastUpdateTime: now}
}

// Update records the outcome of one ReceiveData call. ok is the boolean
// ReceiveData returned; status is t.Status immediately after that call.
func (s *Statistics) Update(ok bool, status Status) {
	s.TotalPackets++
	s.LastUpdateTime = time.Now()

	if ok {
		s.ValidPackets++
		return
	}

	switch status {
	case StatusCRCCheckFailed:
		s.CRCErrors++
	case StatusDelimiterNotFoundError, StatusDelimiterFoundTooEarlyError, StatusInvalidPayloadSize:
		s.ShapeErrors++
	case StatusPacketTimeoutError, StatusPostambleTimeoutError:
		s.TimeoutErrors++
	case StatusNoBytesToParseFromBuffer, StatusPacketStartByteNotFound:
		s.StreamErrors++
	}
}

// CalculateRates recomputes PacketRate and ErrorRate from elapsed wall time.
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed <= 0 {
		return
	}
	s.PacketRate = float64(s.TotalPackets) / elapsed
	errors := s.CRCErrors + s.ShapeErrors + s.TimeoutErrors + s.StreamErrors
	s.ErrorRate = float64(errors) / elapsed
}

// String returns a formatted statistics summary.
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent float64
	if s.TotalPackets > 0 {
		validPercent = float64(s.ValidPackets) * 100.0 / float64(s.TotalPackets)
	}

	elapsed := time.Since(s.StartTime)

	result := fmt.Sprintf("=== Statistics (%.0f seconds) ===\n", elapsed.Seconds())
	result += fmt.Sprintf("Total Packets:  %8d\n", s.TotalPackets)
	result += fmt.Sprintf("Valid Packets:  %8d (%.1f%%)\n", s.ValidPackets, validPercent)
	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:     %8d\n", s.CRCErrors)
	}
	if s.ShapeErrors > 0 {
		result += fmt.Sprintf("Shape Errors:   %8d\n", s.ShapeErrors)
	}
	if s.TimeoutErrors > 0 {
		result += fmt.Sprintf("Timeouts:       %8d\n", s.TimeoutErrors)
	}
	if s.StreamErrors > 0 {
		result += fmt.Sprintf("Stream Errors:  %8d\n", s.StreamErrors)
	}
	result += fmt.Sprintf("Packet Rate:    %8.1f pkts/sec\n", s.PacketRate)
	result += fmt.Sprintf("Error Rate:     %8.1f errors/sec\n", s.ErrorRate)
	result += "================================\n"
	return result
}

// Reset zeroes every counter and restarts the rate window.
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{StartTime: now, LastUpdateTime: now}
}
