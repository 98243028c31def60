// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package crc

import (
	"math/rand"
	"testing"
)

func TestNewRejectsInvalidWidth(t *testing.T) {
	if _, err := New(Width(3), 0x1021, 0xFFFF, 0); err == nil {
		t.Fatal("New accepted width 3, want error")
	}
}

func TestCRC16LiteralVector(t *testing.T) {
	c, err := New(Width2, 0x1021, 0xFFFF, 0x0000)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x15}
	got := c.Calculate(data, 0, len(data))
	if c.Status != StatusChecksumCalculated {
		t.Fatalf("status = %v, want StatusChecksumCalculated", c.Status)
	}
	if got != 0xF54E {
		t.Fatalf("Calculate() = 0x%04X, want 0xF54E", got)
	}

	buf := append(append([]byte{}, data...), 0, 0)
	if _, ok := c.Append(buf, len(data), got); !ok {
		t.Fatalf("Append failed, status = %v", c.Status)
	}
	if buf[len(data)] != 0xF5 || buf[len(data)+1] != 0x4E {
		t.Fatalf("Append wrote %v, want [0xF5, 0x4E]", buf[len(data):])
	}

	selfCheck := c.Calculate(buf, 0, len(buf))
	if selfCheck != 0x0000 {
		t.Fatalf("self-check over extended buffer = 0x%04X, want 0x0000", selfCheck)
	}
}

func TestAppendReadRoundTrip(t *testing.T) {
	widths := []Width{Width1, Width2, Width4}
	polys := map[Width]uint32{Width1: 0x07, Width2: 0x1021, Width4: 0x000000AF}

	for _, w := range widths {
		c, err := New(w, polys[w], 0, 0)
		if err != nil {
			t.Fatalf("width %d: New: %v", w, err)
		}

		buf := make([]byte, 8+int(w))
		for i := range buf[:8] {
			buf[i] = byte(i * 3)
		}

		checksum := c.Calculate(buf, 0, 8)
		if _, ok := c.Append(buf, 8, checksum); !ok {
			t.Fatalf("width %d: Append failed", w)
		}

		readBack, ok := c.Read(buf, 8)
		if !ok {
			t.Fatalf("width %d: Read failed", w)
		}
		if readBack != checksum {
			t.Fatalf("width %d: Read() = %x, want %x", w, readBack, checksum)
		}
	}
}

func TestSelfCheckProperty(t *testing.T) {
	// For every polynomial/init/xor_out triple named in the spec, appending
	// a buffer's own checksum and recomputing over the extended buffer must
	// reproduce xor_out.
	cases := []struct {
		width  Width
		poly   uint32
		init   uint32
		xorOut uint32
	}{
		{Width1, 0x07, 0, 0},
		{Width2, 0x1021, 0xFFFF, 0},
		{Width4, 0x000000AF, 0xFFFFFFFF, 0},
	}

	rng := rand.New(rand.NewSource(1))

	for _, tc := range cases {
		c, err := New(tc.width, tc.poly, tc.init, tc.xorOut)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		for trial := 0; trial < 50; trial++ {
			size := 1 + rng.Intn(64)
			buf := make([]byte, size+int(tc.width))
			rng.Read(buf[:size])

			checksum := c.Calculate(buf, 0, size)
			if _, ok := c.Append(buf, size, checksum); !ok {
				t.Fatalf("width %d trial %d: Append failed", tc.width, trial)
			}

			result := c.Calculate(buf, 0, len(buf))
			if result != tc.xorOut {
				t.Fatalf("width %d trial %d: self-check = %x, want xor_out %x", tc.width, trial, result, tc.xorOut)
			}
		}
	}
}

func TestCalculateRejectsOutOfRangeLength(t *testing.T) {
	c, _ := New(Width2, 0x1021, 0xFFFF, 0)
	buf := make([]byte, 4)
	if got := c.Calculate(buf, 2, 10); got != 0 {
		t.Fatalf("Calculate returned %d, want 0", got)
	}
	if c.Status != StatusCalculateChecksumBufferTooSmall {
		t.Fatalf("status = %v, want StatusCalculateChecksumBufferTooSmall", c.Status)
	}
}

func TestAppendRejectsBufferTooSmall(t *testing.T) {
	c, _ := New(Width4, 0x000000AF, 0, 0)
	buf := make([]byte, 2)
	if _, ok := c.Append(buf, 0, 0xDEADBEEF); ok {
		t.Fatal("Append succeeded, want failure")
	}
	if c.Status != StatusAddChecksumBufferTooSmall {
		t.Fatalf("status = %v, want StatusAddChecksumBufferTooSmall", c.Status)
	}
}
