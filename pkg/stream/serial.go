// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"fmt"

	"go.bug.st/serial"
)

// SerialPort is a ByteStream backed by a real USB-CDC or UART serial
// connection, the most common way a microcontroller board is attached to
// the analysis host.
type SerialPort struct {
	port serial.Port
	*ReaderWriterStream
}

// OpenSerialPort opens portName at baudRate with 8-N-1 framing and returns a
// ByteStream reading from and writing to it.
func OpenSerialPort(portName string, baudRate int) (*SerialPort, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("stream: open serial port %s: %w", portName, err)
	}

	return &SerialPort{port: port, ReaderWriterStream: NewReaderWriterStream(port)}, nil
}
