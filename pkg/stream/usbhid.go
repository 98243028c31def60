// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"fmt"

	"github.com/karalabe/usb"
)

// USBDevice is a ByteStream backed by a raw USB HID/bulk endpoint,
// exercised by boards that expose themselves as a USB device rather than a
// virtual serial port. usb.Device already satisfies io.ReadWriteCloser, so
// this wraps it the same way SerialPort wraps a go.bug.st/serial.Port.
type USBDevice struct {
	dev usb.Device
	*ReaderWriterStream
}

// OpenUSBDevice enumerates USB devices by vendor/product ID and opens the
// first match as a ByteStream.
func OpenUSBDevice(vendorID, productID uint16) (*USBDevice, error) {
	infos, err := usb.Enumerate(vendorID, productID)
	if err != nil {
		return nil, fmt.Errorf("stream: usb enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("stream: no USB device found for VID:0x%04X PID:0x%04X", vendorID, productID)
	}

	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("stream: open usb device: %w", err)
	}

	return &USBDevice{dev: dev, ReaderWriterStream: NewReaderWriterStream(dev)}, nil
}
