// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package linkframe implements the linkframe CLI: a connection- and
// payload-schema-agnostic analyzer for the pkg/transport framed protocol.
package linkframe

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/crc"
)

var (
	// Serial connection flags.
	portName string
	baudRate int

	// WebSocket connection flags.
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool

	// USB HID/bulk connection flags.
	usbVendorID  uint16
	usbProductID uint16

	// Transport framing flags, shared by every subcommand that opens a
	// Transport.
	startByte          uint8
	delimiterByte      uint8
	maxPayload         int
	minPayload         int
	crcWidthFlag       int
	crcPolynomial      uint32
	crcInit            uint32
	crcXorOut          uint32
	interByteTimeoutUs int64
)

var rootCmd = &cobra.Command{
	Use:   "linkframe",
	Short: "Framed transport analyzer",
	Long: `linkframe is a CLI for sending and receiving packets over the
pkg/transport framed protocol (COBS framing, CRC validation) without
assuming anything about the payload bytes it carries.

Connection modes:
  Serial:    --port /dev/ttyUSB0 [--baud 115200]
  WebSocket: --url ws://host/path [--username user]
  USB HID:   --usb-vid 0x17A4 --usb-pid 0x001E

For WebSocket authentication, the password is read from the
LINKFRAME_PASSWORD environment variable, or prompted interactively if not
set. There is intentionally no --password flag, to avoid leaking
credentials in shell history.`,
	Version: "0.1.0",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")

	rootCmd.PersistentFlags().Uint16Var(&usbVendorID, "usb-vid", 0, "USB vendor ID (raw HID/bulk connection)")
	rootCmd.PersistentFlags().Uint16Var(&usbProductID, "usb-pid", 0, "USB product ID (raw HID/bulk connection)")

	rootCmd.PersistentFlags().Uint8Var(&startByte, "start-byte", 0x81, "Packet start byte")
	rootCmd.PersistentFlags().Uint8Var(&delimiterByte, "delimiter-byte", 0x00, "COBS delimiter byte")
	rootCmd.PersistentFlags().IntVar(&maxPayload, "max-payload", 254, "Maximum payload size in bytes, [1,254]")
	rootCmd.PersistentFlags().IntVar(&minPayload, "min-payload", 1, "Minimum accepted receive payload size, [1,max-payload]")
	rootCmd.PersistentFlags().IntVar(&crcWidthFlag, "crc-width", 2, "CRC width in bytes: 1, 2, or 4")
	rootCmd.PersistentFlags().Uint32Var(&crcPolynomial, "crc-poly", 0x1021, "CRC polynomial")
	rootCmd.PersistentFlags().Uint32Var(&crcInit, "crc-init", 0xFFFF, "CRC initial remainder")
	rootCmd.PersistentFlags().Uint32Var(&crcXorOut, "crc-xorout", 0, "CRC final XOR value")
	rootCmd.PersistentFlags().Int64Var(&interByteTimeoutUs, "timeout-us", 5000, "Inter-byte timeout in microseconds")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func crcWidth() (crc.Width, error) {
	switch crcWidthFlag {
	case 1:
		return crc.Width1, nil
	case 2:
		return crc.Width2, nil
	case 4:
		return crc.Width4, nil
	default:
		return 0, fmt.Errorf("linkframe: --crc-width must be 1, 2, or 4, got %d", crcWidthFlag)
	}
}
