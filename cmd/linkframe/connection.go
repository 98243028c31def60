// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/stream"
	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/transport"
)

// getPassword retrieves the WebSocket bridge password from the environment
// or prompts the user for it interactively.
func getPassword() (string, error) {
	if pw := os.Getenv("LINKFRAME_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// openStream opens a serial, WebSocket, or USB HID ByteStream, selected by
// which persistent flag was set.
func openStream() (stream.ByteStream, string, error) {
	if wsURL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = getPassword()
			if err != nil {
				return nil, "", err
			}
		}

		ws, err := stream.OpenWebSocketStream(wsURL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return ws, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if portName != "" {
		sp, err := stream.OpenSerialPort(portName, baudRate)
		if err != nil {
			return nil, "", err
		}
		return sp, fmt.Sprintf("Serial: %s @ %d baud", portName, baudRate), nil
	}

	if usbVendorID != 0 || usbProductID != 0 {
		dev, err := stream.OpenUSBDevice(usbVendorID, usbProductID)
		if err != nil {
			return nil, "", err
		}
		return dev, fmt.Sprintf("USB: VID:0x%04X PID:0x%04X", usbVendorID, usbProductID), nil
	}

	return nil, "", fmt.Errorf("one of --port, --url, or --usb-vid/--usb-pid must be specified")
}

// buildConfig assembles a transport.Config from the persistent framing
// flags shared by every subcommand.
func buildConfig() (transport.Config, error) {
	width, err := crcWidth()
	if err != nil {
		return transport.Config{}, err
	}

	return transport.Config{
		MaxTxPayload:       maxPayload,
		MaxRxPayload:       maxPayload,
		MinRxPayload:       minPayload,
		CRCWidth:           width,
		Polynomial:         crcPolynomial,
		Init:               crcInit,
		XorOut:             crcXorOut,
		StartByte:          startByte,
		DelimiterByte:      delimiterByte,
		InterByteTimeoutUs: interByteTimeoutUs,
	}, nil
}

// openTransport opens a connection and wraps it in a Transport built from
// the persistent flags, returning a human-readable description of the
// connection alongside it.
func openTransport() (*transport.Transport, string, error) {
	bs, info, err := openStream()
	if err != nil {
		return nil, "", err
	}

	cfg, err := buildConfig()
	if err != nil {
		closeStream(bs)
		return nil, "", err
	}

	t, err := transport.New(cfg, bs, &stream.SystemClock{})
	if err != nil {
		closeStream(bs)
		return nil, "", err
	}

	return t, info, nil
}

func closeStream(bs stream.ByteStream) {
	if c, ok := bs.(interface{ Close() error }); ok {
		c.Close()
	}
}
