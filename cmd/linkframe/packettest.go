// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const packetTestPollInterval = time.Millisecond

var packetTestTimeoutSeconds int

var packetTestCmd = &cobra.Command{
	Use:   "packet-test",
	Short: "Wait for one valid packet and report its shape",
	Long: `Waits up to --timeout seconds for a single valid, CRC-checked packet
on the selected connection.

Exit codes:
  0 - Packet received before timeout
  1 - Timeout reached without receiving a valid packet
  2 - Connection error`,
	RunE: runPacketTest,
}

func init() {
	rootCmd.AddCommand(packetTestCmd)
	packetTestCmd.Flags().IntVar(&packetTestTimeoutSeconds, "timeout", 10, "Timeout in seconds to wait for a packet")
}

func runPacketTest(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer t.Close()

	fmt.Printf("linkframe packet-test\nConnection: %s\nTimeout: %d seconds\nWaiting for a valid packet...\n\n",
		info, packetTestTimeoutSeconds)

	type result struct {
		ok  bool
		err error
	}
	resultChan := make(chan result, 1)

	go func() {
		for {
			ok, err := t.ReceiveData()
			if err != nil {
				resultChan <- result{false, err}
				return
			}
			if ok {
				resultChan <- result{true, nil}
				return
			}
			time.Sleep(packetTestPollInterval)
		}
	}()

	select {
	case r := <-resultChan:
		if r.err != nil {
			fmt.Fprintf(os.Stderr, "Read error: %v\n", r.err)
			os.Exit(2)
		}
		fmt.Printf("SUCCESS: received a valid packet\n")
		fmt.Printf("  Payload length: %d bytes\n", t.RxPayloadSize())
		os.Exit(0)

	case <-time.After(time.Duration(packetTestTimeoutSeconds) * time.Second):
		fmt.Fprintf(os.Stderr, "TIMEOUT: no valid packet received within %d seconds\n", packetTestTimeoutSeconds)
		os.Exit(1)
	}

	return nil
}
