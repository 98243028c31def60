// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const soakTestPollInterval = time.Millisecond

var soakTestDuration int

var soakTestCmd = &cobra.Command{
	Use:   "soak-test",
	Short: "Test raw connection stability without framing assumptions",
	Long: `Opens the selected connection and just waits, logging any bytes received
or errors encountered, without running the framed packet protocol at all.
Useful for debugging connection stability independent of whether the
sender ever emits a well-formed packet.

Exit codes:
  0 - Test completed normally
  1 - Test failed
  2 - Connection error`,
	RunE: runSoakTest,
}

func init() {
	rootCmd.AddCommand(soakTestCmd)
	soakTestCmd.Flags().IntVar(&soakTestDuration, "duration", 30, "Test duration in seconds")
}

func runSoakTest(cmd *cobra.Command, args []string) error {
	bs, info, err := openStream()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %v\n", err)
		os.Exit(2)
	}
	defer closeStream(bs)

	fmt.Printf("linkframe soak-test\n")
	fmt.Printf("Connection: %s\n", info)
	fmt.Printf("Duration: %d seconds\n\n", soakTestDuration)

	type chunk struct {
		data []byte
		err  error
	}
	readChan := make(chan chunk, 256)

	go func() {
		for {
			b, ok, err := bs.ReadOne()
			if err != nil {
				readChan <- chunk{nil, err}
				return
			}
			if !ok {
				time.Sleep(soakTestPollInterval)
				continue
			}
			readChan <- chunk{[]byte{b}, nil}
		}
	}()

	endTime := time.Now().Add(time.Duration(soakTestDuration) * time.Second)
	bytesReceived := 0

	fmt.Printf("Listening for data...\n\n")

	for time.Now().Before(endTime) {
		select {
		case c := <-readChan:
			if c.err != nil {
				fmt.Fprintf(os.Stderr, "\n[%s] Connection error: %v\n",
					time.Now().Format("15:04:05.000"), c.err)
				fmt.Printf("\n--- Test Results ---\n")
				fmt.Printf("Bytes received: %d\n", bytesReceived)
				fmt.Printf("Result: FAILED (connection error)\n")
				os.Exit(1)
			}
			bytesReceived += len(c.data)
			fmt.Printf("[%s] Received %d bytes: %x\n",
				time.Now().Format("15:04:05.000"), len(c.data), c.data)

		case <-time.After(1 * time.Second):
			remaining := time.Until(endTime).Seconds()
			fmt.Printf("[%s] Still connected... (%.0fs remaining)\n",
				time.Now().Format("15:04:05.000"), remaining)
		}
	}

	fmt.Printf("\n--- Test Results ---\n")
	fmt.Printf("Duration: %d seconds\n", soakTestDuration)
	fmt.Printf("Bytes received: %d\n", bytesReceived)
	fmt.Printf("Result: PASSED (connection stable)\n")

	return nil
}
