// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
)

var listenCBOR bool

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Continuously decode and display received packets",
	Long: `Continuously calls ReceiveData on the selected connection and prints
each successfully decoded payload.`,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().BoolVar(&listenCBOR, "cbor", false, "Decode each payload as a CBOR key=value map before printing")
}

func runListen(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	fmt.Printf("linkframe listen\nConnection: %s\nPress Ctrl+C to exit\n\n", info)

	for {
		ok, err := t.ReceiveData()
		if err != nil {
			log.Printf("stream error: %v", err)
			return nil
		}
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}

		payload := make([]byte, t.RxPayloadSize())
		t.ReadBytes(payload, 0)

		timestamp := time.Now().Format("15:04:05.000")
		if listenCBOR {
			kv, err := decodeKVPayload(payload)
			if err != nil {
				fmt.Printf("[%s] %d bytes, CBOR decode failed: %v\n", timestamp, len(payload), err)
				continue
			}
			fmt.Printf("[%s] %d bytes -> %v\n", timestamp, len(payload), kv)
			continue
		}

		fmt.Printf("[%s] %d bytes: % X\n", timestamp, len(payload), payload)
	}
}
