// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/transport"
)

var (
	sendHex  string
	sendText string
	sendKV   string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Write a payload and send one packet",
	Long: `Builds a payload from exactly one of --hex, --text, or --kv, writes it
to the transmission buffer, and calls SendData over the selected connection.`,
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendHex, "hex", "", "Payload as a hex string, e.g. deadbeef")
	sendCmd.Flags().StringVar(&sendText, "text", "", "Payload as a UTF-8 string")
	sendCmd.Flags().StringVar(&sendKV, "kv", "", "Payload as a CBOR-encoded key=value,key=value map")
}

func buildPayload() ([]byte, error) {
	set := 0
	if sendHex != "" {
		set++
	}
	if sendText != "" {
		set++
	}
	if sendKV != "" {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("linkframe send: specify exactly one of --hex, --text, --kv")
	}

	switch {
	case sendHex != "":
		payload, err := hex.DecodeString(sendHex)
		if err != nil {
			return nil, fmt.Errorf("linkframe send: invalid --hex payload: %w", err)
		}
		return payload, nil
	case sendText != "":
		return []byte(sendText), nil
	default:
		return encodeKVPayload(sendKV)
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	payload, err := buildPayload()
	if err != nil {
		return err
	}

	t, info, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	fmt.Printf("linkframe send\nConnection: %s\nPayload: %d bytes\n", info, len(payload))

	if _, status := t.WriteBytes(payload, 0); status != transport.StatusObjectWrittenToBuffer {
		return fmt.Errorf("linkframe send: WriteBytes failed: %s", status)
	}

	ok, err := t.SendData()
	if err != nil {
		return fmt.Errorf("linkframe send: %w", err)
	}
	if !ok {
		return fmt.Errorf("linkframe send: SendData failed: %s", t.Status)
	}

	fmt.Printf("Sent OK (status: %s)\n", t.Status)
	return nil
}
