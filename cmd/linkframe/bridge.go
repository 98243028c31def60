// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Kaz Walker, Thermoquad

package linkframe

import (
	"fmt"
	"log"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/Sun-Lab-NBB/ataraxis-transport-layer-mc/pkg/transport"
)

var (
	bridgeRelayURL string
	bridgeMQTTURL  string
	bridgeRxTopic  string
	bridgeTxTopic  string
)

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Forward the packet stream to a WebSocket relay or MQTT broker",
	Long: `Opens the primary connection (--port or --url) and forwards each
successfully decoded payload to a secondary WebSocket relay (--relay-url)
or MQTT broker (--mqtt), and injects payloads arriving from that relay
back into the primary connection via SendData.

The MQTT side publishes and subscribes on plain byte payloads rather than
a structured command protocol.`,
	RunE: runBridge,
}

func init() {
	rootCmd.AddCommand(bridgeCmd)
	bridgeCmd.Flags().StringVar(&bridgeRelayURL, "relay-url", "", "Secondary WebSocket URL to relay decoded payloads to/from")
	bridgeCmd.Flags().StringVar(&bridgeMQTTURL, "mqtt", "", "MQTT broker URL, e.g. tcp://localhost:1883")
	bridgeCmd.Flags().StringVar(&bridgeRxTopic, "mqtt-rx-topic", "linkframe/rx", "Topic to publish decoded payloads to")
	bridgeCmd.Flags().StringVar(&bridgeTxTopic, "mqtt-tx-topic", "linkframe/tx", "Topic to receive payloads to send from")
}

// relayTarget abstracts the secondary destination a decoded payload is
// forwarded to, and the source of payloads to inject back into the
// primary connection's transmission buffer.
type relayTarget interface {
	forward(payload []byte) error
	inbound() <-chan []byte
	close()
}

type websocketRelay struct {
	conn *websocket.Conn
	rx   chan []byte
}

func openWebsocketRelay(url string) (*websocketRelay, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("linkframe bridge: relay dial failed: %w", err)
	}
	r := &websocketRelay{conn: conn, rx: make(chan []byte, 16)}
	go r.pump()
	return r, nil
}

func (r *websocketRelay) pump() {
	for {
		messageType, data, err := r.conn.ReadMessage()
		if err != nil {
			close(r.rx)
			return
		}
		if messageType == websocket.BinaryMessage {
			r.rx <- data
		}
	}
}

func (r *websocketRelay) forward(payload []byte) error {
	return r.conn.WriteMessage(websocket.BinaryMessage, payload)
}

func (r *websocketRelay) inbound() <-chan []byte { return r.rx }

func (r *websocketRelay) close() { r.conn.Close() }

type mqttRelay struct {
	client  paho.Client
	rxTopic string
	txTopic string
	rx      chan []byte
}

func openMQTTRelay(brokerURL, rxTopic, txTopic string) (*mqttRelay, error) {
	opts := paho.NewClientOptions().AddBroker(brokerURL).SetClientID("linkframe-bridge")
	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("linkframe bridge: mqtt connect failed: %w", token.Error())
	}

	r := &mqttRelay{client: client, rxTopic: rxTopic, txTopic: txTopic, rx: make(chan []byte, 16)}
	token := client.Subscribe(txTopic, 0, func(_ paho.Client, msg paho.Message) {
		r.rx <- msg.Payload()
	})
	if token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return nil, fmt.Errorf("linkframe bridge: mqtt subscribe failed: %w", token.Error())
	}
	return r, nil
}

func (r *mqttRelay) forward(payload []byte) error {
	token := r.client.Publish(r.rxTopic, 0, false, payload)
	token.Wait()
	return token.Error()
}

func (r *mqttRelay) inbound() <-chan []byte { return r.rx }

func (r *mqttRelay) close() { r.client.Disconnect(250) }

func openRelay() (relayTarget, error) {
	switch {
	case bridgeRelayURL != "" && bridgeMQTTURL != "":
		return nil, fmt.Errorf("linkframe bridge: specify exactly one of --relay-url, --mqtt")
	case bridgeRelayURL != "":
		return openWebsocketRelay(bridgeRelayURL)
	case bridgeMQTTURL != "":
		return openMQTTRelay(bridgeMQTTURL, bridgeRxTopic, bridgeTxTopic)
	default:
		return nil, fmt.Errorf("linkframe bridge: specify one of --relay-url, --mqtt")
	}
}

func runBridge(cmd *cobra.Command, args []string) error {
	t, info, err := openTransport()
	if err != nil {
		return err
	}
	defer t.Close()

	relay, err := openRelay()
	if err != nil {
		return err
	}
	defer relay.close()

	fmt.Printf("linkframe bridge\nConnection: %s\nPress Ctrl+C to exit\n\n", info)

	go func() {
		for payload := range relay.inbound() {
			if _, status := t.WriteBytes(payload, 0); status != transport.StatusObjectWrittenToBuffer {
				log.Printf("bridge: WriteBytes failed: %s", status)
				continue
			}
			if ok, err := t.SendData(); err != nil || !ok {
				log.Printf("bridge: SendData failed: ok=%v err=%v status=%s", ok, err, t.Status)
			}
		}
	}()

	for {
		ok, err := t.ReceiveData()
		if err != nil {
			log.Printf("bridge: stream error: %v", err)
			return nil
		}
		if !ok {
			time.Sleep(time.Millisecond)
			continue
		}

		payload := make([]byte, t.RxPayloadSize())
		t.ReadBytes(payload, 0)
		if err := relay.forward(payload); err != nil {
			log.Printf("bridge: forward failed: %v", err)
		}
	}
}
