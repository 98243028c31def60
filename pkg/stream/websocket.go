// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package stream

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// websocketConn adapts a *websocket.Conn, which exchanges discrete binary
// messages, into an io.ReadWriteCloser of raw bytes, the shape
// ReaderWriterStream expects. Each WriteMessage call becomes one binary
// frame; each ReadMessage call is buffered and drained byte by byte.
type websocketConn struct {
	conn      *websocket.Conn
	readBuf   []byte
	readIndex int
}

func (w *websocketConn) Read(p []byte) (int, error) {
	if w.readIndex >= len(w.readBuf) {
		for {
			messageType, data, err := w.conn.ReadMessage()
			if err != nil {
				return 0, err
			}
			if messageType != websocket.BinaryMessage {
				continue
			}
			w.readBuf = data
			w.readIndex = 0
			break
		}
	}

	n := copy(p, w.readBuf[w.readIndex:])
	w.readIndex += n
	return n, nil
}

func (w *websocketConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *websocketConn) Close() error {
	return w.conn.Close()
}

// WebSocketStream is a ByteStream tunneling the packet stream over a
// WebSocket connection, used as a bridge when the microcontroller is not
// directly attached to the analysis host.
type WebSocketStream struct {
	*ReaderWriterStream
}

// OpenWebSocketStream dials wsURL (ws:// or wss://), optionally with HTTP
// Basic auth, and returns a ByteStream reading from and writing to it.
func OpenWebSocketStream(wsURL, username, password string, skipTLSVerify bool) (*WebSocketStream, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("stream: invalid websocket url: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	default:
		return nil, fmt.Errorf("stream: unsupported websocket scheme %q (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: skipTLSVerify} //nolint:gosec // opt-in via flag
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("stream: websocket connect failed (HTTP %d): %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("stream: websocket connect failed: %w", err)
	}

	wrapped := &websocketConn{conn: conn}
	return &WebSocketStream{ReaderWriterStream: NewReaderWriterStream(wrapped)}, nil
}
