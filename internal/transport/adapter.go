// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/models"
)

const handshakeTimeout = 10 * time.Second

// adapter is the websocket-based implementation of [Adapter], adapted
// from the dial/read-loop/reconnect shape of a generic agent websocket
// transport to the mix client's selfAddress handshake and frame shapes
// (SPEC_FULL.md §2.4).
type adapter struct {
	url         string
	addressFile string
	backoffMin  time.Duration
	backoffMax  time.Duration
	log         *logger.Logger

	mu          sync.Mutex
	conn        *websocket.Conn
	connected   bool
	selfAddress string
	onReceive   func(models.Frame)

	writeMu sync.Mutex
	done    chan struct{}
}

// NewAdapter constructs an [Adapter] dialing url, bounding reconnect
// backoff between backoffMin and backoffMax (spec.md §5), and persisting
// the learned mix address to addressFile (spec.md §4.9, §6).
func NewAdapter(url, addressFile string, backoffMin, backoffMax time.Duration, log *logger.Logger) Adapter {
	return &adapter{
		url:         url,
		addressFile: addressFile,
		backoffMin:  backoffMin,
		backoffMax:  backoffMax,
		log:         log,
		done:        make(chan struct{}),
	}
}

func (a *adapter) OnReceive(cb func(models.Frame)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onReceive = cb
}

func (a *adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

func (a *adapter) SelfAddress() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selfAddress
}

func (a *adapter) Connect(ctx context.Context) error {
	if err := a.dial(ctx); err != nil {
		return err
	}

	if err := a.handshake(ctx); err != nil {
		return err
	}

	go a.readLoop()

	return nil
}

func (a *adapter) dial(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, a.url, nil)
	if err != nil {
		return fmt.Errorf("transport: dial mix client: %w", err)
	}

	a.mu.Lock()
	a.conn = conn
	a.connected = true
	a.mu.Unlock()

	return nil
}

func (a *adapter) handshake(ctx context.Context) error {
	if err := a.writeFrame(models.Frame{Type: models.FrameTypeSelfAddress}); err != nil {
		return fmt.Errorf("transport: send selfAddress request: %w", err)
	}

	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("transport: read selfAddress response: %w", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var resp struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("transport: decode selfAddress response: %w", err)
	}

	a.mu.Lock()
	a.selfAddress = resp.Address
	a.mu.Unlock()

	if err := os.WriteFile(a.addressFile, []byte(resp.Address), 0o644); err != nil {
		a.log.Warn().Err(err).Str("path", a.addressFile).Msg("failed to persist mix self address")
	}

	return nil
}

func (a *adapter) readLoop() {
	for {
		select {
		case <-a.done:
			return
		default:
		}

		a.mu.Lock()
		conn := a.conn
		a.mu.Unlock()

		_, raw, err := conn.ReadMessage()
		if err != nil {
			a.log.Warn().Err(err).Msg("mix client connection dropped, reconnecting")
			a.setConnected(false)
			// reconnect() calls Connect(), which starts a fresh read loop
			// goroutine on success; this goroutine must not continue
			// reading from the now-dead connection.
			a.reconnect()
			return
		}

		var frame models.Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			a.log.Warn().Err(err).Msg("dropping malformed frame from mix client")
			continue
		}

		a.mu.Lock()
		cb := a.onReceive
		a.mu.Unlock()

		if cb != nil {
			cb(frame)
		}
	}
}

func (a *adapter) reconnect() {
	backoff := a.backoffMin
	for {
		select {
		case <-a.done:
			return
		case <-time.After(backoff):
		}

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		err := a.Connect(ctx)
		cancel()
		if err == nil {
			return
		}

		a.log.Warn().Err(err).Dur("backoff", backoff).Msg("mix client reconnect attempt failed")
		backoff *= 2
		if backoff > a.backoffMax {
			backoff = a.backoffMax
		}
	}
}

func (a *adapter) setConnected(v bool) {
	a.mu.Lock()
	a.connected = v
	a.mu.Unlock()
}

func (a *adapter) Send(ctx context.Context, frame models.Frame) error {
	return a.writeFrame(frame)
}

func (a *adapter) writeFrame(frame models.Frame) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("transport: not connected")
	}

	raw, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("transport: marshal frame: %w", err)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(handshakeTimeout))
	return conn.WriteMessage(websocket.TextMessage, raw)
}

func (a *adapter) Close() error {
	close(a.done)

	a.mu.Lock()
	conn := a.conn
	a.connected = false
	a.mu.Unlock()

	if conn == nil {
		return nil
	}
	return conn.Close()
}
