// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/models"
)

func newTestMixServer(t *testing.T, address string) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}

			var frame models.Frame
			require.NoError(t, json.Unmarshal(raw, &frame))

			if frame.Type == models.FrameTypeSelfAddress {
				resp, _ := json.Marshal(map[string]string{"address": address})
				require.NoError(t, conn.WriteMessage(websocket.TextMessage, resp))
				continue
			}

			// Echo anything else back as a "received" frame.
			echo, _ := json.Marshal(models.Frame{Type: models.FrameTypeReceived, Message: frame.Message, SenderTag: "echo-tag"})
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, echo))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAdapter_Connect_PerformsSelfAddressHandshake(t *testing.T) {
	srv := newTestMixServer(t, "abc.self.address")
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	addrFile := filepath.Join(t.TempDir(), "nym_address.txt")
	a := NewAdapter(url, addrFile, 10*time.Millisecond, time.Second, logger.Nop())
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, a.Connect(ctx))
	require.Equal(t, "abc.self.address", a.SelfAddress())
	require.True(t, a.Connected())
}

func TestAdapter_Send_TriggersOnReceiveCallback(t *testing.T) {
	srv := newTestMixServer(t, "abc.self.address")
	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	a := NewAdapter(url, filepath.Join(t.TempDir(), "addr.txt"), 10*time.Millisecond, time.Second, logger.Nop())
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Connect(ctx))

	received := make(chan models.Frame, 1)
	a.OnReceive(func(f models.Frame) { received <- f })

	require.NoError(t, a.Send(ctx, models.Frame{Type: models.FrameTypeSend, Message: "hello"}))

	select {
	case f := <-received:
		require.Equal(t, "hello", f.Message)
		require.Equal(t, "echo-tag", f.SenderTag)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for received frame")
	}
}
