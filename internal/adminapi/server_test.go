// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/session"
	"github.com/nymproject/directory-relay/models"
)

type fakeStore struct{ count int }

func (f *fakeStore) Register(context.Context, string, string) error { return nil }
func (f *fakeStore) GetByUsername(context.Context, string) (*models.DirectoryUser, error) {
	return nil, nil
}
func (f *fakeStore) GetBySenderTag(context.Context, string) (*models.DirectoryUser, bool, error) {
	return nil, false, nil
}
func (f *fakeStore) UpdateField(context.Context, string, string, string) error { return nil }
func (f *fakeStore) Count(context.Context) (int, error)                       { return f.count, nil }

type fakeLedger struct{ pending int }

func (f *fakeLedger) Insert(string, session.Pending)        {}
func (f *fakeLedger) Take(string) (session.Pending, bool)   { return session.Pending{}, false }
func (f *fakeLedger) Discard(string)                        {}
func (f *fakeLedger) PendingCount() int                     { return f.pending }

type fakeTransport struct{ connected bool }

func (f *fakeTransport) Connected() bool { return f.connected }

type fakePresence struct {
	count int
	err   error
}

func (f *fakePresence) OnlineCount(context.Context) (int, error) { return f.count, f.err }

func TestHandleHealthz(t *testing.T) {
	srv := New(":0", nil, nil, &fakeTransport{connected: true}, nil, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.handleHealthz(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp healthzResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.True(t, resp.TransportConnected)
}

func TestHandleStats_WithoutPresence(t *testing.T) {
	srv := New(":0", &fakeStore{count: 7}, &fakeLedger{pending: 2}, &fakeTransport{}, nil, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handleStats(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.DirectoryUserCount)
	assert.Equal(t, 2, resp.PendingChallenges)
	assert.False(t, resp.PresenceEnabled)
}

func TestHandleStats_WithPresence(t *testing.T) {
	srv := New(":0", &fakeStore{count: 1}, &fakeLedger{pending: 0}, &fakeTransport{}, &fakePresence{count: 4}, logger.Nop())

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	srv.handleStats(rec, req)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.PresenceEnabled)
	assert.Equal(t, 4, resp.OnlineUserCount)
}
