// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLedger_InsertTake_RoundTrip(t *testing.T) {
	l := NewLedger(time.Minute)

	pending := Pending{Kind: KindLogin, Username: "alice", Nonce: "abc", IssuedAt: time.Now()}
	l.Insert("tag-1", pending)

	got, ok := l.Take("tag-1")
	require.True(t, ok)
	require.Equal(t, pending.Username, got.Username)
	require.Equal(t, pending.Nonce, got.Nonce)
}

func TestLedger_Take_Consumes(t *testing.T) {
	l := NewLedger(time.Minute)
	l.Insert("tag-1", Pending{Nonce: "abc", IssuedAt: time.Now()})

	_, ok := l.Take("tag-1")
	require.True(t, ok)

	_, ok = l.Take("tag-1")
	require.False(t, ok, "a consumed entry must not be returned twice")
}

func TestLedger_Take_Missing(t *testing.T) {
	l := NewLedger(time.Minute)
	_, ok := l.Take("no-such-tag")
	require.False(t, ok)
}

func TestLedger_Take_ExpiredEntryTreatedAsMissing(t *testing.T) {
	l := NewLedger(10 * time.Millisecond)
	l.Insert("tag-1", Pending{Nonce: "abc", IssuedAt: time.Now().Add(-time.Second)})

	_, ok := l.Take("tag-1")
	require.False(t, ok)
}

func TestLedger_Discard(t *testing.T) {
	l := NewLedger(time.Minute)
	l.Insert("tag-1", Pending{Nonce: "abc", IssuedAt: time.Now()})

	l.Discard("tag-1")

	_, ok := l.Take("tag-1")
	require.False(t, ok)
}

func TestLedger_Insert_OverwritesPrevious(t *testing.T) {
	l := NewLedger(time.Minute)
	l.Insert("tag-1", Pending{Nonce: "first", IssuedAt: time.Now()})
	l.Insert("tag-1", Pending{Nonce: "second", IssuedAt: time.Now()})

	got, ok := l.Take("tag-1")
	require.True(t, ok)
	require.Equal(t, "second", got.Nonce)
}

func TestLedger_PendingCount(t *testing.T) {
	l := NewLedger(time.Minute)
	require.Equal(t, 0, l.PendingCount())

	l.Insert("tag-1", Pending{IssuedAt: time.Now()})
	l.Insert("tag-2", Pending{IssuedAt: time.Now()})
	require.Equal(t, 2, l.PendingCount())

	l.Discard("tag-1")
	require.Equal(t, 1, l.PendingCount())
}
