// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// DirectoryUser is a single row of the directory's users table
// (spec.md §3). PublicKey and SenderTag are stored encrypted at rest
// (spec.md §4.1); this struct always carries their plaintext form once
// loaded through the Directory Store.
type DirectoryUser struct {
	Username  string `json:"username"`
	PublicKey string `json:"publicKey"`
	// SenderTag is the mix return-path tag most recently used by this
	// user to authenticate (spec.md §3). Set on successful registration
	// and rebound on each successful login or send.
	SenderTag string `json:"senderTag"`
}

// TableName names the sqlite table backing [DirectoryUser] rows.
func (DirectoryUser) TableName() string { return "users" }

// Writable field names for [DirectoryUser.PublicKey] and
// [DirectoryUser.SenderTag] updates (spec.md §4.2, §9). This is the
// closed set enforced before any update reaches the storage layer.
const (
	FieldPublicKey = "publicKey"
	FieldSenderTag = "senderTag"
)
