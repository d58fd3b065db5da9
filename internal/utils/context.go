// Package utils provides general-purpose helper utilities used across
// different parts of the application: context type-safe keys and
// identifier generation.
package utils

import (
	"context"
)

// contextKey is a private type for context keys.
// Using a dedicated type instead of a plain string prevents key collisions
// with other packages that may use string-based keys in the context.
type contextKey string

// String returns the string representation of the context key.
// Implements the fmt.Stringer interface.
func (c contextKey) String() string {
	return string(c)
}

// TraceIDCtxKey is the key used to store the per-frame correlation id in
// the context (SPEC_FULL.md §1.4).
//
// Example of writing a value to the context:
//
//	ctx := context.WithValue(ctx, utils.TraceIDCtxKey, traceID)
var TraceIDCtxKey = contextKey("traceID")

// GetTraceIDFromContext retrieves the correlation id from the context.
//
// Returns ok == false when no trace id has been attached.
func GetTraceIDFromContext(ctx context.Context) (string, bool) {
	traceID, ok := ctx.Value(TraceIDCtxKey).(string)
	return traceID, ok
}
