package directory

import "errors"

// Sentinel errors returned by [Store], mirroring the closed failure modes
// named in spec.md §7 and §9.
var (
	// ErrUsernameTaken is returned by [Store.Register] when the username
	// already exists; the router replies "error: username already in use"
	// (spec.md §4.5 step 3).
	ErrUsernameTaken = errors.New("username taken")
	// ErrUserNotFound is returned when a lookup finds no matching username
	// (spec.md §4.6 step 3, §4.7 step 2: "error: user not found").
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidUsername is returned when a username fails the format
	// check (spec.md §9: `[A-Za-z0-9_-]+`).
	ErrInvalidUsername = errors.New("invalid username")
	// ErrNotWritableField is returned by [Store.UpdateField] when asked to
	// write outside the closed {publicKey, senderTag} set (spec.md §4.2, §9).
	ErrNotWritableField = errors.New("field is not writable")
)
