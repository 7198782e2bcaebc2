package roster

import "errors"

var (
	// ErrUnauthorized is returned when the actor is not an admin of the chat.
	ErrUnauthorized = errors.New("actor is not an admin of this chat")
	// ErrSelectionNotActive is returned when a member answers while no round is open.
	ErrSelectionNotActive = errors.New("no selection is open")
	// ErrNotActive is returned when an admin closes a round that is not open.
	ErrNotActive = errors.New("selection is not active")
	// ErrInvalidArgument is returned for malformed targets or presence values.
	ErrInvalidArgument = errors.New("invalid argument")
)
