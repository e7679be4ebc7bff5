package conversation

import "errors"

var (
	// ErrEmptyTurn is returned when a turn has neither text nor media.
	ErrEmptyTurn = errors.New("conversation: turn has no content")
	// ErrInvalidAttachment is returned when inline media cannot be decoded.
	ErrInvalidAttachment = errors.New("conversation: invalid attachment")
	ErrNoMessages        = errors.New("conversation: at least one message is required")
)
