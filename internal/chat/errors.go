package chat

import "errors"

var (
	ErrEmptyDraft        = errors.New("chat: nothing to send")
	ErrBusy              = errors.New("chat: a message is already being sent")
	ErrLocked            = errors.New("chat: controls are briefly locked")
	ErrMicrophoneDenied  = errors.New("chat: microphone access denied")
	ErrAlreadyRecording  = errors.New("chat: already recording")
	ErrNotRecording      = errors.New("chat: not recording")
	ErrUnsupportedMedia  = errors.New("chat: unsupported media type")
	ErrAttachmentTooLong = errors.New("chat: attachment too large")
	ErrClosed            = errors.New("chat: panel is closed")
)
