package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"sync"
)

// AudioMIMEType is the container used for recorded clips.
const AudioMIMEType = "audio/webm"

// AudioSource grants access to a microphone.
type AudioSource interface {
	Open(ctx context.Context) (AudioCapture, error)
}

// AudioCapture accumulates recorded chunks until it is finished or aborted.
type AudioCapture interface {
	Write(p []byte) (int, error)
	// Finish ends the capture and returns the whole clip.
	Finish() ([]byte, error)
	Abort()
}

// StreamedSource is a microphone whose chunks are pushed in by the client.
type StreamedSource struct{}

func (StreamedSource) Open(context.Context) (AudioCapture, error) {
	return &bufferCapture{}, nil
}

// DeniedSource refuses access, as when the client reports a blocked device.
type DeniedSource struct{}

func (DeniedSource) Open(context.Context) (AudioCapture, error) {
	return nil, ErrMicrophoneDenied
}

type bufferCapture struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	aborted bool
}

func (c *bufferCapture) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.aborted {
		return 0, ErrNotRecording
	}
	return c.buf.Write(p)
}

func (c *bufferCapture) Finish() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	c.buf.Reset()
	return out, nil
}

func (c *bufferCapture) Abort() {
	c.mu.Lock()
	c.aborted = true
	c.buf.Reset()
	c.mu.Unlock()
}

func dataURL(mimeType string, raw []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(raw)
}
