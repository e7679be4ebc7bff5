package chat

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lamitex/lamitex-crm/internal/catalog"
	"github.com/lamitex/lamitex-crm/internal/conversation"
	"github.com/lamitex/lamitex-crm/internal/observability/metrics"
	"github.com/lamitex/lamitex-crm/pkg/logging"
)

const (
	// DegradedReplyText is the agent reply when no API credential is configured.
	DegradedReplyText = "Erro de conexão com o Assistente Técnico. Verifique sua chave de API ou conexão."
	// AlertMicrophoneDenied is shown when the microphone cannot be opened.
	AlertMicrophoneDenied = "Microfone bloqueado ou indisponível."

	DefaultActionLock  = 300 * time.Millisecond
	MaxAttachmentBytes = 10 << 20
)

// Status is the send state of the panel.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSending Status = "sending"
	StatusLocked  Status = "locked"
)

// RecorderState tracks microphone capture. A finished recording shows up as
// the staged attachment.
type RecorderState string

const (
	RecorderIdle      RecorderState = "idle"
	RecorderRecording RecorderState = "recording"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentAudio AttachmentKind = "audio"
)

// Attachment is a staged media item; Data is a base64 data URL.
type Attachment struct {
	Kind     AttachmentKind `json:"kind"`
	MIMEType string         `json:"mimeType"`
	Data     string         `json:"data"`
}

// Message is one transcript entry.
type Message struct {
	ID         string      `json:"id"`
	Role       Role        `json:"role"`
	Text       string      `json:"text"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Timestamp  time.Time   `json:"timestamp"`
}

// Snapshot is the renderable state of a panel.
type Snapshot struct {
	Status           Status        `json:"status"`
	Recorder         RecorderState `json:"recorder"`
	RecordingSeconds int           `json:"recordingSeconds"`
	RecordingLabel   string        `json:"recordingLabel,omitempty"`
	Draft            string        `json:"draft"`
	Attachment       *Attachment   `json:"attachment,omitempty"`
	Messages         []Message     `json:"messages"`
	Typing           bool          `json:"typing"`
	Alert            string        `json:"alert,omitempty"`
	Greeting         string        `json:"greeting"`
	Degraded         bool          `json:"degraded"`
}

// SendResult reports what a send appended. Reply is nil when the agent call
// failed; the transcript then keeps only the user turn.
type SendResult struct {
	User  Message  `json:"user"`
	Reply *Message `json:"reply,omitempty"`
}

// Sender delivers one turn to the agent.
type Sender interface {
	Send(ctx context.Context, turn conversation.Turn) (string, error)
}

// EventType names a change pushed to panel subscribers.
type EventType string

const (
	EventState   EventType = "state"
	EventMessage EventType = "message"
	EventAlert   EventType = "alert"
)

type Event struct {
	Type    EventType
	Message *Message
	State   *Snapshot
	Alert   string
}

// PanelConfig wires a panel. A nil Sender puts the panel in degraded mode.
type PanelConfig struct {
	Sender     Sender
	ActionLock time.Duration
	Now        func() time.Time
	Logger     *logging.Logger
	Metrics    *metrics.CRMMetrics
}

// Panel is the conversational agent view. Only one send may be in flight and
// short post-action locks absorb repeated triggers.
type Panel struct {
	sender     Sender
	actionLock time.Duration
	now        func() time.Time
	logger     *logging.Logger
	metrics    *metrics.CRMMetrics

	mu               sync.Mutex
	status           Status
	lockedUntil      time.Time
	draft            string
	attachment       *Attachment
	messages         []Message
	recorder         RecorderState
	capture          AudioCapture
	recordingStarted time.Time
	alert            string
	closed           bool
	done             chan struct{}

	subMu       sync.Mutex
	subscribers map[int]func(Event)
	nextSub     int
}

// NewPanel mounts an empty panel.
func NewPanel(cfg PanelConfig) *Panel {
	if cfg.ActionLock <= 0 {
		cfg.ActionLock = DefaultActionLock
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Panel{
		sender:      cfg.Sender,
		actionLock:  cfg.ActionLock,
		now:         cfg.Now,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		status:      StatusIdle,
		recorder:    RecorderIdle,
		subscribers: make(map[int]func(Event)),
		done:        make(chan struct{}),
	}
}

// Done is closed when the panel is unmounted.
func (p *Panel) Done() <-chan struct{} {
	return p.done
}

// Degraded reports whether sends short-circuit without calling the agent.
func (p *Panel) Degraded() bool {
	return p.sender == nil
}

// Subscribe registers fn for every change. The returned func unregisters it.
func (p *Panel) Subscribe(fn func(Event)) func() {
	p.subMu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subscribers[id] = fn
	p.subMu.Unlock()
	return func() {
		p.subMu.Lock()
		delete(p.subscribers, id)
		p.subMu.Unlock()
	}
}

func (p *Panel) emit(events ...Event) {
	p.subMu.Lock()
	subs := make([]func(Event), 0, len(p.subscribers))
	for _, fn := range p.subscribers {
		subs = append(subs, fn)
	}
	p.subMu.Unlock()
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (p *Panel) emitState() {
	snap := p.Snapshot()
	p.emit(Event{Type: EventState, State: &snap})
}

// currentStatus lapses an expired lock. Callers hold p.mu.
func (p *Panel) currentStatus() Status {
	if p.status == StatusLocked && !p.now().Before(p.lockedUntil) {
		p.status = StatusIdle
	}
	return p.status
}

// engageLock starts the post-action lock. A send in flight keeps its status
// and the lock applies once it completes. Callers hold p.mu.
func (p *Panel) engageLock() {
	p.lockedUntil = p.now().Add(p.actionLock)
	if p.status != StatusSending {
		p.status = StatusLocked
	}
}

// Status returns the current send status.
func (p *Panel) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentStatus()
}

// Snapshot returns a copy of the panel state.
func (p *Panel) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	snap := Snapshot{
		Status:   p.currentStatus(),
		Recorder: p.recorder,
		Draft:    p.draft,
		Messages: make([]Message, len(p.messages)),
		Alert:    p.alert,
		Greeting: Greeting(now),
		Degraded: p.sender == nil,
	}
	snap.Typing = snap.Status == StatusSending
	copy(snap.Messages, p.messages)
	if p.attachment != nil {
		att := *p.attachment
		snap.Attachment = &att
	}
	if p.recorder == RecorderRecording {
		snap.RecordingSeconds = int(now.Sub(p.recordingStarted) / time.Second)
		snap.RecordingLabel = FormatDuration(snap.RecordingSeconds)
	}
	return snap
}

// SetDraft replaces the composed text.
func (p *Panel) SetDraft(text string) {
	p.mu.Lock()
	p.draft = text
	p.mu.Unlock()
	p.emitState()
}

// AttachImage reads an image and stages it, replacing any staged attachment.
// An empty mimeType is sniffed from the content.
func (p *Panel) AttachImage(ctx context.Context, r io.Reader, mimeType string) (Attachment, error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxAttachmentBytes+1))
	if err != nil {
		return Attachment{}, fmt.Errorf("chat: read image: %w", err)
	}
	if len(raw) > MaxAttachmentBytes {
		return Attachment{}, ErrAttachmentTooLong
	}
	if len(raw) == 0 {
		return Attachment{}, fmt.Errorf("%w: empty file", ErrUnsupportedMedia)
	}
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(raw)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return Attachment{}, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mimeType)
	}

	att := Attachment{Kind: AttachmentImage, MIMEType: mimeType, Data: dataURL(mimeType, raw)}
	p.mu.Lock()
	p.attachment = &att
	p.mu.Unlock()

	p.logger.Debug("image staged", "mime_type", mimeType, "bytes", len(raw))
	p.emitState()
	return att, nil
}

// RemoveAttachment clears the staged attachment and engages the action lock.
func (p *Panel) RemoveAttachment() {
	p.mu.Lock()
	p.attachment = nil
	p.engageLock()
	p.mu.Unlock()
	p.emitState()
}

// StartRecording opens the microphone. A denial raises the alert and leaves
// the panel as it was.
func (p *Panel) StartRecording(ctx context.Context, source AudioSource) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.recorder == RecorderRecording {
		p.mu.Unlock()
		return ErrAlreadyRecording
	}
	switch p.currentStatus() {
	case StatusSending:
		p.mu.Unlock()
		return ErrBusy
	case StatusLocked:
		p.mu.Unlock()
		return ErrLocked
	}
	p.mu.Unlock()

	capture, err := source.Open(ctx)
	if err != nil {
		p.logger.Warn("microphone unavailable", "error", err)
		p.mu.Lock()
		p.alert = AlertMicrophoneDenied
		p.mu.Unlock()
		p.emit(Event{Type: EventAlert, Alert: AlertMicrophoneDenied})
		return fmt.Errorf("%w: %v", ErrMicrophoneDenied, err)
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		capture.Abort()
		return ErrClosed
	}
	if p.recorder == RecorderRecording {
		p.mu.Unlock()
		capture.Abort()
		return ErrAlreadyRecording
	}
	p.capture = capture
	p.recorder = RecorderRecording
	p.recordingStarted = p.now()
	p.mu.Unlock()

	p.emitState()
	return nil
}

// WriteAudio appends a captured chunk to the active recording.
func (p *Panel) WriteAudio(chunk []byte) error {
	p.mu.Lock()
	capture := p.capture
	recording := p.recorder == RecorderRecording
	p.mu.Unlock()
	if !recording || capture == nil {
		return ErrNotRecording
	}
	_, err := capture.Write(chunk)
	return err
}

// RecordingElapsed returns whole seconds since recording started.
func (p *Panel) RecordingElapsed() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.recorder != RecorderRecording {
		return 0
	}
	return int(p.now().Sub(p.recordingStarted) / time.Second)
}

// StopRecording finalizes the capture into a staged audio attachment and
// engages the action lock.
func (p *Panel) StopRecording(ctx context.Context) (Attachment, error) {
	p.mu.Lock()
	if p.recorder != RecorderRecording {
		p.mu.Unlock()
		return Attachment{}, ErrNotRecording
	}
	capture := p.capture
	p.capture = nil
	p.recorder = RecorderIdle
	p.engageLock()
	p.mu.Unlock()

	raw, err := capture.Finish()
	if err != nil {
		p.emitState()
		return Attachment{}, fmt.Errorf("chat: finish recording: %w", err)
	}

	att := Attachment{Kind: AttachmentAudio, MIMEType: AudioMIMEType, Data: dataURL(AudioMIMEType, raw)}
	p.mu.Lock()
	p.attachment = &att
	p.mu.Unlock()

	p.emitState()
	return att, nil
}

// DismissAlert clears a shown alert.
func (p *Panel) DismissAlert() {
	p.mu.Lock()
	p.alert = ""
	p.mu.Unlock()
	p.emitState()
}

// Send submits the current draft and staged attachment.
func (p *Panel) Send(ctx context.Context) (SendResult, error) {
	return p.send(ctx, nil)
}

// SendText replaces the draft with text and submits it in one step.
func (p *Panel) SendText(ctx context.Context, text string) (SendResult, error) {
	return p.send(ctx, &text)
}

func (p *Panel) send(ctx context.Context, text *string) (SendResult, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return SendResult{}, ErrClosed
	}
	switch p.currentStatus() {
	case StatusSending:
		p.mu.Unlock()
		return SendResult{}, ErrBusy
	case StatusLocked:
		p.mu.Unlock()
		return SendResult{}, ErrLocked
	}
	if text != nil {
		p.draft = *text
	}
	draft := p.draft
	att := p.attachment
	if strings.TrimSpace(draft) == "" && att == nil {
		p.mu.Unlock()
		return SendResult{}, ErrEmptyDraft
	}

	first := len(p.messages) == 0
	p.draft = ""
	p.attachment = nil
	if p.recorder == RecorderRecording {
		p.capture.Abort()
		p.capture = nil
		p.recorder = RecorderIdle
	}
	userMsg := Message{
		ID:         uuid.NewString(),
		Role:       RoleUser,
		Text:       draft,
		Attachment: att,
		Timestamp:  p.now(),
	}
	p.messages = append(p.messages, userMsg)
	p.status = StatusSending
	p.mu.Unlock()

	p.emitState()
	p.emit(Event{Type: EventMessage, Message: &userMsg})
	defer p.complete()

	result := SendResult{User: userMsg}
	var reply string
	if p.sender == nil {
		reply = DegradedReplyText
		p.metrics.ObserveChatSend("degraded", att != nil)
	} else {
		turn := conversation.Turn{Text: draft}
		if first {
			turn.Text = catalog.OnboardingContext + draft
		}
		if att != nil {
			turn.Attachment = &conversation.Attachment{MIMEType: att.MIMEType, Data: att.Data}
		}

		var err error
		reply, err = p.sender.Send(context.WithoutCancel(ctx), turn)
		if err != nil {
			p.logger.Error("agent send failed", "error", err, "attachment", att != nil)
			p.metrics.ObserveChatSend("failure", att != nil)
			return result, nil
		}
		p.metrics.ObserveChatSend("success", att != nil)
	}

	agentMsg := Message{ID: uuid.NewString(), Role: RoleAgent, Text: reply, Timestamp: p.now()}
	p.mu.Lock()
	p.messages = append(p.messages, agentMsg)
	p.mu.Unlock()
	p.emit(Event{Type: EventMessage, Message: &agentMsg})

	result.Reply = &agentMsg
	return result, nil
}

// complete releases the in-flight status, handing over to a pending lock.
func (p *Panel) complete() {
	p.mu.Lock()
	if p.now().Before(p.lockedUntil) {
		p.status = StatusLocked
	} else {
		p.status = StatusIdle
	}
	p.mu.Unlock()
	p.emitState()
}

// Close unmounts the panel, discarding any active recording. A send still in
// flight completes against the detached panel; later sends are refused.
func (p *Panel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	if p.capture != nil {
		p.capture.Abort()
		p.capture = nil
	}
	p.recorder = RecorderIdle
	p.mu.Unlock()

	p.subMu.Lock()
	p.subscribers = make(map[int]func(Event))
	p.subMu.Unlock()
}
