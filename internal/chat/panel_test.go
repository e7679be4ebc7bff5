package chat

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamitex/lamitex-crm/internal/catalog"
	"github.com/lamitex/lamitex-crm/internal/conversation"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubSender struct {
	mu    sync.Mutex
	turns []conversation.Turn
	reply string
	err   error
	block chan struct{}
}

func (s *stubSender) Send(ctx context.Context, turn conversation.Turn) (string, error) {
	s.mu.Lock()
	s.turns = append(s.turns, turn)
	block := s.block
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	if s.err != nil {
		return "", s.err
	}
	if s.reply == "" {
		return "Olá! Como posso ajudar?", nil
	}
	return s.reply, nil
}

func (s *stubSender) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.turns)
}

func newTestPanel(sender Sender, clock *fakeClock) *Panel {
	cfg := PanelConfig{Now: clock.Now}
	if sender != nil {
		cfg.Sender = sender
	}
	return NewPanel(cfg)
}

func TestSend_FirstMessageCarriesOnboardingContext(t *testing.T) {
	sender := &stubSender{}
	panel := newTestPanel(sender, newFakeClock())

	result, err := panel.SendText(context.Background(), "Quero saber sobre Curvim")
	require.NoError(t, err)
	require.NotNil(t, result.Reply)

	require.Len(t, sender.turns, 1)
	assert.Equal(t, catalog.OnboardingContext+"Quero saber sobre Curvim", sender.turns[0].Text)

	snap := panel.Snapshot()
	require.Len(t, snap.Messages, 2)
	assert.Equal(t, RoleUser, snap.Messages[0].Role)
	assert.Equal(t, "Quero saber sobre Curvim", snap.Messages[0].Text)
	assert.Equal(t, RoleAgent, snap.Messages[1].Role)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Empty(t, snap.Draft)

	_, err = panel.SendText(context.Background(), "E o preço?")
	require.NoError(t, err)
	assert.Equal(t, "E o preço?", sender.turns[1].Text)
}

func TestSend_EmptyDraftRejected(t *testing.T) {
	sender := &stubSender{}
	panel := newTestPanel(sender, newFakeClock())

	_, err := panel.SendText(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyDraft)
	assert.Empty(t, panel.Snapshot().Messages)
	assert.Zero(t, sender.calls())
}

func TestSend_FailureKeepsOnlyUserTurn(t *testing.T) {
	sender := &stubSender{err: errors.New("network down")}
	panel := newTestPanel(sender, newFakeClock())

	result, err := panel.SendText(context.Background(), "Oi")
	require.NoError(t, err)
	assert.Nil(t, result.Reply)

	snap := panel.Snapshot()
	require.Len(t, snap.Messages, 1)
	assert.Equal(t, RoleUser, snap.Messages[0].Role)
	assert.Equal(t, StatusIdle, snap.Status)
}

func TestSend_DegradedModeSkipsNetwork(t *testing.T) {
	panel := newTestPanel(nil, newFakeClock())
	require.True(t, panel.Degraded())

	result, err := panel.SendText(context.Background(), "Oi")
	require.NoError(t, err)
	require.NotNil(t, result.Reply)
	assert.Equal(t, DegradedReplyText, result.Reply.Text)
	assert.Len(t, panel.Snapshot().Messages, 2)
}

func TestSend_WhileInFlightIsRefused(t *testing.T) {
	sender := &stubSender{block: make(chan struct{})}
	panel := newTestPanel(sender, newFakeClock())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = panel.SendText(context.Background(), "primeira")
	}()

	require.Eventually(t, func() bool { return panel.Status() == StatusSending }, time.Second, time.Millisecond)
	assert.True(t, panel.Snapshot().Typing)

	_, err := panel.SendText(context.Background(), "segunda")
	assert.ErrorIs(t, err, ErrBusy)

	close(sender.block)
	<-done

	assert.Equal(t, 1, sender.calls())
	assert.Len(t, panel.Snapshot().Messages, 2)
	assert.Equal(t, StatusIdle, panel.Status())
}

func TestSend_CancelledRequestContextStillCompletes(t *testing.T) {
	sender := &stubSender{}
	panel := newTestPanel(sender, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := panel.SendText(ctx, "Oi")
	require.NoError(t, err)
	assert.NotNil(t, result.Reply)
}

func TestAttachImage_ReplacesAndSends(t *testing.T) {
	sender := &stubSender{}
	panel := newTestPanel(sender, newFakeClock())
	png := []byte("\x89PNG\r\n\x1a\n0000")

	_, err := panel.AttachImage(context.Background(), bytes.NewReader([]byte("GIF89a....")), "image/gif")
	require.NoError(t, err)
	att, err := panel.AttachImage(context.Background(), bytes.NewReader(png), "")
	require.NoError(t, err)
	assert.Equal(t, "image/png", att.MIMEType)
	assert.True(t, strings.HasPrefix(att.Data, "data:image/png;base64,"))

	_, err = panel.Send(context.Background())
	require.NoError(t, err)

	turn := sender.turns[0]
	require.NotNil(t, turn.Attachment)
	assert.Equal(t, "image/png", turn.Attachment.MIMEType)
	assert.Nil(t, panel.Snapshot().Attachment)

	user := panel.Snapshot().Messages[0]
	require.NotNil(t, user.Attachment)
	assert.Equal(t, AttachmentImage, user.Attachment.Kind)
}

func TestAttachImage_RejectsNonImage(t *testing.T) {
	panel := newTestPanel(&stubSender{}, newFakeClock())

	_, err := panel.AttachImage(context.Background(), strings.NewReader("hello"), "text/plain")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)
	assert.Nil(t, panel.Snapshot().Attachment)
}

func TestRecording_StopStagesAudioAndLocks(t *testing.T) {
	clock := newFakeClock()
	sender := &stubSender{}
	panel := newTestPanel(sender, clock)
	ctx := context.Background()

	require.NoError(t, panel.StartRecording(ctx, StreamedSource{}))
	assert.ErrorIs(t, panel.StartRecording(ctx, StreamedSource{}), ErrAlreadyRecording)

	require.NoError(t, panel.WriteAudio([]byte("chunk-1")))
	require.NoError(t, panel.WriteAudio([]byte("chunk-2")))
	clock.Advance(75 * time.Second)
	assert.Equal(t, 75, panel.RecordingElapsed())
	assert.Equal(t, "1:15", panel.Snapshot().RecordingLabel)

	att, err := panel.StopRecording(ctx)
	require.NoError(t, err)
	assert.Equal(t, AttachmentAudio, att.Kind)
	assert.Equal(t, AudioMIMEType, att.MIMEType)
	assert.Equal(t, dataURL(AudioMIMEType, []byte("chunk-1chunk-2")), att.Data)

	assert.Equal(t, StatusLocked, panel.Status())
	_, err = panel.Send(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	clock.Advance(DefaultActionLock)
	assert.Equal(t, StatusIdle, panel.Status())

	_, err = panel.Send(ctx)
	require.NoError(t, err)
	require.NotNil(t, sender.turns[0].Attachment)
	assert.Equal(t, AudioMIMEType, sender.turns[0].Attachment.MIMEType)
}

func TestRecording_DeniedRaisesAlert(t *testing.T) {
	panel := newTestPanel(&stubSender{}, newFakeClock())

	var alerts []string
	panel.Subscribe(func(ev Event) {
		if ev.Type == EventAlert {
			alerts = append(alerts, ev.Alert)
		}
	})

	err := panel.StartRecording(context.Background(), DeniedSource{})
	assert.ErrorIs(t, err, ErrMicrophoneDenied)

	snap := panel.Snapshot()
	assert.Equal(t, RecorderIdle, snap.Recorder)
	assert.Equal(t, StatusIdle, snap.Status)
	assert.Equal(t, AlertMicrophoneDenied, snap.Alert)
	assert.Equal(t, []string{AlertMicrophoneDenied}, alerts)

	panel.DismissAlert()
	assert.Empty(t, panel.Snapshot().Alert)
}

func TestRecording_SendCancelsCapture(t *testing.T) {
	panel := newTestPanel(&stubSender{}, newFakeClock())
	ctx := context.Background()

	require.NoError(t, panel.StartRecording(ctx, StreamedSource{}))
	require.NoError(t, panel.WriteAudio([]byte("abc")))

	_, err := panel.SendText(ctx, "Texto")
	require.NoError(t, err)

	snap := panel.Snapshot()
	assert.Equal(t, RecorderIdle, snap.Recorder)
	assert.Nil(t, snap.Attachment)
	assert.ErrorIs(t, panel.WriteAudio([]byte("late")), ErrNotRecording)
	_, err = panel.StopRecording(ctx)
	assert.ErrorIs(t, err, ErrNotRecording)
}

func TestRemoveAttachment_EngagesLock(t *testing.T) {
	clock := newFakeClock()
	panel := newTestPanel(&stubSender{}, clock)
	ctx := context.Background()

	_, err := panel.AttachImage(ctx, strings.NewReader("GIF89a...."), "image/gif")
	require.NoError(t, err)

	panel.RemoveAttachment()
	assert.Nil(t, panel.Snapshot().Attachment)
	assert.Equal(t, StatusLocked, panel.Status())
	assert.ErrorIs(t, panel.StartRecording(ctx, StreamedSource{}), ErrLocked)

	clock.Advance(DefaultActionLock + time.Millisecond)
	require.NoError(t, panel.StartRecording(ctx, StreamedSource{}))
}

func TestClose_AbortsRecording(t *testing.T) {
	panel := newTestPanel(&stubSender{}, newFakeClock())
	require.NoError(t, panel.StartRecording(context.Background(), StreamedSource{}))

	panel.Close()
	assert.Equal(t, RecorderIdle, panel.Snapshot().Recorder)
}

func TestClose_RefusesLaterSends(t *testing.T) {
	sender := &stubSender{}
	panel := newTestPanel(sender, newFakeClock())

	panel.Close()
	panel.Close()

	select {
	case <-panel.Done():
	default:
		t.Fatal("expected Done to be closed")
	}
	_, err := panel.SendText(context.Background(), "Oi")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, panel.StartRecording(context.Background(), StreamedSource{}), ErrClosed)
	assert.Zero(t, sender.calls())
	assert.Empty(t, panel.Snapshot().Messages)
}

func TestGreetingAndDuration(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2026, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Bom dia", Greeting(at(5)))
	assert.Equal(t, "Boa tarde", Greeting(at(12)))
	assert.Equal(t, "Boa noite", Greeting(at(18)))
	assert.Equal(t, "Boa noite", Greeting(at(3)))

	assert.Equal(t, "0:00", FormatDuration(0))
	assert.Equal(t, "0:09", FormatDuration(9))
	assert.Equal(t, "2:05", FormatDuration(125))
}
