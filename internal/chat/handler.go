package chat

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/lamitex/lamitex-crm/pkg/logging"
)

// PanelFunc resolves the mounted chat panel for the request's workspace.
type PanelFunc func(ctx context.Context) (*Panel, error)

// Handler serves the chat panel over HTTP and WebSocket.
type Handler struct {
	panel  PanelFunc
	logger *logging.Logger
}

// InboundMessage is what the client sends over the socket.
type InboundMessage struct {
	Type       string `json:"type"` // "message", "draft", "record_start", "audio_chunk", "record_stop", "remove_attachment", "dismiss_alert", "ping"
	Text       string `json:"text,omitempty"`
	Data       string `json:"data,omitempty"`       // base64 audio chunk
	Permission string `json:"permission,omitempty"` // "granted" or "denied"
}

// OutboundMessage is what we push to the client.
type OutboundMessage struct {
	Type    string    `json:"type"` // "state", "message", "typing", "alert", "error", "pong"
	Text    string    `json:"text,omitempty"`
	Message *Message  `json:"message,omitempty"`
	State   *Snapshot `json:"state,omitempty"`
}

// NewHandler creates a chat handler.
func NewHandler(panel PanelFunc, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{panel: panel, logger: logger}
}

// HandleState handles GET /api/chat
func (h *Handler) HandleState(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleDraft handles POST /api/chat/draft
func (h *Handler) HandleDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	panel.SetDraft(req.Text)
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleMessage handles POST /api/chat/messages. A body without text sends
// the current draft.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text *string `json:"text"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var (
		result SendResult
		err    error
	)
	if req.Text != nil {
		result, err = panel.SendText(r.Context(), *req.Text)
	} else {
		result, err = panel.Send(r.Context())
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleAttachImage handles POST /api/chat/attachments/image (multipart "file").
func (h *Handler) HandleAttachImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxAttachmentBytes+1<<20)
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if _, err := panel.AttachImage(r.Context(), file, header.Header.Get("Content-Type")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleRemoveAttachment handles DELETE /api/chat/attachment
func (h *Handler) HandleRemoveAttachment(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	panel.RemoveAttachment()
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleRecordingStart handles POST /api/chat/recording/start. The client
// reports the outcome of its microphone permission prompt.
func (h *Handler) HandleRecordingStart(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Permission string `json:"permission"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := panel.StartRecording(r.Context(), sourceFor(req.Permission)); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleRecordingChunk handles POST /api/chat/recording/chunk with a raw body.
func (h *Handler) HandleRecordingChunk(w http.ResponseWriter, r *http.Request) {
	chunk, err := io.ReadAll(io.LimitReader(r.Body, MaxAttachmentBytes))
	if err != nil {
		http.Error(w, "failed to read chunk", http.StatusBadRequest)
		return
	}
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if err := panel.WriteAudio(chunk); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRecordingStop handles POST /api/chat/recording/stop
func (h *Handler) HandleRecordingStop(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	if _, err := panel.StopRecording(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, panel.Snapshot())
}

// HandleWebSocket upgrades to WebSocket and handles real-time messaging.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	panel, ok := h.resolve(w, r)
	if !ok {
		return
	}
	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r, panel)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request, panel *Panel) {
	unsubscribe := panel.Subscribe(func(ev Event) {
		_ = websocket.JSON.Send(conn, outboundFor(ev))
	})
	defer unsubscribe()

	snap := panel.Snapshot()
	_ = websocket.JSON.Send(conn, OutboundMessage{Type: "state", State: &snap})

	h.logger.Info("chat: connection opened")
	ctx := r.Context()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-panel.Done():
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: ErrClosed.Error()})
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg InboundMessage
		if err := websocket.JSON.Receive(conn, &msg); err != nil {
			h.logger.Debug("chat: connection closed", "error", err)
			return
		}

		var err error
		switch msg.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "pong"})
		case "draft":
			panel.SetDraft(msg.Text)
		case "message":
			// Sends run off the read loop so a second send sees the busy state.
			text := msg.Text
			go func() {
				var err error
				if text == "" {
					_, err = panel.Send(context.WithoutCancel(ctx))
				} else {
					_, err = panel.SendText(context.WithoutCancel(ctx), text)
				}
				if err != nil {
					_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: err.Error()})
				}
			}()
		case "record_start":
			err = panel.StartRecording(ctx, sourceFor(msg.Permission))
		case "audio_chunk":
			var chunk []byte
			chunk, err = base64.StdEncoding.DecodeString(msg.Data)
			if err == nil {
				err = panel.WriteAudio(chunk)
			}
		case "record_stop":
			_, err = panel.StopRecording(ctx)
		case "remove_attachment":
			panel.RemoveAttachment()
		case "dismiss_alert":
			panel.DismissAlert()
		}
		if err != nil && !errors.Is(err, ErrMicrophoneDenied) {
			_ = websocket.JSON.Send(conn, OutboundMessage{Type: "error", Text: err.Error()})
		}
	}
}

func outboundFor(ev Event) OutboundMessage {
	switch ev.Type {
	case EventMessage:
		return OutboundMessage{Type: "message", Message: ev.Message}
	case EventAlert:
		return OutboundMessage{Type: "alert", Text: ev.Alert}
	default:
		if ev.State != nil && ev.State.Typing {
			return OutboundMessage{Type: "typing", State: ev.State}
		}
		return OutboundMessage{Type: "state", State: ev.State}
	}
}

func sourceFor(permission string) AudioSource {
	if permission == "denied" {
		return DeniedSource{}
	}
	return StreamedSource{}
}

func (h *Handler) resolve(w http.ResponseWriter, r *http.Request) (*Panel, bool) {
	panel, err := h.panel(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return nil, false
	}
	return panel, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyDraft), errors.Is(err, ErrUnsupportedMedia), errors.Is(err, ErrNotRecording):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrBusy), errors.Is(err, ErrLocked), errors.Is(err, ErrAlreadyRecording):
		w.Header().Set("Retry-After", "1")
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrClosed):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrMicrophoneDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"alert": AlertMicrophoneDenied})
	case errors.Is(err, ErrAttachmentTooLong):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		h.logger.Error("chat operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
