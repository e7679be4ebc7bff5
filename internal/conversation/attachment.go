package conversation

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Attachment is a staged media file as held by the chat panel: a MIME type and
// base64 payload, possibly still carrying a data URL prefix.
type Attachment struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// StripDataURL removes a leading "data:<mime>;base64," header if present.
func StripDataURL(data string) string {
	if !strings.HasPrefix(data, "data:") {
		return data
	}
	if i := strings.Index(data, ";base64,"); i >= 0 {
		return data[i+len(";base64,"):]
	}
	if i := strings.IndexByte(data, ','); i >= 0 {
		return data[i+1:]
	}
	return data
}

// Inline decodes the attachment into raw bytes for a provider request.
func (a Attachment) Inline() (InlineData, error) {
	if strings.TrimSpace(a.MIMEType) == "" {
		return InlineData{}, fmt.Errorf("%w: missing mime type", ErrInvalidAttachment)
	}
	raw, err := base64.StdEncoding.DecodeString(StripDataURL(strings.TrimSpace(a.Data)))
	if err != nil {
		return InlineData{}, fmt.Errorf("%w: %v", ErrInvalidAttachment, err)
	}
	return InlineData{MIMEType: a.MIMEType, Data: raw}, nil
}
