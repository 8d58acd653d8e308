package formdata

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
)

const (
	// BoundaryPrefix is the constant label in front of the random token.
	BoundaryPrefix = "----Boundary"
	tokenLength    = 16

	crlf = "\r\n"
)

// Part is one field of a multipart body. Parts with a Filename are written
// as file fields.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	Data        []byte
}

// TextField returns a plain form field.
func TextField(name, value string) Part {
	return Part{Name: name, Data: []byte(value)}
}

// FileField returns a binary form field.
func FileField(name, filename, contentType string, data []byte) Part {
	return Part{Name: name, Filename: filename, ContentType: contentType, Data: data}
}

// Body is an encoded multipart body and the boundary used to delimit it.
type Body struct {
	Boundary string
	Bytes    []byte
}

// ContentType is the header value paired with the body's delimiter lines.
func (b Body) ContentType() string {
	return "multipart/form-data; boundary=" + b.Boundary
}

type Encoder struct {
	newToken func() string
}

func NewEncoder() *Encoder {
	return &Encoder{newToken: randomToken}
}

// NewEncoderWithTokens lets callers control boundary generation.
func NewEncoderWithTokens(newToken func() string) *Encoder {
	return &Encoder{newToken: newToken}
}

// EncodeTranscription writes the audio payload as the "file" part and the
// model name as the "model" part.
func (e *Encoder) EncodeTranscription(audio []byte, model string) Body {
	return e.Encode(
		FileField("file", "blob", "application/octet-stream", audio),
		TextField("model", model),
	)
}

// Encode serializes parts in order. A fresh boundary is drawn until it does
// not occur inside any part.
func (e *Encoder) Encode(parts ...Part) Body {
	boundary := BoundaryPrefix + e.newToken()
	for collides(boundary, parts) {
		boundary = BoundaryPrefix + e.newToken()
	}

	delimiter := "--" + boundary

	var buf bytes.Buffer
	for _, p := range parts {
		buf.WriteString(delimiter + crlf)
		writeHeaders(&buf, p)
		buf.WriteString(crlf)
		buf.Write(p.Data)
		buf.WriteString(crlf)
	}
	buf.WriteString(delimiter + "--" + crlf)

	return Body{Boundary: boundary, Bytes: buf.Bytes()}
}

func writeHeaders(buf *bytes.Buffer, p Part) {
	if p.Filename == "" {
		buf.WriteString(`Content-Disposition: form-data; name="` + p.Name + `"` + crlf)
		return
	}

	buf.WriteString(`Content-Disposition: form-data; name="` + p.Name + `"; filename="` + p.Filename + `"` + crlf)
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	buf.WriteString("Content-Type: " + contentType + crlf)
}

func collides(boundary string, parts []Part) bool {
	b := []byte(boundary)
	for _, p := range parts {
		if bytes.Contains(p.Data, b) {
			return true
		}
	}
	return false
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:tokenLength]
}
