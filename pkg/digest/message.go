package digest

import (
	"encoding/base64"
	"mime"
	"strings"
	"time"
)

const base64LineLength = 76

// Message is an HTML mail to one or more recipients.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
	// Date is the Date header, set from the digest clock.
	Date time.Time
}

// Bytes renders the message as RFC 5322 text with a base64 encoded UTF-8 body.
func (m Message) Bytes() []byte {
	headers := []string{
		"From: " + m.From,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + mime.QEncoding.Encode("utf-8", m.Subject),
		"Date: " + m.Date.Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"Content-Transfer-Encoding: base64",
		"",
	}

	var b strings.Builder
	b.WriteString(strings.Join(headers, "\r\n"))
	b.WriteString("\r\n")
	encoded := base64.StdEncoding.EncodeToString([]byte(m.HTML))
	for len(encoded) > base64LineLength {
		b.WriteString(encoded[:base64LineLength])
		b.WriteString("\r\n")
		encoded = encoded[base64LineLength:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// address extracts the bare address of "Name <addr>".
func address(from string) string {
	start := strings.Index(from, "<")
	end := strings.Index(from, ">")
	if start >= 0 && end > start {
		return strings.TrimSpace(from[start+1 : end])
	}
	return strings.TrimSpace(from)
}
