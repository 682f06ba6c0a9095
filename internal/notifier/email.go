package notifier

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"

	"jobradar/internal/model"
)

// Ensure EmailNotifier implements model.Notifier.
var _ model.Notifier = (*EmailNotifier)(nil)

// sendMailFunc matches smtp.SendMail, swapped out in tests.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier delivers the run summary over SMTP as a plain-text
// message.
type EmailNotifier struct {
	host         string
	port         int
	from         string
	password     string
	to           []string
	attachReport bool
	sendMail     sendMailFunc
	logger       *slog.Logger
}

func NewEmailNotifier(host string, port int, from, password string, to []string, attachReport bool, logger *slog.Logger) *EmailNotifier {
	return &EmailNotifier{
		host:         host,
		port:         port,
		from:         from,
		password:     password,
		to:           to,
		attachReport: attachReport,
		sendMail:     smtp.SendMail,
		logger:       logger,
	}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Send(s model.Summary) error {
	var msg []byte
	if e.attachReport && s.ReportPath != "" {
		data, err := os.ReadFile(s.ReportPath)
		if err != nil {
			// The summary is still worth delivering without the file.
			e.logger.Warn("could not read report for attachment", "path", s.ReportPath, "error", err)
		} else {
			msg = buildEmailWithAttachment(e.from, e.to, subject(s), plainText(s), filepath.Base(s.ReportPath), data)
		}
	}
	if msg == nil {
		msg = buildEmailMessage(e.from, e.to, subject(s), plainText(s))
	}
	addr := fmt.Sprintf("%s:%d", e.host, e.port)
	auth := smtp.PlainAuth("", e.from, e.password, e.host)

	if err := e.sendMail(addr, auth, e.from, e.to, msg); err != nil {
		return fmt.Errorf("sending mail via %s: %w", addr, err)
	}
	return nil
}

// buildEmailMessage assembles RFC 5322 headers plus body. The subject
// is Q-encoded so non-ASCII survives transport.
func buildEmailMessage(from string, to []string, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}

// buildEmailWithAttachment assembles a multipart/mixed message with the
// plain-text summary followed by the report file, base64-encoded.
func buildEmailWithAttachment(from string, to []string, subject, body, filename string, data []byte) []byte {
	const boundary = "jobradar-report-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%s\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: application/json\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", filename)
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
