package alert

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/RAVBLACK/sentiguard/internal/errors"
)

// Notifier delivers a fired alert to the guardian. Implementations do not
// retry internally; the caller decides what a failed delivery means.
type Notifier interface {
	Notify(recipient string, report Report) error
}

// SMTPNotifier sends the report over implicit-TLS SMTP, the way consumer
// mail providers expose submission on port 465.
type SMTPNotifier struct {
	Host     string
	Port     int
	From     string
	Password string
}

// NewSMTPNotifier creates a notifier for the given submission endpoint.
func NewSMTPNotifier(host string, port int, from, password string) *SMTPNotifier {
	return &SMTPNotifier{Host: host, Port: port, From: from, Password: password}
}

// Notify sends the report as a multipart/alternative message (plain
// markdown plus rendered HTML). Any failure is a delivery error; nothing
// is queued for later.
func (n *SMTPNotifier) Notify(recipient string, report Report) error {
	if recipient == "" {
		return errors.NewInvalidRequest("no guardian email configured")
	}

	msg, err := n.buildMessage(recipient, report)
	if err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}

	addr := net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: n.Host})
	if err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, n.Host)
	if err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	defer client.Quit()

	auth := smtp.PlainAuth("", n.From, n.Password, n.Host)
	if err := client.Auth(auth); err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	if err := client.Mail(n.From); err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}

	w, err := client.Data()
	if err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	if _, err := w.Write(msg); err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	if err := w.Close(); err != nil {
		return errors.NewDeliveryFailed(recipient, err)
	}
	return nil
}

// buildMessage assembles the RFC 5322 message bytes.
func (n *SMTPNotifier) buildMessage(recipient string, report Report) ([]byte, error) {
	html, err := report.HTML()
	if err != nil {
		return nil, err
	}

	boundary := "sentiguard-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", n.From)
	fmt.Fprintf(&b, "To: %s\r\n", recipient)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", report.Subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(report.Markdown, "\n", "\r\n"))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(strings.ReplaceAll(html, "\n", "\r\n"))
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String()), nil
}
