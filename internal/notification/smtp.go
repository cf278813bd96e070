package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	internalerrors "github.com/olegiv/netsyslog-go/internal/errors"
)

// SMTPSink mails the HTML report to the operators.
type SMTPSink struct {
	server string // host:port
	from   string
	to     []string
}

// NewSMTPSink creates an SMTP sink. to is a comma-separated recipient list.
func NewSMTPSink(server, from, to string) *SMTPSink {
	var recipients []string
	for _, addr := range strings.Split(to, ",") {
		if addr = strings.TrimSpace(addr); addr != "" {
			recipients = append(recipients, addr)
		}
	}

	return &SMTPSink{
		server: server,
		from:   from,
		to:     recipients,
	}
}

// Send implements Sink. The message is a single text/html part; the text
// variant is unused because mail clients render the tables directly.
func (s *SMTPSink) Send(dateLabel, htmlBody, _ string) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.from)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.to, ", "))
	fmt.Fprintf(&msg, "Subject: net syslog report for %s\r\n", dateLabel)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	if err := smtp.SendMail(s.server, nil, s.from, s.to, []byte(msg.String())); err != nil {
		return internalerrors.Wrapf(err, "failed to send report mail via %s", s.server)
	}
	return nil
}
