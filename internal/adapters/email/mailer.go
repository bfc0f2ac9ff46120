package email

import (
	"bytes"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"
)

const (
	verificationSubject  = "Verify Your Email"
	passwordResetSubject = "Password Reset Request"
)

type message struct {
	From    string
	To      string
	Subject string
	Body    string
}

func verificationMessage(from, to, code string) message {
	body := fmt.Sprintf(`<h1>Email Verification</h1>
<p>Your verification code is: <strong>%s</strong></p>
<p>This code will expire in 24 hours.</p>`, code)
	return message{From: from, To: to, Subject: verificationSubject, Body: body}
}

func passwordResetMessage(from, to, frontendURL, rawToken string) message {
	link := resetLink(frontendURL, rawToken)
	body := fmt.Sprintf(`<h1>Password Reset Request</h1>
<p>You requested a password reset. Click the link below to reset your password:</p>
<a href="%s">Reset Password</a>
<p>This link will expire in 1 hour.</p>
<p>If you didn't request this, please ignore this email.</p>`, link)
	return message{From: from, To: to, Subject: passwordResetSubject, Body: body}
}

func resetLink(frontendURL, rawToken string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + url.QueryEscape(rawToken)
}

// bytes renders m as an RFC 5322 message with CRLF line endings.
func (m message) bytes(now time.Time) []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		buf.WriteString(k)
		buf.WriteString(": ")
		buf.WriteString(v)
		buf.WriteString("\r\n")
	}
	header("From", m.From)
	header("To", m.To)
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="utf-8"`)
	buf.WriteString("\r\n")
	buf.WriteString(strings.ReplaceAll(strings.ReplaceAll(m.Body, "\r\n", "\n"), "\n", "\r\n"))
	buf.WriteString("\r\n")
	return buf.Bytes()
}
