package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPSender sends emails via SMTP
type SMTPSender struct {
	host     string
	port     string
	username string
	password string
	sendMail sendMailFunc
}

func NewSMTPSender(host, port, username, password string) *SMTPSender {
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sendMail: smtp.SendMail,
	}
}

func (s *SMTPSender) Name() string { return "smtp" }

func (s *SMTPSender) Send(ctx context.Context, from Address, msg Message) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var auth smtp.Auth
	if s.username != "" && s.password != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}
	addr := fmt.Sprintf("%s:%s", s.host, s.port)

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), s.host)
	body, err := buildMIME(from, msg, messageID, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.sendMail(addr, auth, from.Email, []string{msg.To}, body); err != nil {
		log.Errorf("[Mail] SMTP send error: %v", err)
		return nil, err
	}
	log.Infof("[Mail] email sent to %s via %s", msg.To, addr)
	return &Result{Provider: s.Name(), MessageID: messageID}, nil
}

// buildMIME renders a multipart/alternative body, wrapped in
// multipart/mixed when there are attachments.
func buildMIME(from Address, msg Message, messageID string, now time.Time) ([]byte, error) {
	var buf bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&buf, "%s: %s\r\n", k, v) }

	header("From", mime.QEncoding.Encode("utf-8", from.Name)+" <"+from.Email+">")
	header("To", msg.To)
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")

	alt, err := alternative(msg)
	if err != nil {
		return nil, err
	}

	if len(msg.Attachments) == 0 {
		header("Content-Type", alt.contentType)
		buf.WriteString("\r\n")
		buf.Write(alt.body)
		return buf.Bytes(), nil
	}

	var outer bytes.Buffer
	mixed := multipart.NewWriter(&outer)
	part, err := mixed.CreatePart(textproto.MIMEHeader{"Content-Type": {alt.contentType}})
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(alt.body); err != nil {
		return nil, err
	}
	for _, att := range msg.Attachments {
		ct := att.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		part, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {ct},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": att.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(wrapBase64(att.Content)); err != nil {
			return nil, err
		}
	}
	if err := mixed.Close(); err != nil {
		return nil, err
	}

	header("Content-Type", "multipart/mixed; boundary="+mixed.Boundary())
	buf.WriteString("\r\n")
	buf.Write(outer.Bytes())
	return buf.Bytes(), nil
}

type mimePart struct {
	contentType string
	body        []byte
}

func alternative(msg Message) (mimePart, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for _, p := range []struct{ ct, content string }{
		{"text/plain; charset=UTF-8", msg.Text},
		{"text/html; charset=UTF-8", msg.HTML},
	} {
		part, err := w.CreatePart(textproto.MIMEHeader{"Content-Type": {p.ct}})
		if err != nil {
			return mimePart{}, err
		}
		if _, err := part.Write([]byte(p.content)); err != nil {
			return mimePart{}, err
		}
	}
	if err := w.Close(); err != nil {
		return mimePart{}, err
	}
	return mimePart{contentType: "multipart/alternative; boundary=" + w.Boundary(), body: body.Bytes()}, nil
}

func wrapBase64(b []byte) []byte {
	enc := base64.StdEncoding.EncodeToString(b)
	var out bytes.Buffer
	for len(enc) > 76 {
		out.WriteString(enc[:76])
		out.WriteString("\r\n")
		enc = enc[76:]
	}
	out.WriteString(enc)
	return out.Bytes()
}
