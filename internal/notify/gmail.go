package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	gapi "github.com/iWorld-y/alert_me/internal/google"
	"github.com/iWorld-y/alert_me/internal/logger"
)

// GmailNotifier 通过 Gmail API 以 sender 身份发送邮件
type GmailNotifier struct {
	svc    *gmail.Service
	sender string
}

// Ensure GmailNotifier implements Notifier
var _ Notifier = (*GmailNotifier)(nil)

// NewGmailNotifier opts 通常为 subject 设为 sender 的 option.WithTokenSource
func NewGmailNotifier(ctx context.Context, sender string, opts ...option.ClientOption) (*GmailNotifier, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return &GmailNotifier{svc: svc, sender: sender}, nil
}

func (n *GmailNotifier) Send(ctx context.Context, msg Message) error {
	raw := BuildMIME(n.sender, msg, time.Now())
	sent, err := n.svc.Users.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail send to %s failed: %w", msg.To, gapi.WrapError(err))
	}
	logger.Log.Infof("邮件已发送: to=%s id=%s", msg.To, sent.Id)
	return nil
}

// BuildMIME 生成 RFC 2822 格式的 HTML 邮件
func BuildMIME(from string, msg Message, date time.Time) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", date.Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	buf.WriteString("Content-Transfer-Encoding: base64\r\n")
	buf.WriteString("\r\n")

	body := base64.StdEncoding.EncodeToString([]byte(msg.HTML))
	for len(body) > 76 {
		buf.WriteString(body[:76])
		buf.WriteString("\r\n")
		body = body[76:]
	}
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
