package notify

import "context"

// Message 待发送的一封邮件
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Notifier 邮件投递
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}
