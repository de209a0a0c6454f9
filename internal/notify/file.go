package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/iWorld-y/alert_me/internal/logger"
)

// FileNotifier 将邮件正文写入本地目录，用于试运行
type FileNotifier struct {
	dir string
}

// Ensure FileNotifier implements Notifier
var _ Notifier = (*FileNotifier)(nil)

func NewFileNotifier(dir string) *FileNotifier {
	return &FileNotifier{dir: dir}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName 由收件人和主题生成文件名
func FileName(msg Message) string {
	name := unsafeChars.ReplaceAllString(msg.To+"_"+msg.Subject, "_")
	return strings.Trim(name, "_") + ".html"
}

func (n *FileNotifier) Send(ctx context.Context, msg Message) error {
	if err := os.MkdirAll(n.dir, 0755); err != nil {
		return fmt.Errorf("failed to create outbox dir: %w", err)
	}
	path := filepath.Join(n.dir, FileName(msg))
	if err := os.WriteFile(path, []byte(msg.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Log.Infof("邮件已写入: %s", path)
	return nil
}
