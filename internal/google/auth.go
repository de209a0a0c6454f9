package google

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// NewTokenSource 从服务账号 JSON 文件创建 TokenSource。
// subject 非空时以该用户身份（域范围委派）访问，Gmail 发信需要。
func NewTokenSource(ctx context.Context, credentialsFile, subject string, scopes ...string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials failed: %w", err)
	}
	return TokenSourceFromJSON(ctx, data, subject, scopes...)
}

// TokenSourceFromJSON 从服务账号 JSON 内容创建 TokenSource
func TokenSourceFromJSON(ctx context.Context, data []byte, subject string, scopes ...string) (oauth2.TokenSource, error) {
	conf, err := googleoauth.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account failed: %w", err)
	}
	conf.Subject = subject
	return conf.TokenSource(ctx), nil
}
