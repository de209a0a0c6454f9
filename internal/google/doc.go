// Package google 提供 Google API 的公共设施：
// 服务账号凭证到 oauth2.TokenSource 的转换，以及 googleapi.Error 的分类。
//
// Sheets（配置与轮转状态）和 Gmail（发送报告）都通过这里创建的 TokenSource 认证：
//
//	ts, err := google.NewTokenSource(ctx, credentialsFile, "", sheets.SpreadsheetsScope)
//	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
package google
