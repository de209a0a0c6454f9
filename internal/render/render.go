package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/iWorld-y/alert_me/internal/model"
)

// DateLayout 报告日期格式
const DateLayout = "2006-01-02"

// Document 渲染所需数据
type Document struct {
	Date     time.Time
	Report   model.Report
	Overview string // LLM 生成的概览，可为空
}

// Renderer 将报告渲染为邮件正文
type Renderer interface {
	Render(ctx context.Context, doc Document) (string, error)
}

// HTMLRenderer 使用 html/template 渲染报告
type HTMLRenderer struct {
	tpl *template.Template
}

// Ensure HTMLRenderer implements Renderer
var _ Renderer = (*HTMLRenderer)(nil)

const htmlTpl = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Alert Me Report</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 800px; margin: 0 auto; padding: 20px; line-height: 1.6; color: #333; }
        h1 { text-align: center; color: #2c3e50; }
        h2 { border-bottom: 2px solid #3498db; padding-bottom: 6px; }
        .overview { background-color: #f9f9f9; padding: 15px; border-radius: 5px; border-left: 4px solid #3498db; white-space: pre-line; }
        .result { margin-bottom: 16px; }
        .result a { font-size: 1.1em; font-weight: bold; color: #2c3e50; text-decoration: none; }
        .empty { color: #7f8c8d; }
    </style>
</head>
<body>
    <h1>This weeks search results</h1>
    <p style="text-align:center; color:#666;">{{ .Date }} • {{ .Count }} results</p>
{{- if .Overview }}
    <div class="overview">{{ .Overview }}</div>
{{- end }}
{{- range .Terms }}
    <div class="term">
        <h2>{{ .Term }}</h2>
    {{- range .Countries }}
        <div class="country">
            <h3>{{ .Country }}</h3>
        {{- range .Results }}
            <div class="result">
                <a href="{{ .Link }}" target="_blank"><h4>{{ .Title }}</h4></a>
                <p>{{ .Snippet }}</p>
            </div>
        {{- else }}
            <p class="empty">No new results</p>
        {{- end }}
        </div>
    {{- end }}
    </div>
{{- end }}
</body>
</html>`

// NewHTMLRenderer 解析内置模板
func NewHTMLRenderer() (*HTMLRenderer, error) {
	t, err := template.New("report").Parse(htmlTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &HTMLRenderer{tpl: t}, nil
}

func (r *HTMLRenderer) Render(ctx context.Context, doc Document) (string, error) {
	data := struct {
		Date     string
		Count    int
		Overview string
		Terms    []model.TermResults
	}{
		Date:     doc.Date.Format(DateLayout),
		Count:    doc.Report.Count(),
		Overview: doc.Overview,
		Terms:    doc.Report.Terms,
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "report", data); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}
