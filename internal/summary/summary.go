package summary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-shiori/go-readability"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/alert_me/internal/config"
	"github.com/iWorld-y/alert_me/internal/logger"
	dm "github.com/iWorld-y/alert_me/internal/model"
)

const (
	defaultMinSnippet = 80
	defaultMaxContent = 1500
	maxRetries        = 3
)

// Generator 对话模型中本包用到的部分，openai.ChatModel 满足该接口
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// FetchFunc 抓取网页正文
type FetchFunc func(ctx context.Context, url string) (string, error)

// Summarizer 为报告生成一段概览
type Summarizer struct {
	gen        Generator
	limiter    *rate.Limiter
	fetch      FetchFunc
	minSnippet int
	maxContent int
	baseDelay  time.Duration
}

type Option func(*Summarizer)

// WithFetch 替换正文抓取函数，nil 表示只使用摘要
func WithFetch(f FetchFunc) Option {
	return func(s *Summarizer) { s.fetch = f }
}

// WithMinSnippet 摘要短于该长度时才去抓取正文
func WithMinSnippet(n int) Option {
	return func(s *Summarizer) { s.minSnippet = n }
}

func NewSummarizer(gen Generator, limiter *rate.Limiter, opts ...Option) *Summarizer {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	s := &Summarizer{
		gen:        gen,
		limiter:    limiter,
		fetch:      FetchArticle,
		minSnippet: defaultMinSnippet,
		maxContent: defaultMaxContent,
		baseDelay:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromConfig 使用 OpenAI 兼容接口创建 Summarizer
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, limiter *rate.Limiter) (*Summarizer, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("LLM 初始化失败: %w", err)
	}
	return NewSummarizer(chatModel, limiter), nil
}

// FetchArticle 使用 readability 抓取并提取正文
func FetchArticle(ctx context.Context, url string) (string, error) {
	article, err := readability.FromURL(url, 30*time.Second)
	if err != nil {
		return "", err
	}
	return article.TextContent, nil
}

const prompt = `你是一个资深行业分析师。上面是本周按技术术语和国家整理的网页搜索结果。
请用英文写一段 150 词左右的概览，总结主要动态和值得关注的链接主题。
直接输出纯文本，不要 markdown 标题，不要逐条复述结果。`

// Overview 生成报告概览，报告为空时返回空字符串
func (s *Summarizer) Overview(ctx context.Context, rep dm.Report) (string, error) {
	if rep.Count() == 0 {
		return "", nil
	}

	material := s.material(ctx, rep)

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}

		messages := []*schema.Message{
			{Role: schema.System, Content: "你是一个简洁的新闻编辑。"},
			{Role: schema.User, Content: material + "\n\n" + prompt},
		}

		resp, err := s.gen.Generate(ctx, messages)
		if err != nil {
			if isRateLimited(err) {
				lastErr = err
				if i < maxRetries {
					time.Sleep(s.baseDelay * time.Duration(1<<i))
					continue
				}
			}
			return "", err
		}

		return cleanContent(resp.Content), nil
	}
	return "", fmt.Errorf("failed after retries: %w", lastErr)
}

func (s *Summarizer) material(ctx context.Context, rep dm.Report) string {
	var sb strings.Builder
	n := 0
	for _, t := range rep.Terms {
		for _, c := range t.Countries {
			for _, r := range c.Results {
				n++
				content := r.Snippet
				if s.fetch != nil && len([]rune(content)) < s.minSnippet {
					text, err := s.fetch(ctx, r.Link)
					if err != nil {
						logger.Log.Warnf("抓取正文失败 [%s]: %v", r.Link, err)
					} else if text = strings.TrimSpace(text); text != "" {
						content = text
					}
				}
				sb.WriteString(fmt.Sprintf("结果 %d [%s / %s]:\n标题: %s\n内容: %s\n\n",
					n, t.Term, c.Country, r.Title, truncate(content, s.maxContent)))
			}
		}
	}
	return sb.String()
}

func isRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "too many requests")
}

func cleanContent(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
