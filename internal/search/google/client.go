package google

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	gapi "github.com/iWorld-y/alert_me/internal/google"
	"github.com/iWorld-y/alert_me/internal/logger"
	"github.com/iWorld-y/alert_me/internal/search"
)

// ResultWindow Custom Search 只能翻到前 100 条结果，start+num 超过该值会返回 400
const ResultWindow = 100

// Config Google Custom Search 参数
type Config struct {
	APIKey       string
	EngineID     string
	Language     string // lr，例如 lang_en
	Safe         string // active 或 off
	DateRestrict string // 例如 m6 表示最近六个月
}

// Client Google Custom Search 客户端
type Client struct {
	cfg Config
	svc *customsearch.Service
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// NewClient 创建 Custom Search 客户端，opts 用于覆盖 endpoint 或 HTTP 客户端
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("google search api key is missing")
	}
	if cfg.EngineID == "" {
		return nil, fmt.Errorf("google search engine id is missing")
	}

	opts = append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create customsearch service failed: %w", err)
	}
	return &Client{cfg: cfg, svc: svc}, nil
}

// Search implements search.Searcher
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	if req.Offset+req.MaxResults > ResultWindow {
		logger.Log.Warnf("结果偏移 %d 加上 %d 条超出 Custom Search 的 %d 条上限，请在表格中重置 last_result",
			req.Offset, req.MaxResults, ResultWindow)
	}
	call := c.svc.Cse.List().
		Q(req.Query).
		Cx(c.cfg.EngineID).
		Num(int64(req.MaxResults)).
		// Custom Search 的 start 从 1 开始
		Start(int64(req.Offset) + 1)

	if c.cfg.Language != "" {
		call = call.Lr(c.cfg.Language)
	}
	if c.cfg.Safe != "" {
		call = call.Safe(c.cfg.Safe)
	}
	if c.cfg.DateRestrict != "" {
		call = call.DateRestrict(c.cfg.DateRestrict)
	}
	if exact := search.FirstWord(req.Term); exact != "" {
		call = call.ExactTerms(exact)
	}
	if len(req.ExcludedSites) > 0 {
		call = call.SiteSearch(strings.Join(req.ExcludedSites, " ")).SiteSearchFilter("e")
	}
	if req.CountryCode != "" {
		call = call.Cr(req.CountryCode)
	}

	res, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("google search failed: %w", gapi.WrapError(err))
	}

	resp := &search.Response{}
	if res.SearchInformation != nil {
		resp.TotalResults = parseTotal(res.SearchInformation.TotalResults)
	}
	for _, item := range res.Items {
		if item == nil {
			continue
		}
		h := search.NewHit(map[string]string{
			search.FieldTitle: item.Title,
			search.FieldLink:  item.Link,
		})
		// 摘要允许为空，JSON 解码后无法区分缺失与空字符串
		h[search.FieldSnippet] = item.Snippet
		resp.Hits = append(resp.Hits, h)
	}
	return resp, nil
}

func parseTotal(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
