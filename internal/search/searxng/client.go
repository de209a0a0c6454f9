package searxng

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iWorld-y/alert_me/internal/search"
)

// Client SearXNG API 客户端
type Client struct {
	baseURL string
	timeout time.Duration
	client  *http.Client
}

// NewClient 创建一个新的 SearXNG 客户端，timeout 单位为秒
func NewClient(baseURL string, timeout int) *Client {
	t := time.Duration(timeout) * time.Second
	if t == 0 {
		t = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		timeout: t,
		client: &http.Client{
			Timeout: t,
		},
	}
}

// Ensure Client implements search.Searcher
var _ search.Searcher = (*Client)(nil)

// SearchResponse SearXNG 响应结构
type SearchResponse struct {
	Query           string         `json:"query"`
	NumberOfResults int64          `json:"number_of_results"`
	Results         []SearchResult `json:"results"`
}

// SearchResult SearXNG 单条结果
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// Search 执行搜索。SearXNG 按页翻页，偏移换算为 pageno。
func (c *Client) Search(ctx context.Context, req *search.Request) (*search.Response, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	u.Path = "/search"

	q := u.Query()
	q.Set("q", buildQuery(req))
	q.Set("format", "json")
	q.Set("categories", "general")
	q.Set("pageno", strconv.Itoa(pageNumber(req.Offset, req.MaxResults)))
	u.RawQuery = q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 添加 User-Agent 避免被简单的反爬虫策略拦截
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	res, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("searxng api error (status %d): %s", res.StatusCode, string(body))
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(res.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response failed: %w", err)
	}

	results := searchResp.Results
	if req.MaxResults > 0 && len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}

	// number_of_results 经常为 0，以实际条数兜底
	out := &search.Response{TotalResults: max(searchResp.NumberOfResults, int64(len(results)))}
	for _, r := range results {
		out.Hits = append(out.Hits, search.NewHit(map[string]string{
			search.FieldTitle:   r.Title,
			search.FieldLink:    r.URL,
			search.FieldSnippet: r.Content,
		}))
	}
	return out, nil
}

// 排除站点通过 -site: 语法拼进查询
func buildQuery(req *search.Request) string {
	parts := []string{req.Query}
	for _, site := range req.ExcludedSites {
		if site = strings.TrimSpace(site); site != "" {
			parts = append(parts, "-site:"+site)
		}
	}
	return strings.Join(parts, " ")
}

func pageNumber(offset, perPage int) int {
	if perPage <= 0 {
		return 1
	}
	return offset/perPage + 1
}
