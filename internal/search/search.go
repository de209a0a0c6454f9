package search

import (
	"context"

	"golang.org/x/time/rate"
)

// Searcher 定义通用的搜索接口
type Searcher interface {
	Search(ctx context.Context, req *Request) (*Response, error)
}

// Request 通用搜索请求，一个 term/country 组合对应一次请求
type Request struct {
	Query         string   // 实际查询文本："<term> <country>"
	Term          string   // 技术术语
	Country       string   // 国家名，为空表示不限国家
	CountryCode   string   // 国家限制代码（如 countryUS），未知国家为空
	MaxResults    int      // 返回结果数
	Offset        int      // 结果起始偏移，从 0 开始
	ExcludedSites []string // 需要排除的站点
}

// Hit 搜索引擎返回的原始记录，只包含提供方实际给出的字段
type Hit map[string]string

// Hit 中的字段名
const (
	FieldTitle   = "title"
	FieldLink    = "link"
	FieldSnippet = "snippet"
)

// Response 通用搜索响应
type Response struct {
	TotalResults int64 // 提供方报告的总结果数，缺失时为 0
	Hits         []Hit
}

// NewHit 只收录非空字段，便于下游区分缺失字段
func NewHit(fields map[string]string) Hit {
	h := make(Hit, len(fields))
	for k, v := range fields {
		if v != "" {
			h[k] = v
		}
	}
	return h
}

type limitedSearcher struct {
	next    Searcher
	limiter *rate.Limiter
}

// WithLimiter 为搜索请求加上限流，只控制节奏不改变顺序
func WithLimiter(s Searcher, limiter *rate.Limiter) Searcher {
	if limiter == nil {
		return s
	}
	return &limitedSearcher{next: s, limiter: limiter}
}

func (l *limitedSearcher) Search(ctx context.Context, req *Request) (*Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return l.next.Search(ctx, req)
}
