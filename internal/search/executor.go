package search

import (
	"context"
	"strings"

	"github.com/iWorld-y/alert_me/internal/countrycode"
	"github.com/iWorld-y/alert_me/internal/logger"
	"github.com/iWorld-y/alert_me/internal/model"
)

// PairResult 一个 term/country 组合的搜索结果
type PairResult struct {
	Term     string
	Country  string
	Response *Response
}

// Executor 按 term 优先、country 其次的顺序串行执行查询
type Executor struct {
	searcher   Searcher
	maxResults int
}

// NewExecutor 创建查询执行器
func NewExecutor(searcher Searcher, maxResults int) *Executor {
	return &Executor{searcher: searcher, maxResults: maxResults}
}

// Run 对每个 term 和 countries 中的每个国家各发起一次查询。
// 任意一次查询失败都会中止整个运行并返回 QueryError。
func (e *Executor) Run(ctx context.Context, terms, countries []string, offset int, excluded []string) ([]PairResult, error) {
	results := make([]PairResult, 0, len(terms)*len(countries))
	for _, term := range terms {
		for _, country := range countries {
			req := &Request{
				Query:         JoinQuery(term, country),
				Term:          term,
				Country:       country,
				CountryCode:   countrycode.Lookup(country),
				MaxResults:    e.maxResults,
				Offset:        offset,
				ExcludedSites: excluded,
			}

			resp, err := e.searcher.Search(ctx, req)
			if err != nil {
				return nil, &model.QueryError{Term: term, Country: country, Err: err}
			}
			if resp == nil {
				resp = &Response{}
			}
			logger.Log.Debugf("查询完成 [%s]: total=%d hits=%d", req.Query, resp.TotalResults, len(resp.Hits))

			results = append(results, PairResult{Term: term, Country: country, Response: resp})
		}
	}
	return results, nil
}

// JoinQuery 拼接查询文本
func JoinQuery(term, country string) string {
	return strings.TrimSpace(term + " " + country)
}

// FirstWord 返回 term 的第一个词，用作精确匹配词
func FirstWord(term string) string {
	fields := strings.Fields(term)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
