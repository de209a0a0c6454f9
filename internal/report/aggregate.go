package report

import (
	"github.com/iWorld-y/alert_me/internal/model"
	"github.com/iWorld-y/alert_me/internal/search"
)

// Aggregate 把查询结果整理成 term -> country -> []SearchResult，保持查询顺序。
// 总结果数为 0 的组合得到空列表而不是错误。
func Aggregate(pairs []search.PairResult) (model.Report, error) {
	var rep model.Report
	termIndex := make(map[string]int)

	for _, p := range pairs {
		idx, ok := termIndex[p.Term]
		if !ok {
			idx = len(rep.Terms)
			termIndex[p.Term] = idx
			rep.Terms = append(rep.Terms, model.TermResults{Term: p.Term})
		}

		results := []model.SearchResult{}
		if p.Response != nil && p.Response.TotalResults > 0 {
			for _, hit := range p.Response.Hits {
				r, err := Extract(hit, p.Term, p.Country)
				if err != nil {
					return model.Report{}, err
				}
				results = append(results, r)
			}
		}

		rep.Terms[idx].Countries = append(rep.Terms[idx].Countries, model.CountryResults{
			Country: p.Country,
			Results: results,
		})
	}

	return rep, nil
}

// Extract 从原始记录中取出 title、link、snippet，缺失任一字段返回 RenderError
func Extract(hit search.Hit, term, country string) (model.SearchResult, error) {
	var r model.SearchResult
	fields := []struct {
		name string
		dst  *string
	}{
		{search.FieldTitle, &r.Title},
		{search.FieldLink, &r.Link},
		{search.FieldSnippet, &r.Snippet},
	}
	for _, f := range fields {
		v, ok := hit[f.name]
		if !ok {
			return model.SearchResult{}, &model.RenderError{Field: f.name, Term: term, Country: country}
		}
		*f.dst = v
	}
	return r, nil
}
