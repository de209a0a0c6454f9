package report

import "github.com/iWorld-y/alert_me/internal/model"

// Seen 去重时已出现过的标题和链接
type Seen map[string]struct{}

// Has 判断字符串是否出现过
func (s Seen) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Dedup 按 term、country、结果的顺序单次遍历，标题或链接已出现过的结果被丢弃，
// 最早出现的副本保留。seen 为 nil 时从空集合开始；返回更新后的集合，入参不会被修改。
func Dedup(rep model.Report, seen Seen) (model.Report, Seen) {
	next := make(Seen, len(seen))
	for k := range seen {
		next[k] = struct{}{}
	}

	out := model.Report{Terms: make([]model.TermResults, 0, len(rep.Terms))}
	for _, term := range rep.Terms {
		t := model.TermResults{Term: term.Term, Countries: make([]model.CountryResults, 0, len(term.Countries))}
		for _, country := range term.Countries {
			kept := make([]model.SearchResult, 0, len(country.Results))
			for _, r := range country.Results {
				if next.Has(r.Title) || next.Has(r.Link) {
					continue
				}
				kept = append(kept, r)
				next[r.Title] = struct{}{}
				next[r.Link] = struct{}{}
			}
			t.Countries = append(t.Countries, model.CountryResults{Country: country.Country, Results: kept})
		}
		out.Terms = append(out.Terms, t)
	}

	return out, next
}
