package model

// RotationState 轮转状态，每次运行结束后写回配置源
type RotationState struct {
	GroupCount   int // 国家分组数
	CurrentGroup int // 本次要搜索的分组下标，取值 [0, GroupCount)
	ResultOffset int // 搜索结果起始偏移（从 0 开始）
}

// Inputs 一次运行所需的全部输入
type Inputs struct {
	Terms         []string
	Countries     []string
	ExcludedSites []string
	State         RotationState
}

// SearchResult 单条搜索结果
type SearchResult struct {
	Title   string
	Link    string
	Snippet string
}

// CountryResults 某个国家下的搜索结果，保持搜索引擎返回顺序
type CountryResults struct {
	Country string
	Results []SearchResult
}

// TermResults 某个技术术语下按国家分组的结果
type TermResults struct {
	Term      string
	Countries []CountryResults
}

// Report 一次运行的报告：term -> country -> []SearchResult，顺序即查询顺序
type Report struct {
	Terms []TermResults
}

// Count 返回报告中的结果总数
func (r Report) Count() int {
	n := 0
	for _, t := range r.Terms {
		for _, c := range t.Countries {
			n += len(c.Results)
		}
	}
	return n
}

// Results 按遍历顺序展开所有结果
func (r Report) Results() []SearchResult {
	var out []SearchResult
	for _, t := range r.Terms {
		for _, c := range t.Countries {
			out = append(out, c.Results...)
		}
	}
	return out
}
