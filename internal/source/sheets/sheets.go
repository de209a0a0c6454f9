// Package sheets 从 Google 表格读取搜索配置并写回轮转状态。
//
// 表格布局：
//   - 数据区（默认 Sheet1!A1:B100）：首行为表头，"Technical Term" 与 "Country" 两列
//   - 元数据区（默认 turtle_meta!A1:C3）：表头 next_group、num_of_groups、last_result
//   - 排除站点（默认 exclude_site!A1:A100）：首行为表头，其后每行一个站点
//
// 空单元格一律跳过。
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	gapi "github.com/iWorld-y/alert_me/internal/google"
	"github.com/iWorld-y/alert_me/internal/logger"
	"github.com/iWorld-y/alert_me/internal/model"
	"github.com/iWorld-y/alert_me/internal/source"
)

// 元数据区的表头，同时也是状态写回时的列顺序
const (
	HeaderNextGroup  = "next_group"
	HeaderGroupCount = "num_of_groups"
	HeaderLastResult = "last_result"
)

// Options 表格 ID 与各区域
type Options struct {
	SpreadsheetID string
	DataRange     string
	MetaRange     string
	StateRange    string
	ExcludeRange  string
	TermHeader    string
	CountryHeader string
	// ExternalState 为 true 时轮转状态由其他存储负责，不读取元数据区
	ExternalState bool
}

// Source 基于 Google Sheets 的配置源
type Source struct {
	opts Options
	svc  *sheets.Service
}

// Ensure Source implements source.Source
var _ source.Source = (*Source)(nil)

// NewSource 创建表格配置源，opts 通常为 option.WithTokenSource
func NewSource(ctx context.Context, o Options, opts ...option.ClientOption) (*Source, error) {
	if o.SpreadsheetID == "" {
		return nil, model.NewConfigError("spreadsheet id is missing")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service failed: %w", err)
	}
	return &Source{opts: o, svc: svc}, nil
}

// Load 一次批量读取数据区、排除站点和元数据区，ExternalState 时不读元数据区
func (s *Source) Load(ctx context.Context) (*model.Inputs, error) {
	ranges := []string{s.opts.DataRange, s.opts.ExcludeRange}
	if !s.opts.ExternalState {
		ranges = append(ranges, s.opts.MetaRange)
	}
	res, err := s.svc.Spreadsheets.Values.BatchGet(s.opts.SpreadsheetID).
		Ranges(ranges...).
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet failed: %w", gapi.WrapError(err))
	}
	if len(res.ValueRanges) != len(ranges) {
		return nil, fmt.Errorf("read spreadsheet failed: expected %d ranges, got %d", len(ranges), len(res.ValueRanges))
	}

	data := columns(res.ValueRanges[0].Values)
	terms := data.get(s.opts.TermHeader)
	countries := data.get(s.opts.CountryHeader)
	if len(terms) == 0 {
		return nil, model.NewConfigError("no terms found under header %q in %s", s.opts.TermHeader, s.opts.DataRange)
	}
	if len(countries) == 0 {
		return nil, model.NewConfigError("no countries found under header %q in %s", s.opts.CountryHeader, s.opts.DataRange)
	}

	var state model.RotationState
	if !s.opts.ExternalState {
		state, err = parseState(columns(res.ValueRanges[2].Values))
		if err != nil {
			return nil, err
		}
	}

	excluded := firstColumn(res.ValueRanges[1].Values)
	logger.Log.Debugf("表格读取完成: %d 个术语, %d 个国家, %d 个排除站点", len(terms), len(countries), len(excluded))

	return &model.Inputs{
		Terms:         terms,
		Countries:     countries,
		ExcludedSites: excluded,
		State:         state,
	}, nil
}

// SaveState 把轮转状态写回元数据区的第一行数据
func (s *Source) SaveState(ctx context.Context, state model.RotationState) error {
	vr := &sheets.ValueRange{
		Range:          s.opts.StateRange,
		MajorDimension: "ROWS",
		Values:         [][]interface{}{StateRow(state)},
	}
	_, err := s.svc.Spreadsheets.Values.Update(s.opts.SpreadsheetID, s.opts.StateRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write rotation state failed: %w", gapi.WrapError(err))
	}
	return nil
}

// StateRow 按表头顺序排列的状态行
func StateRow(state model.RotationState) []interface{} {
	return []interface{}{state.CurrentGroup, state.GroupCount, state.ResultOffset}
}

// table 表头（小写）到该列非空值的映射
type table map[string][]string

func (t table) get(header string) []string {
	return t[normalize(header)]
}

func columns(rows [][]interface{}) table {
	t := make(table)
	if len(rows) == 0 {
		return t
	}
	headers := rows[0]
	for _, row := range rows[1:] {
		for i, cell := range row {
			if i >= len(headers) {
				break
			}
			v := cellString(cell)
			if v == "" {
				continue
			}
			h := normalize(cellString(headers[i]))
			t[h] = append(t[h], v)
		}
	}
	return t
}

func firstColumn(rows [][]interface{}) []string {
	var out []string
	for i, row := range rows {
		// 首行为表头
		if i == 0 || len(row) == 0 {
			continue
		}
		if v := cellString(row[0]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseState(t table) (model.RotationState, error) {
	var state model.RotationState
	fields := []struct {
		header string
		dst    *int
	}{
		{HeaderNextGroup, &state.CurrentGroup},
		{HeaderGroupCount, &state.GroupCount},
		{HeaderLastResult, &state.ResultOffset},
	}
	for _, f := range fields {
		values := t.get(f.header)
		if len(values) == 0 {
			return state, model.NewConfigError("rotation state column %q is empty", f.header)
		}
		n, err := strconv.Atoi(values[0])
		if err != nil {
			return state, &model.ConfigError{Reason: fmt.Sprintf("rotation state column %q is not an integer", f.header), Err: err}
		}
		*f.dst = n
	}
	return state, nil
}

func cellString(cell interface{}) string {
	if cell == nil {
		return ""
	}
	switch v := cell.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func normalize(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}
