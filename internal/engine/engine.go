// Package engine 串联一次完整运行：读取配置源、规划轮转分组、执行查询、
// 汇总去重、渲染报告，并由 Dispatch 统一决定发报告还是通知运维。
package engine

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/iWorld-y/alert_me/internal/logger"
	"github.com/iWorld-y/alert_me/internal/model"
	"github.com/iWorld-y/alert_me/internal/notify"
	"github.com/iWorld-y/alert_me/internal/render"
	"github.com/iWorld-y/alert_me/internal/report"
	"github.com/iWorld-y/alert_me/internal/rotation"
	"github.com/iWorld-y/alert_me/internal/search"
	"github.com/iWorld-y/alert_me/internal/source"
)

// Status 运行结果类型
type Status int

const (
	StatusFailed Status = iota // 运行失败，需通知运维；零值也走这条路径
	StatusReport               // 报告已生成，待发送
)

func (s Status) String() string {
	switch s {
	case StatusReport:
		return "report"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Outcome 一次运行的结果，Status 决定 Dispatch 走哪条路径
type Outcome struct {
	Status Status
	Date   time.Time
	State  model.RotationState // 本次运行读取到的状态
	Plan   *rotation.Plan
	Report model.Report // 去重后的报告
	HTML   string
	Err    error
}

// HistoryStore 运行记录存储，storage.Storage 满足该接口
type HistoryStore interface {
	CreateRun(ctx context.Context) (int, error)
	SaveResults(ctx context.Context, runID int, rep model.Report) error
	FinishRun(ctx context.Context, runID int, state model.RotationState, runErr error) error
}

// Overviewer 报告概览生成，summary.Summarizer 满足该接口
type Overviewer interface {
	Overview(ctx context.Context, rep model.Report) (string, error)
}

// Options 运行参数
type Options struct {
	PageSize      int
	Recipient     string
	Operator      string
	SubjectPrefix string
	Now           func() time.Time
}

// Engine 核心处理引擎
type Engine struct {
	src      source.Source
	executor *search.Executor
	renderer render.Renderer
	notifier notify.Notifier
	history  HistoryStore
	overview Overviewer
	opts     Options
}

type Option func(*Engine)

// WithHistory 记录每次运行
func WithHistory(h HistoryStore) Option {
	return func(e *Engine) { e.history = h }
}

// WithOverview 在报告顶部加入概览
func WithOverview(o Overviewer) Option {
	return func(e *Engine) { e.overview = o }
}

// NewEngine 创建引擎实例
func NewEngine(src source.Source, searcher search.Searcher, renderer render.Renderer, notifier notify.Notifier, opts Options, options ...Option) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SubjectPrefix == "" {
		opts.SubjectPrefix = "Alert Me Report"
	}
	e := &Engine{
		src:      src,
		executor: search.NewExecutor(searcher, opts.PageSize),
		renderer: renderer,
		notifier: notifier,
		opts:     opts,
	}
	for _, o := range options {
		o(e)
	}
	return e
}

// Execute 执行一次运行并分发结果，返回值供调度循环记录
func (e *Engine) Execute(ctx context.Context) error {
	runID, recording := e.startRun(ctx)
	o := e.Run(ctx)
	err := e.Dispatch(ctx, o)
	if recording {
		e.finishRun(ctx, runID, o, err)
	}
	return err
}

// Run 执行查询流水线，不发送任何邮件，也不写回状态
func (e *Engine) Run(ctx context.Context) Outcome {
	o := Outcome{Date: e.opts.Now()}
	fail := func(err error) Outcome {
		o.Status = StatusFailed
		o.Err = err
		return o
	}

	in, err := e.src.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load inputs: %w", err))
	}
	o.State = in.State
	if len(in.Terms) == 0 {
		return fail(model.NewConfigError("term list is empty"))
	}
	if len(in.Countries) == 0 {
		return fail(model.NewConfigError("country list is empty"))
	}

	plan, err := rotation.NewPlan(in.State, in.Countries, e.opts.PageSize)
	if err != nil {
		return fail(err)
	}
	o.Plan = plan
	if len(plan.Dropped) > 0 {
		logger.Log.Warnf("%d 个国家不在任何分组中，不会被搜索: %v", len(plan.Dropped), plan.Dropped)
	}
	logger.Log.Infof("本次搜索分组 %d/%d，偏移 %d，国家 %v", in.State.CurrentGroup, in.State.GroupCount, plan.Offset, plan.Countries)

	pairs, err := e.executor.Run(ctx, in.Terms, plan.Countries, plan.Offset, in.ExcludedSites)
	if err != nil {
		return fail(err)
	}

	rep, err := report.Aggregate(pairs)
	if err != nil {
		return fail(err)
	}
	deduped, _ := report.Dedup(rep, report.Seen{})
	o.Report = deduped
	logger.Log.Infof("汇总完成: %d 条结果，去重后 %d 条", rep.Count(), deduped.Count())

	doc := render.Document{Date: o.Date, Report: deduped}
	if e.overview != nil {
		overview, err := e.overview.Overview(ctx, deduped)
		if err != nil {
			logger.Log.Warnf("生成概览失败，报告将不包含概览: %v", err)
		} else {
			doc.Overview = overview
		}
	}

	o.HTML, err = e.renderer.Render(ctx, doc)
	if err != nil {
		return fail(err)
	}

	o.Status = StatusReport
	return o
}

// Dispatch 唯一的结果分发点：成功时发送报告并写回状态，失败时把错误发给运维
func (e *Engine) Dispatch(ctx context.Context, o Outcome) error {
	if o.Status == StatusReport && o.Plan == nil {
		o.Status, o.Err = StatusFailed, errors.New("report outcome has no rotation plan")
	}
	if o.Status == StatusFailed && o.Err == nil {
		o.Err = errors.New("run ended without a report")
	}
	if o.Status == StatusReport {
		err := e.deliver(ctx, o)
		if err == nil {
			return nil
		}
		o.Status, o.Err = StatusFailed, err
	}

	logger.Log.Errorf("运行失败: %v", o.Err)
	runErr := fmt.Errorf("run failed: %w", o.Err)
	if err := e.notifier.Send(ctx, e.operatorMessage(o)); err != nil {
		logger.Log.Errorf("通知运维失败: %v", err)
		return errors.Join(runErr, fmt.Errorf("notify operator: %w", err))
	}
	return runErr
}

func (e *Engine) deliver(ctx context.Context, o Outcome) error {
	msg := notify.Message{
		To:      e.opts.Recipient,
		Subject: fmt.Sprintf("%s for %s", e.opts.SubjectPrefix, o.Date.Format(render.DateLayout)),
		HTML:    o.HTML,
	}
	if err := e.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	if err := e.src.SaveState(ctx, o.Plan.Next); err != nil {
		return fmt.Errorf("save rotation state: %w", err)
	}
	logger.Log.Infof("报告已发送，下一次状态: group=%d/%d offset=%d",
		o.Plan.Next.CurrentGroup, o.Plan.Next.GroupCount, o.Plan.Next.ResultOffset)
	return nil
}

func (e *Engine) operatorMessage(o Outcome) notify.Message {
	return notify.Message{
		To:      e.opts.Operator,
		Subject: fmt.Sprintf("%s failed for %s", e.opts.SubjectPrefix, o.Date.Format(render.DateLayout)),
		HTML:    "<pre>" + html.EscapeString(o.Err.Error()) + "</pre>",
	}
}

// startRun 在运行开始时创建运行记录，失败只记日志
func (e *Engine) startRun(ctx context.Context) (int, bool) {
	if e.history == nil {
		return 0, false
	}
	runID, err := e.history.CreateRun(ctx)
	if err != nil {
		logger.Log.Errorf("无法创建运行记录: %v", err)
		return 0, false
	}
	return runID, true
}

func (e *Engine) finishRun(ctx context.Context, runID int, o Outcome, runErr error) {
	if runErr == nil {
		if err := e.history.SaveResults(ctx, runID, o.Report); err != nil {
			logger.Log.Errorf("保存结果失败: %v", err)
		}
	}
	if err := e.history.FinishRun(ctx, runID, o.State, runErr); err != nil {
		logger.Log.Errorf("更新运行记录失败: %v", err)
	}
}
