package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/iWorld-y/alert_me/internal/logger"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Parse 校验 cron 表达式，支持 @weekly、@every 1h 等描述符
func Parse(spec string) (cron.Schedule, error) {
	s, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return s, nil
}

// Location 时区为空时使用本地时区
func Location(tz string) (*time.Location, error) {
	if tz == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// Run 按 spec 定时执行 job，直到 ctx 取消。上一次未结束时跳过本次触发。
func Run(ctx context.Context, spec, tz string, job func(context.Context) error) error {
	if _, err := Parse(spec); err != nil {
		return err
	}
	loc, err := Location(tz)
	if err != nil {
		return err
	}

	l := cron.PrintfLogger(logger.Log)
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
	)
	if _, err := c.AddFunc(spec, func() {
		if err := job(ctx); err != nil {
			logger.Log.Errorf("本次运行失败: %v", err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	logger.Log.Infof("定时任务已启动: %s (%s)", spec, loc)

	<-ctx.Done()
	logger.Log.Info("正在停止定时任务...")
	<-c.Stop().Done()
	return nil
}
