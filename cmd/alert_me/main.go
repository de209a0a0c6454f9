package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/iWorld-y/alert_me/internal/config"
	"github.com/iWorld-y/alert_me/internal/engine"
	gapi "github.com/iWorld-y/alert_me/internal/google"
	"github.com/iWorld-y/alert_me/internal/logger"
	"github.com/iWorld-y/alert_me/internal/notify"
	"github.com/iWorld-y/alert_me/internal/render"
	"github.com/iWorld-y/alert_me/internal/schedule"
	"github.com/iWorld-y/alert_me/internal/search"
	"github.com/iWorld-y/alert_me/internal/search/factory"
	"github.com/iWorld-y/alert_me/internal/source"
	sheetsrc "github.com/iWorld-y/alert_me/internal/source/sheets"
	"github.com/iWorld-y/alert_me/internal/storage"
	"github.com/iWorld-y/alert_me/internal/summary"
)

func main() {
	confPath := flag.String("conf", "configs/config.yaml", "config file path")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*confPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置错误: %v", err)
	}

	// 2. 初始化日志
	if err = logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Info("启动 Alert Me...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 配置源
	sheetTS, err := gapi.NewTokenSource(ctx, cfg.Google.CredentialsFile, "", sheets.SpreadsheetsScope)
	if err != nil {
		logger.Log.Fatalf("无法加载 Google 凭据: %v", err)
	}
	sheetSrc, err := sheetsrc.NewSource(ctx, sheetsrc.Options{
		SpreadsheetID: cfg.Sheet.SpreadsheetID,
		DataRange:     cfg.Sheet.DataRange,
		MetaRange:     cfg.Sheet.MetaRange,
		StateRange:    cfg.Sheet.StateRange,
		ExcludeRange:  cfg.Sheet.ExcludeRange,
		TermHeader:    cfg.Sheet.TermHeader,
		CountryHeader: cfg.Sheet.CountryHeader,
		ExternalState: cfg.State.Backend == "postgres",
	}, option.WithTokenSource(sheetTS))
	if err != nil {
		logger.Log.Fatalf("配置源初始化失败: %v", err)
	}
	var src source.Source = sheetSrc

	// 4. 数据库（可选）
	var options []engine.Option
	if cfg.DB.Enabled() {
		store, err := storage.NewStorage(ctx, cfg.DB)
		if err != nil {
			if cfg.State.Backend == "postgres" {
				logger.Log.Fatalf("无法连接数据库: %v", err)
			}
			logger.Log.Errorf("无法连接数据库: %v. 将不记录运行历史。", err)
		} else {
			defer store.Close()
			logger.Log.Info("已成功连接到数据库")
			options = append(options, engine.WithHistory(store))
			if cfg.State.Backend == "postgres" {
				src = source.WithStateStore(sheetSrc, store)
			}
		}
	} else {
		logger.Log.Info("未配置数据库信息，跳过数据库连接")
	}

	// 5. 搜索客户端与限流器
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), cfg.Concurrency.QPS)
	searcher, err := factory.NewSearcher(ctx, cfg)
	if err != nil {
		logger.Log.Fatalf("搜索客户端初始化失败: %v", err)
	}
	searcher = search.WithLimiter(searcher, limiter)

	// 6. 概览（可选）
	if cfg.LLM.Enabled() {
		s, err := summary.NewFromConfig(ctx, cfg.LLM, limiter)
		if err != nil {
			logger.Log.Errorf("%v. 报告将不包含概览。", err)
		} else {
			options = append(options, engine.WithOverview(s))
		}
	}

	// 7. 渲染与投递
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		logger.Log.Fatalf("模板初始化失败: %v", err)
	}
	var notifier notify.Notifier
	switch cfg.Mail.Provider {
	case "file":
		notifier = notify.NewFileNotifier(cfg.Mail.OutboxDir)
	default:
		mailTS, err := gapi.NewTokenSource(ctx, cfg.Google.CredentialsFile, cfg.Mail.Sender, gmail.GmailSendScope)
		if err != nil {
			logger.Log.Fatalf("无法加载 Google 凭据: %v", err)
		}
		notifier, err = notify.NewGmailNotifier(ctx, cfg.Mail.Sender, option.WithTokenSource(mailTS))
		if err != nil {
			logger.Log.Fatalf("邮件客户端初始化失败: %v", err)
		}
	}

	e := engine.NewEngine(src, searcher, renderer, notifier, engine.Options{
		PageSize:      cfg.Search.ResultCount,
		Recipient:     cfg.Mail.Recipient,
		Operator:      cfg.Mail.Operator,
		SubjectPrefix: cfg.Mail.SubjectPrefix,
	}, options...)

	// 8. 运行
	if cfg.Schedule.Cron == "" {
		if err := e.Execute(ctx); err != nil {
			logger.Log.Errorf("运行失败: %v", err)
			os.Exit(1)
		}
		logger.Log.Info("运行完成")
		return
	}

	if err := schedule.Run(ctx, cfg.Schedule.Cron, cfg.Schedule.Timezone, e.Execute); err != nil {
		logger.Log.Fatalf("定时任务启动失败: %v", err)
	}
}
