package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/iWorld-y/alert_me/internal/model"
)

// Config 项目配置结构体
type Config struct {
	Log         LogConfig         `yaml:"log"`
	Google      GoogleConfig      `yaml:"google"`
	Sheet       SheetConfig       `yaml:"sheet"`
	Search      SearchConfig      `yaml:"search"`
	State       StateConfig       `yaml:"state"`
	Mail        MailConfig        `yaml:"mail"`
	DB          DBConfig          `yaml:"db"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
}

// LogConfig 日志相关配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// GoogleConfig Google 服务账号配置，Sheets 与 Gmail 共用
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// SheetConfig 表格中各数据区域
type SheetConfig struct {
	SpreadsheetID string `yaml:"spreadsheet_id"`
	DataRange     string `yaml:"data_range"`
	MetaRange     string `yaml:"meta_range"`
	StateRange    string `yaml:"state_range"`
	ExcludeRange  string `yaml:"exclude_range"`
	TermHeader    string `yaml:"term_header"`
	CountryHeader string `yaml:"country_header"`
}

// SearchConfig 搜索相关配置
type SearchConfig struct {
	Provider    string        `yaml:"provider"`
	ResultCount int           `yaml:"result_count"` // 每个 term/country 的结果数，同时也是翻页步长
	Google      GoogleSearch  `yaml:"google"`
	Tavily      TavilyConfig  `yaml:"tavily"`
	SearXNG     SearXNGConfig `yaml:"searxng"`
}

// GoogleSearch Google Custom Search 配置
type GoogleSearch struct {
	APIKey       string `yaml:"api_key"`
	EngineID     string `yaml:"engine_id"`
	Language     string `yaml:"language"`
	Safe         string `yaml:"safe"`
	DateRestrict string `yaml:"date_restrict"`
}

// TavilyConfig Tavily 配置
type TavilyConfig struct {
	APIKey string `yaml:"api_key"`
}

// SearXNGConfig SearXNG 配置
type SearXNGConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"`
}

// StateConfig 轮转状态存放位置：sheet 或 postgres
type StateConfig struct {
	Backend string `yaml:"backend"`
}

// MailConfig 邮件相关配置
type MailConfig struct {
	Provider      string `yaml:"provider"` // gmail 或 file
	Sender        string `yaml:"sender"`
	Recipient     string `yaml:"recipient"`
	Operator      string `yaml:"operator"`
	SubjectPrefix string `yaml:"subject_prefix"`
	OutboxDir     string `yaml:"outbox_dir"`
}

// DBConfig 数据库相关配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
}

// Enabled 是否配置了数据库
func (c DBConfig) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// LLMConfig LLM 相关配置，留空则不生成摘要
type LLMConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
}

// Enabled 是否启用 LLM 摘要
func (c LLMConfig) Enabled() bool {
	return c.APIKey != "" && c.Model != ""
}

// ConcurrencyConfig 请求节流配置
type ConcurrencyConfig struct {
	QPS int `yaml:"qps"`
	RPM int `yaml:"rpm"`
}

// ScheduleConfig 定时触发配置，Cron 为空时只运行一次
type ScheduleConfig struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

// 环境变量优先于配置文件
var envOverrides = []struct {
	name  string
	apply func(*Config, string)
}{
	{"GOOGLE_SHEET_ID", func(c *Config, v string) { c.Sheet.SpreadsheetID = v }},
	{"GOOGLE_CREDENTIALS_FILE", func(c *Config, v string) { c.Google.CredentialsFile = v }},
	{"GOOGLE_SEARCH_API_KEY", func(c *Config, v string) { c.Search.Google.APIKey = v }},
	{"GOOGLE_SEARCH_ENGINE_ID", func(c *Config, v string) { c.Search.Google.EngineID = v }},
	{"TAVILY_API_KEY", func(c *Config, v string) { c.Search.Tavily.APIKey = v }},
	{"USER_EMAIL", func(c *Config, v string) { c.Mail.Recipient = v }},
	{"OPERATOR_EMAIL", func(c *Config, v string) { c.Mail.Operator = v }},
	{"SENDER_EMAIL", func(c *Config, v string) { c.Mail.Sender = v }},
	{"DATABASE_URL", func(c *Config, v string) { c.DB.URL = v }},
	{"LLM_API_KEY", func(c *Config, v string) { c.LLM.APIKey = v }},
}

// LoadConfig 从指定路径加载配置，再应用环境变量和默认值
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		if v, ok := lookup(o.name); ok && strings.TrimSpace(v) != "" {
			o.apply(c, strings.TrimSpace(v))
		}
	}
}

func (c *Config) applyDefaults() {
	setDefault(&c.Log.Level, "info")
	setDefault(&c.Sheet.DataRange, "Sheet1!A1:B100")
	setDefault(&c.Sheet.MetaRange, "turtle_meta!A1:C3")
	setDefault(&c.Sheet.StateRange, "turtle_meta!A2:C2")
	setDefault(&c.Sheet.ExcludeRange, "exclude_site!A1:A100")
	setDefault(&c.Sheet.TermHeader, "Technical Term")
	setDefault(&c.Sheet.CountryHeader, "Country")
	setDefault(&c.Search.Provider, "google")
	if c.Search.ResultCount <= 0 {
		c.Search.ResultCount = 2
	}
	setDefault(&c.Search.Google.Language, "lang_en")
	setDefault(&c.Search.Google.Safe, "active")
	setDefault(&c.Search.Google.DateRestrict, "m6")
	setDefault(&c.State.Backend, "sheet")
	setDefault(&c.Mail.Provider, "gmail")
	setDefault(&c.Mail.SubjectPrefix, "Alert Me Report")
	setDefault(&c.Mail.OutboxDir, "output")
	if c.DB.Port == 0 {
		c.DB.Port = 5432
	}
	if c.Concurrency.QPS <= 0 {
		c.Concurrency.QPS = 1
	}
	if c.Concurrency.RPM <= 0 {
		c.Concurrency.RPM = 60
	}
}

func setDefault(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Validate 校验运行所需的配置项
func (c *Config) Validate() error {
	switch c.State.Backend {
	case "sheet":
	case "postgres":
		if !c.DB.Enabled() {
			return model.NewConfigError("state backend postgres requires db settings")
		}
	default:
		return model.NewConfigError("unknown state backend: %s", c.State.Backend)
	}

	if c.Sheet.SpreadsheetID == "" {
		return model.NewConfigError("sheet.spreadsheet_id is missing")
	}

	switch c.Mail.Provider {
	case "gmail":
		if c.Mail.Sender == "" {
			return model.NewConfigError("mail.sender is required for gmail")
		}
	case "file":
	default:
		return model.NewConfigError("unknown mail provider: %s", c.Mail.Provider)
	}
	if c.Mail.Recipient == "" {
		return model.NewConfigError("mail.recipient is missing")
	}
	if c.Mail.Operator == "" {
		return model.NewConfigError("mail.operator is missing")
	}

	return nil
}
