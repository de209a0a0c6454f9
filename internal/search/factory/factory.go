package factory

import (
	"context"
	"fmt"

	"google.golang.org/api/option"

	"github.com/iWorld-y/alert_me/internal/config"
	"github.com/iWorld-y/alert_me/internal/search"
	"github.com/iWorld-y/alert_me/internal/search/google"
	"github.com/iWorld-y/alert_me/internal/search/searxng"
	"github.com/iWorld-y/alert_me/internal/search/tavily"
)

// NewSearcher 根据配置创建搜索实例
func NewSearcher(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (search.Searcher, error) {
	switch cfg.Search.Provider {
	case "", "google":
		c, err := google.NewClient(ctx, google.Config{
			APIKey:       cfg.Search.Google.APIKey,
			EngineID:     cfg.Search.Google.EngineID,
			Language:     cfg.Search.Google.Language,
			Safe:         cfg.Search.Google.Safe,
			DateRestrict: cfg.Search.Google.DateRestrict,
		}, opts...)
		if err != nil {
			return nil, err
		}
		return c, nil

	case "tavily":
		if cfg.Search.Tavily.APIKey == "" {
			return nil, fmt.Errorf("tavily api key is missing")
		}
		return tavily.NewClient(cfg.Search.Tavily.APIKey), nil

	case "searxng":
		baseURL := cfg.Search.SearXNG.BaseURL
		if baseURL == "" {
			return nil, fmt.Errorf("searxng base url is missing")
		}
		return searxng.NewClient(baseURL, cfg.Search.SearXNG.Timeout), nil

	default:
		return nil, fmt.Errorf("unknown search provider: %s", cfg.Search.Provider)
	}
}
