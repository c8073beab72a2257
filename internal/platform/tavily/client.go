package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/websearch"
)

const defaultBaseURL = "https://api.tavily.com"

var ErrMissingAPIKey = errors.New("TAVILY_API_KEY not configured")

type Config struct {
	APIKey      string
	BaseURL     string
	SearchDepth string
	Timeout     time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("TAVILY_API_KEY", ""),
		BaseURL:     envutil.String("TAVILY_BASE_URL", defaultBaseURL),
		SearchDepth: envutil.String("TAVILY_SEARCH_DEPTH", "basic"),
		Timeout:     envutil.Duration("TAVILY_TIMEOUT", 15*time.Second),
	}
}

type Client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

var _ websearch.Searcher = (*Client)(nil)

type searchRequest struct {
	APIKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth,omitempty"`
	IncludeAnswer bool   `json:"include_answer"`
	IncludeImages bool   `json:"include_images"`
	MaxResults    int    `json:"max_results"`
}

type searchResponse struct {
	Query   string         `json:"query"`
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// NewClient never fails on a missing key; Search reports ErrMissingAPIKey so
// the chain can fall through to the next provider.
func NewClient(log *logger.Logger, cfg Config, hc *http.Client) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.SearchDepth == "" {
		cfg.SearchDepth = "basic"
	}
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{log: log.With("service", "TavilyClient"), cfg: cfg, http: hc}
}

func (c *Client) Name() string { return "tavily" }

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	body, err := json.Marshal(searchRequest{
		APIKey:      c.cfg.APIKey,
		Query:       query,
		SearchDepth: c.cfg.SearchDepth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, strings.TrimRight(c.cfg.BaseURL, "/")+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("tavily read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily status %d: %s", resp.StatusCode, logger.Preview(string(raw), 200))
	}
	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("tavily decode response: %w", err)
	}

	out := make([]websearch.Result, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		out = append(out, websearch.Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     strings.TrimSpace(r.URL),
			Content: strings.TrimSpace(r.Content),
		})
	}
	c.log.Debug("tavily search done", "results", len(out), "duration_ms", time.Since(start).Milliseconds())
	return out, nil
}
