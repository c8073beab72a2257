package duckduckgo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
	"github.com/yungbote/myu-chat-backend/internal/platform/websearch"
)

const (
	defaultEndpoint  = "https://html.duckduckgo.com/html/"
	defaultUserAgent = "Mozilla/5.0 (compatible; MyUBot/1.0)"
)

type Config struct {
	Endpoint string
	Region   string
	Timeout  time.Duration
}

func ConfigFromEnv() Config {
	return Config{
		Endpoint: envutil.String("DUCKDUCKGO_ENDPOINT", defaultEndpoint),
		Region:   envutil.String("DUCKDUCKGO_REGION", "vn-vi"),
		Timeout:  envutil.Duration("DUCKDUCKGO_TIMEOUT", 10*time.Second),
	}
}

// Client scrapes the DuckDuckGo HTML endpoint. It needs no API key and is
// used as the fallback when Tavily returns nothing.
type Client struct {
	log  *logger.Logger
	cfg  Config
	http *http.Client
}

var _ websearch.Searcher = (*Client)(nil)

func NewClient(log *logger.Logger, cfg Config, hc *http.Client) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Client{log: log.With("service", "DuckDuckGoClient"), cfg: cfg, http: hc}
}

func (c *Client) Name() string { return "duckduckgo" }

func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]websearch.Result, error) {
	if maxResults <= 0 {
		maxResults = 3
	}
	form := url.Values{}
	form.Set("q", query)
	if c.cfg.Region != "" {
		form.Set("kl", c.cfg.Region)
	}
	req, err := http.NewRequestWithContext(ctxutil.Default(ctx), http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("duckduckgo build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse html: %w", err)
	}
	return parseResults(doc, maxResults), nil
}

func parseResults(doc *goquery.Document, maxResults int) []websearch.Result {
	out := []websearch.Result{}
	doc.Find("div.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		snippet := strings.TrimSpace(s.Find(".result__snippet").First().Text())
		if title == "" || snippet == "" {
			return true
		}
		out = append(out, websearch.Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Content: snippet,
		})
		return len(out) < maxResults
	})
	return out
}

// resolveRedirect unwraps "//duckduckgo.com/l/?uddg=<target>" links.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}
