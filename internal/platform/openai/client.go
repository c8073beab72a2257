package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const provider = "openai"

type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	EmbedModel  string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// ConfigFromEnv reads OPENAI_* plus the shared LLM_TEMPERATURE/LLM_MAX_TOKENS.
func ConfigFromEnv() Config {
	return Config{
		APIKey:      envutil.String("OPENAI_API_KEY", ""),
		BaseURL:     envutil.String("OPENAI_BASE_URL", ""),
		Model:       envutil.String("OPENAI_MODEL", "gpt-4o-mini"),
		EmbedModel:  envutil.String("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
		Temperature: envutil.Float("LLM_TEMPERATURE", 0.3),
		MaxTokens:   envutil.Int("LLM_MAX_TOKENS", 512),
		Timeout:     envutil.Duration("OPENAI_TIMEOUT_SECONDS", 180*time.Second),
	}
}

type Client struct {
	log *logger.Logger
	api *goopenai.Client
	cfg Config
}

var _ llm.Client = (*Client)(nil)

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		apiCfg.BaseURL = base
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	return &Client{
		log: log.With("service", "OpenAIClient"),
		api: goopenai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}, nil
}

func (c *Client) request(prompt string, opts []llm.CallOption) goopenai.ChatCompletionRequest {
	o := llm.Resolve(c.cfg.Temperature, c.cfg.MaxTokens, opts...)
	req := goopenai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if o.Temperature != nil {
		req.Temperature = float32(*o.Temperature)
	}
	if o.MaxTokens > 0 {
		req.MaxCompletionTokens = o.MaxTokens
	}
	return req
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error) {
	req := c.request(prompt, opts)
	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctxutil.Default(ctx), req)
	if err != nil {
		c.observe("generate", statusOf(err), start, prompt, "")
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		c.observe("generate", "empty", start, prompt, "")
		return "", llm.ErrEmptyResponse
	}
	out := resp.Choices[0].Message.Content
	c.observe("generate", "ok", start, prompt, out)
	return out, nil
}

func (c *Client) Stream(ctx context.Context, prompt string, opts ...llm.CallOption) (llm.Stream, error) {
	req := c.request(prompt, opts)
	req.Stream = true
	start := time.Now()
	s, err := c.api.CreateChatCompletionStream(ctxutil.Default(ctx), req)
	if err != nil {
		c.observe("stream", statusOf(err), start, prompt, "")
		return nil, fmt.Errorf("openai chat stream: %w", err)
	}
	return &chatStream{c: c, s: s, start: start, prompt: prompt}, nil
}

func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctxutil.Default(ctx), goopenai.EmbeddingRequest{
		Input: inputs,
		Model: goopenai.EmbeddingModel(c.cfg.EmbedModel),
	})
	if err != nil {
		c.observe("embed", statusOf(err), start, strings.Join(inputs, "\n"), "")
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		if d.Index >= 0 && d.Index < len(out) {
			out[d.Index] = d.Embedding
		}
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, fmt.Errorf("openai embeddings: missing vector for input %d", i)
		}
	}
	c.observe("embed", "ok", start, strings.Join(inputs, "\n"), "")
	return out, nil
}

func (c *Client) observe(op, status string, start time.Time, in, out string) {
	if metrics := observability.Current(); metrics != nil {
		metrics.ObserveLLMRequest(provider, c.cfg.Model, op, status, time.Since(start), estimateTokens(in), estimateTokens(out))
	}
}

type chatStream struct {
	c      *Client
	s      *goopenai.ChatCompletionStream
	start  time.Time
	prompt string
	out    strings.Builder
	closed bool
}

func (cs *chatStream) Recv() (string, error) {
	if cs.closed {
		return "", io.EOF
	}
	for {
		resp, err := cs.s.Recv()
		if errors.Is(err, io.EOF) {
			cs.finish("ok")
			return "", io.EOF
		}
		if err != nil {
			cs.finish(statusOf(err))
			return "", fmt.Errorf("openai stream recv: %w", err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		cs.out.WriteString(delta)
		return delta, nil
	}
}

func (cs *chatStream) finish(status string) {
	if cs.closed {
		return
	}
	cs.closed = true
	cs.s.Close()
	cs.c.observe("stream", status, cs.start, cs.prompt, cs.out.String())
}

func (cs *chatStream) Close() error {
	cs.finish("closed")
	return nil
}

func statusOf(err error) string {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode > 0 {
		return strconv.Itoa(apiErr.HTTPStatusCode)
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode > 0 {
		return strconv.Itoa(reqErr.HTTPStatusCode)
	}
	return "error"
}

// rough token estimate (~4 chars/token)
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len([]rune(text))) / 4.0))
}
