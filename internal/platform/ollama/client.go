package ollama

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	lcollama "github.com/tmc/langchaingo/llms/ollama"

	"github.com/yungbote/myu-chat-backend/internal/observability"
	"github.com/yungbote/myu-chat-backend/internal/platform/ctxutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/envutil"
	"github.com/yungbote/myu-chat-backend/internal/platform/llm"
	"github.com/yungbote/myu-chat-backend/internal/platform/logger"
)

const provider = "ollama"

type Config struct {
	ServerURL   string
	Model       string
	EmbedModel  string
	Temperature float64
	MaxTokens   int
}

func ConfigFromEnv() Config {
	return Config{
		ServerURL:   envutil.String("OLLAMA_URL", "http://localhost:11434"),
		Model:       envutil.String("OLLAMA_MODEL", "gemma2:2b"),
		EmbedModel:  envutil.String("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		Temperature: envutil.Float("LLM_TEMPERATURE", 0.3),
		MaxTokens:   envutil.Int("LLM_MAX_TOKENS", 512),
	}
}

// Client talks to a local Ollama server through langchaingo. Generation and
// embeddings use separate models.
type Client struct {
	log      *logger.Logger
	cfg      Config
	chat     *lcollama.LLM
	embedder *lcollama.LLM
}

var _ llm.Client = (*Client)(nil)

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("missing OLLAMA_MODEL")
	}
	chat, err := lcollama.New(lcollama.WithModel(cfg.Model), lcollama.WithServerURL(cfg.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("init ollama chat model: %w", err)
	}
	embedModel := strings.TrimSpace(cfg.EmbedModel)
	if embedModel == "" {
		embedModel = cfg.Model
	}
	embedder, err := lcollama.New(lcollama.WithModel(embedModel), lcollama.WithServerURL(cfg.ServerURL))
	if err != nil {
		return nil, fmt.Errorf("init ollama embed model: %w", err)
	}
	return &Client{
		log:      log.With("service", "OllamaClient"),
		cfg:      cfg,
		chat:     chat,
		embedder: embedder,
	}, nil
}

func (c *Client) callOptions(opts []llm.CallOption) []llms.CallOption {
	o := llm.Resolve(c.cfg.Temperature, c.cfg.MaxTokens, opts...)
	out := []llms.CallOption{}
	if o.Temperature != nil {
		out = append(out, llms.WithTemperature(*o.Temperature))
	}
	if o.MaxTokens > 0 {
		out = append(out, llms.WithMaxTokens(o.MaxTokens))
	}
	return out
}

func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.CallOption) (string, error) {
	start := time.Now()
	out, err := llms.GenerateFromSinglePrompt(ctxutil.Default(ctx), c.chat, prompt, c.callOptions(opts)...)
	if err != nil {
		c.observe("generate", "error", start, prompt, "")
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(out) == "" {
		c.observe("generate", "empty", start, prompt, "")
		return "", llm.ErrEmptyResponse
	}
	c.observe("generate", "ok", start, prompt, out)
	return out, nil
}

// Stream starts generation in the background and exposes the chunks as a
// pull stream. Closing the stream cancels the request.
func (c *Client) Stream(ctx context.Context, prompt string, opts ...llm.CallOption) (llm.Stream, error) {
	callOpts := c.callOptions(opts)
	return llm.Pipe(ctxutil.Default(ctx), func(ctx context.Context, emit llm.Emit) error {
		start := time.Now()
		var produced strings.Builder
		streaming := llms.WithStreamingFunc(func(_ context.Context, chunk []byte) error {
			produced.Write(chunk)
			return emit(string(chunk))
		})
		_, err := llms.GenerateFromSinglePrompt(ctx, c.chat, prompt, append(callOpts, streaming)...)
		status := "ok"
		if err != nil {
			status = "error"
			if ctx.Err() != nil {
				status = "closed"
			}
			c.log.Warn("ollama stream ended with error", "error", err, "status", status)
		}
		c.observe("stream", status, start, prompt, produced.String())
		if err != nil {
			return fmt.Errorf("ollama stream: %w", err)
		}
		return nil
	}), nil
}

func (c *Client) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	start := time.Now()
	vecs, err := c.embedder.CreateEmbedding(ctxutil.Default(ctx), inputs)
	if err != nil {
		c.observe("embed", "error", start, strings.Join(inputs, "\n"), "")
		return nil, fmt.Errorf("ollama embed: %w", err)
	}
	if len(vecs) != len(inputs) {
		return nil, fmt.Errorf("ollama embed: got %d vectors for %d inputs", len(vecs), len(inputs))
	}
	c.observe("embed", "ok", start, strings.Join(inputs, "\n"), "")
	return vecs, nil
}

func (c *Client) observe(op, status string, start time.Time, in, out string) {
	if metrics := observability.Current(); metrics != nil {
		model := c.cfg.Model
		if op == "embed" {
			model = c.cfg.EmbedModel
		}
		metrics.ObserveLLMRequest(provider, model, op, status, time.Since(start), estimateTokens(in), estimateTokens(out))
	}
}

func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return int(math.Ceil(float64(len([]rune(text))) / 4.0))
}
