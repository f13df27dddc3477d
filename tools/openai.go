package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gradebot/metrics"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// NoResponseText is returned when the provider answers without any choice.
const NoResponseText = "No response received."

/************************************************
/**** MARK: PROVIDER FAILURE KINDS ****/
/************************************************/
const PROVIDER_TIMEOUT = "timeout"
const PROVIDER_AUTH = "auth"
const PROVIDER_RATE_LIMITED = "rate_limited"
const PROVIDER_ERROR = "provider"
const PROVIDER_TRANSPORT = "transport"

// ProviderError is the failure variant of a generation: the provider could not
// be reached or refused the request. Kind is one of the PROVIDER_* constants.
type ProviderError struct {
	Kind string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm provider %s: %v", e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

type GeneratorConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Generator sends a composed payload to an OpenAI-compatible chat-completion
// endpoint (OpenAI, LiteLLM proxy, vLLM...).
type Generator struct {
	client  openai.Client
	model   string
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewGenerator(cfg GeneratorConfig, log logrus.FieldLogger, opts ...option.RequestOption) *Generator {
	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// uma chamada por correção, sem retry
		option.WithMaxRetries(0),
	}
	if u := strings.TrimSpace(cfg.BaseURL); u != "" {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		base = append(base, option.WithBaseURL(u))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Generator{
		client:  openai.NewClient(append(base, opts...)...),
		model:   cfg.Model,
		timeout: timeout,
		log:     log,
	}
}

// Generate performs exactly one chat-completion round trip. It returns the
// first choice verbatim, NoResponseText when there is no choice, or a
// *ProviderError.
func (g *Generator) Generate(ctx context.Context, p Payload) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: toChatMessages(p.Messages()),
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	elapsed := time.Since(start)

	if err != nil {
		perr := classify(ctx, err)
		metrics.RecordProviderCall(perr.Kind, elapsed)
		g.log.WithError(err).WithFields(logrus.Fields{
			"kind":    perr.Kind,
			"model":   g.model,
			"elapsed": elapsed,
		}).Warn("openai: chat completion failed")
		return "", perr
	}

	if len(resp.Choices) == 0 {
		metrics.RecordProviderCall("empty", elapsed)
		g.log.WithField("model", g.model).Warn("openai: response without choices")
		return NoResponseText, nil
	}

	metrics.RecordProviderCall("ok", elapsed)
	return resp.Choices[0].Message.Content, nil
}

func toChatMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case ROLE_SYSTEM:
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func classify(ctx context.Context, err error) *ProviderError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ProviderError{Kind: PROVIDER_TIMEOUT, Err: err}
	}
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &ProviderError{Kind: PROVIDER_AUTH, Err: err}
		case http.StatusTooManyRequests:
			return &ProviderError{Kind: PROVIDER_RATE_LIMITED, Err: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &ProviderError{Kind: PROVIDER_TIMEOUT, Err: err}
		default:
			return &ProviderError{Kind: PROVIDER_ERROR, Err: err}
		}
	}
	return &ProviderError{Kind: PROVIDER_TRANSPORT, Err: err}
}
