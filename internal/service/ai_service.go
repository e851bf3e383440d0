package service

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

	"edconnect_backend/internal/config"
	"edconnect_backend/pkg/monitoring"
	"edconnect_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	anthropicVersion       = "2023-06-01"
	defaultProviderTimeout = 60 * time.Second
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter 模型调用抽象，测试中替换为假实现
type ChatCompleter interface {
	Complete(ctx context.Context, system string, messages []ChatMessage) (string, error)
}

// completeTraced 所有模型调用的统一入口：超时、追踪和指标
func completeTraced(ctx context.Context, completer ChatCompleter, timeout time.Duration, call, system string, messages []ChatMessage) (string, error) {
	ctx, span := tracing.Tracer.Start(ctx, "tutor."+call)
	defer span.End()
	span.SetAttributes(attribute.Int("tutor.messages", len(messages)))

	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	reply, err := completer.Complete(ctx, system, messages)
	monitoring.TutorProviderLatency.WithLabelValues(call).Observe(time.Since(start).Seconds())
	if err != nil {
		monitoring.TutorRequests.WithLabelValues(call, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	monitoring.TutorRequests.WithLabelValues(call, "ok").Inc()
	return reply, nil
}

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	config     config.AIConfig
	httpClient *http.Client
}

func NewAnthropicClient(cfg config.AIConfig) *AnthropicClient {
	return &AnthropicClient{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []ChatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *AnthropicClient) Complete(ctx context.Context, system string, messages []ChatMessage) (string, error) {
	if c.config.APIKey == "" {
		return "", errors.New("anthropic api key is not configured")
	}
	if len(messages) == 0 {
		return "", errors.New("no messages to send")
	}

	maxTokens := c.config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	body, err := json.Marshal(anthropicRequest{
		Model:     c.config.Model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.config.BaseURL, "/")+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.config.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var parsed anthropicResponse
	if resp.StatusCode != http.StatusOK {
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode anthropic response: %w", err)
	}

	var sb strings.Builder
	for _, block := range parsed.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic response contained no text")
	}
	return sb.String(), nil
}
