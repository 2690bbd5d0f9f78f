// Package gemini adapts the Gemini generateContent REST API to the eino
// ChatModel interface.
package gemini

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hirex-ai/hirex/backend/internal/model/chat"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-pro"

	roleUser  = "user"
	roleModel = "model"
)

// ErrEmptyResponse is returned when the API answers without any candidate text.
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// Config describes a Gemini chat model.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float32
	TopP        *float32
	MaxTokens   *int
	HTTPClient  *http.Client
}

// ChatModel implements model.ChatModel over the Gemini REST API.
type ChatModel struct {
	apiKey      string
	model       string
	baseURL     string
	temperature *float32
	topP        *float32
	maxTokens   *int
	client      *http.Client
}

var _ model.ChatModel = (*ChatModel)(nil)

// NewChatModel builds a ChatModel. The API key is not checked here; a missing or
// invalid key surfaces as an *APIError on the first request.
func NewChatModel(_ context.Context, cfg *Config) (*ChatModel, error) {
	if cfg == nil {
		return nil, errors.New("gemini config is required")
	}

	modelName := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")
	if modelName == "" {
		modelName = DefaultModel
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &ChatModel{
		apiKey:      cfg.APIKey,
		model:       modelName,
		baseURL:     baseURL,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
		client:      client,
	}, nil
}

// Generate sends the conversation and returns the first candidate as an
// assistant message.
func (m *ChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	options := m.options(opts...)

	resp, err := m.do(ctx, "generateContent", nil, input, options)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}

	msg, ok := toMessage(&result)
	if !ok {
		return nil, emptyResponseError(&result)
	}
	return msg, nil
}

// emptyResponseError explains why a response carried no text: a blocked
// prompt, or a candidate stopped early (SAFETY, RECITATION, ...).
func emptyResponseError(resp *generateResponse) error {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return fmt.Errorf("%w: prompt blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		return fmt.Errorf("%w: finish reason %s", ErrEmptyResponse, resp.Candidates[0].FinishReason)
	}
	return ErrEmptyResponse
}

// Stream sends the conversation to streamGenerateContent and relays each SSE
// chunk as an assistant message fragment.
func (m *ChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	options := m.options(opts...)

	resp, err := m.do(ctx, "streamGenerateContent", url.Values{"alt": {"sse"}}, input, options)
	if err != nil {
		return nil, err
	}

	sr, sw := schema.Pipe[*schema.Message](8)
	go func() {
		defer resp.Body.Close()
		defer sw.Close()

		var (
			sent bool
			last generateResponse
		)
		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "" {
				continue
			}

			var chunk generateResponse
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				sw.Send(nil, fmt.Errorf("error parsing stream chunk: %w", err))
				return
			}
			last = chunk
			msg, ok := toMessage(&chunk)
			if !ok {
				continue
			}
			sent = true
			if closed := sw.Send(msg, nil); closed {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			sw.Send(nil, fmt.Errorf("error reading stream: %w", err))
			return
		}
		if !sent {
			sw.Send(nil, emptyResponseError(&last))
		}
	}()

	return sr, nil
}

// BindTools is not supported; the assistant only exchanges text.
func (m *ChatModel) BindTools(tools []*schema.ToolInfo) error {
	if len(tools) == 0 {
		return nil
	}
	return errors.New("gemini chat model does not support tools")
}

func (m *ChatModel) options(opts ...model.Option) *model.Options {
	modelName := m.model
	return model.GetCommonOptions(&model.Options{
		Model:       &modelName,
		Temperature: m.temperature,
		TopP:        m.topP,
		MaxTokens:   m.maxTokens,
	}, opts...)
}

func (m *ChatModel) do(ctx context.Context, method string, query url.Values, input []*schema.Message, options *model.Options) (*http.Response, error) {
	reqBody := buildRequest(input, options)

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	modelName := m.model
	if options.Model != nil && *options.Model != "" {
		modelName = strings.TrimPrefix(*options.Model, "models/")
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("key", m.apiKey)
	endpoint := fmt.Sprintf("%s/models/%s:%s?%s", m.baseURL, url.PathEscape(modelName), method, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		envelope.Error.HTTPStatus = resp.StatusCode
		return envelope.Error
	}

	return &APIError{
		HTTPStatus: resp.StatusCode,
		Code:       resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}
}

func buildRequest(input []*schema.Message, options *model.Options) generateRequest {
	req := generateRequest{Contents: make([]content, 0, len(input))}

	var system []part
	for _, msg := range input {
		if msg == nil {
			continue
		}
		switch msg.Role {
		case schema.System:
			if strings.TrimSpace(msg.Content) != "" {
				system = append(system, part{Text: msg.Content})
			}
		case schema.Assistant:
			req.Contents = append(req.Contents, content{Role: roleModel, Parts: []part{{Text: msg.Content}}})
		default:
			req.Contents = append(req.Contents, content{Role: roleUser, Parts: []part{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		req.SystemInstruction = &content{Parts: system}
	}

	if options.Temperature != nil || options.TopP != nil || options.MaxTokens != nil || len(options.Stop) > 0 {
		req.GenerationConfig = &generationConfig{
			Temperature:     options.Temperature,
			TopP:            options.TopP,
			MaxOutputTokens: options.MaxTokens,
			StopSequences:   options.Stop,
		}
	}
	return req
}

// toMessage converts the first candidate into an eino message, translating the
// "model" role into the assistant label. A candidate without text reports false.
func toMessage(resp *generateResponse) (*schema.Message, bool) {
	if len(resp.Candidates) == 0 {
		return nil, false
	}

	cand := resp.Candidates[0]
	var text strings.Builder
	for _, p := range cand.Content.Parts {
		text.WriteString(p.Text)
	}
	if text.Len() == 0 {
		return nil, false
	}

	role := chat.TranslateRole(cand.Content.Role)
	if role == "" {
		role = string(chat.Assistant)
	}

	msg := &schema.Message{
		Role:    schema.RoleType(role),
		Content: text.String(),
	}
	if cand.FinishReason != "" || resp.UsageMetadata != nil {
		msg.ResponseMeta = &schema.ResponseMeta{FinishReason: cand.FinishReason}
		if resp.UsageMetadata != nil {
			msg.ResponseMeta.Usage = &schema.TokenUsage{
				PromptTokens:     resp.UsageMetadata.PromptTokenCount,
				CompletionTokens: resp.UsageMetadata.CandidatesTokenCount,
				TotalTokens:      resp.UsageMetadata.TotalTokenCount,
			}
		}
	}
	return msg, true
}
