package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared/constant"
	"github.com/rs/zerolog"
)

const (
	DefaultModel   = "gpt-4o-mini"
	defaultTimeout = 120 * time.Second
)

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxTokens  int
	HTTPClient *http.Client
	Log        *zerolog.Logger
}

type Client struct {
	Model     string
	MaxTokens int

	api openai.Client
	log zerolog.Logger
}

type Message struct {
	Role       string
	Content    string
	ToolCallID string
	ToolCalls  []ToolCall
}

type ToolDefinition struct {
	Type     string
	Function ToolFunctionDefinition
}

type ToolFunctionDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

type ChatResult struct {
	Content      string
	ToolCalls    []ToolCall
	FinishReason string
}

func (r ChatResult) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Message returns the assistant turn to append before tool results.
func (r ChatResult) Message() Message {
	return Message{Role: "assistant", Content: r.Content, ToolCalls: r.ToolCalls}
}

func New(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(opts.BaseURL) != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	log := zerolog.Nop()
	if opts.Log != nil {
		log = opts.Log.With().Str("component", "llm").Str("model", model).Logger()
	}
	return &Client{
		Model:     model,
		MaxTokens: opts.MaxTokens,
		api:       openai.NewClient(reqOpts...),
		log:       log,
	}
}

func (c *Client) Chat(ctx context.Context, messages []Message, tools []ToolDefinition) (*ChatResult, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages")
	}
	req := openai.ChatCompletionNewParams{
		Model:    c.Model,
		Messages: toChatMessages(messages),
	}
	if c.MaxTokens > 0 {
		req.MaxCompletionTokens = openai.Int(int64(c.MaxTokens))
	}
	if len(tools) > 0 {
		req.Tools = toChatTools(tools)
	}

	c.log.Debug().Int("messages", len(messages)).Int("tools", len(tools)).Msg("chat completion")
	resp, err := c.api.Chat.Completions.New(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}
	choice := resp.Choices[0]
	out := &ChatResult{
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
	}
	for _, call := range choice.Message.ToolCalls {
		args := strings.TrimSpace(call.Function.Arguments)
		if args == "" {
			args = "{}"
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: json.RawMessage(args),
		})
	}
	return out, nil
}

// StatusCode reports the HTTP status of an API error, or 0 when err did not
// come from an API response.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func toChatMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "user":
			out = append(out, openai.UserMessage(m.Content))
		case "assistant":
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			am := openai.ChatCompletionAssistantMessageParam{}
			if m.Content != "" {
				am.Content.OfString = openai.String(m.Content)
			}
			for _, tc := range m.ToolCalls {
				am.ToolCalls = append(am.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(tc.Arguments),
						},
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: &am})
		case "tool":
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func toChatTools(tools []ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(tools))
	for _, t := range tools {
		fn := openai.FunctionDefinitionParam{
			Name:       t.Function.Name,
			Parameters: openai.FunctionParameters(t.Function.Parameters),
		}
		if t.Function.Description != "" {
			fn.Description = openai.String(t.Function.Description)
		}
		out = append(out, openai.ChatCompletionToolUnionParam{
			OfFunction: &openai.ChatCompletionFunctionToolParam{
				Function: fn,
				Type:     constant.ValueOf[constant.Function](),
			},
		})
	}
	return out
}
