package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mosaxiv/braveagent/llm"
	"github.com/mosaxiv/braveagent/session"
	"github.com/mosaxiv/braveagent/tools"
	"github.com/rs/zerolog"
)

const (
	defaultMaxIters      = 10
	defaultHistoryWindow = 50
	toolResultMaxRunes   = 32 << 10
)

type Chatter interface {
	Chat(ctx context.Context, messages []llm.Message, tools []llm.ToolDefinition) (*llm.ChatResult, error)
}

type ToolSet interface {
	Definitions() []llm.ToolDefinition
	Execute(ctx context.Context, name string, args json.RawMessage) (string, error)
}

type Options struct {
	LLM           Chatter
	Tools         ToolSet
	SystemPrompt  string
	MaxIters      int
	HistoryWindow int
	Log           *zerolog.Logger
}

// Agent lets the model pick between the registered tools and a direct
// answer. Tool calls within a turn run one at a time, in the order the model
// asked for them.
type Agent struct {
	llm           Chatter
	tools         ToolSet
	systemPrompt  string
	maxIters      int
	historyWindow int
	log           zerolog.Logger
}

func New(opts Options) (*Agent, error) {
	if opts.LLM == nil {
		return nil, errors.New("agent: llm client is nil")
	}
	a := &Agent{
		llm:           opts.LLM,
		tools:         opts.Tools,
		systemPrompt:  opts.SystemPrompt,
		maxIters:      opts.MaxIters,
		historyWindow: opts.HistoryWindow,
		log:           zerolog.Nop(),
	}
	if strings.TrimSpace(a.systemPrompt) == "" {
		a.systemPrompt = DefaultSystemPrompt
	}
	if a.maxIters <= 0 {
		a.maxIters = defaultMaxIters
	}
	if a.historyWindow <= 0 {
		a.historyWindow = defaultHistoryWindow
	}
	if opts.Log != nil {
		a.log = opts.Log.With().Str("component", "agent").Logger()
	}
	return a, nil
}

// Respond runs one user turn. The session is only updated when the turn
// produced a reply.
func (a *Agent) Respond(ctx context.Context, userText string, sess *session.Session) (string, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return "", fmt.Errorf("%w: message is empty", tools.ErrInvalidArgument)
	}

	messages := a.buildMessages(userText, sess)
	var defs []llm.ToolDefinition
	if a.tools != nil {
		defs = a.tools.Definitions()
	}

	var used []string
	for iter := 0; iter < a.maxIters; iter++ {
		res, err := a.llm.Chat(ctx, messages, defs)
		if err != nil {
			a.log.Error().Err(err).Int("iteration", iter).Msg("model call failed")
			return "", &tools.UpstreamError{Service: "openai", StatusCode: llm.StatusCode(err), Err: err}
		}
		if !res.HasToolCalls() {
			reply := strings.TrimSpace(res.Content)
			if reply == "" {
				reply = "(no response)"
			}
			if sess != nil {
				sess.Add("user", userText)
				sess.AddWithTools("assistant", reply, used)
			}
			return reply, nil
		}

		messages = append(messages, res.Message())
		for _, call := range res.ToolCalls {
			used = append(used, call.Name)
			out := a.runTool(ctx, call)
			messages = append(messages, llm.Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    out,
			})
		}
	}
	return "", fmt.Errorf("no final answer after %d tool iterations", a.maxIters)
}

func (a *Agent) runTool(ctx context.Context, call llm.ToolCall) string {
	if a.tools == nil {
		return "Error: no tools available"
	}
	a.log.Debug().Str("tool", call.Name).RawJSON("args", jsonOrString(call.Arguments)).Msg("tool call")
	out, err := a.tools.Execute(ctx, call.Name, call.Arguments)
	if err != nil {
		a.log.Warn().Err(err).Str("tool", call.Name).Msg("tool failed")
		return "Error: " + err.Error()
	}
	return truncateRunes(out, toolResultMaxRunes)
}

// truncateRunes caps s at max runes so multibyte text is never split.
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i] + "\n(truncated)"
		}
		n++
	}
	return s
}

func (a *Agent) buildMessages(userText string, sess *session.Session) []llm.Message {
	messages := []llm.Message{{Role: "system", Content: a.systemPrompt}}
	if sess != nil {
		for _, m := range sess.History(a.historyWindow) {
			messages = append(messages, llm.Message{Role: m.Role, Content: m.Content})
		}
	}
	return append(messages, llm.Message{Role: "user", Content: userText})
}

func jsonOrString(raw json.RawMessage) []byte {
	if json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(string(raw))
	return b
}
