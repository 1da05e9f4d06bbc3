package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/mosaxiv/braveagent/llm"
	"github.com/mosaxiv/braveagent/session"
	"github.com/mosaxiv/braveagent/tools"
)

type scriptedLLM struct {
	results []*llm.ChatResult
	err     error
	calls   [][]llm.Message
}

func (s *scriptedLLM) Chat(_ context.Context, messages []llm.Message, _ []llm.ToolDefinition) (*llm.ChatResult, error) {
	s.calls = append(s.calls, append([]llm.Message(nil), messages...))
	if s.err != nil {
		return nil, s.err
	}
	if len(s.results) == 0 {
		return &llm.ChatResult{Content: "fallback"}, nil
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r, nil
}

type recordingTools struct {
	executed []string
	fail     map[string]error
	output   map[string]string
}

func (r *recordingTools) Definitions() []llm.ToolDefinition {
	return []llm.ToolDefinition{{Type: "function", Function: llm.ToolFunctionDefinition{Name: tools.ToolSearchWeb}}}
}

func (r *recordingTools) Execute(_ context.Context, name string, args json.RawMessage) (string, error) {
	r.executed = append(r.executed, name+" "+string(args))
	if err := r.fail[name]; err != nil {
		return "", err
	}
	if out, ok := r.output[name]; ok {
		return out, nil
	}
	return "result for " + name, nil
}

func TestRespond_DirectAnswer(t *testing.T) {
	model := &scriptedLLM{results: []*llm.ChatResult{{Content: "Hello there."}}}
	a, err := New(Options{LLM: model, Tools: &recordingTools{}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	sess := session.New("cli:test")

	reply, err := a.Respond(context.Background(), "hi", sess)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if reply != "Hello there." {
		t.Fatalf("reply=%q", reply)
	}
	if sess.Len() != 2 {
		t.Fatalf("session len=%d", sess.Len())
	}
	first := model.calls[0]
	if first[0].Role != "system" || first[0].Content != DefaultSystemPrompt {
		t.Fatalf("first message=%+v", first[0])
	}
	if last := first[len(first)-1]; last.Role != "user" || last.Content != "hi" {
		t.Fatalf("last message=%+v", last)
	}
}

func TestRespond_RunsToolsSequentially(t *testing.T) {
	model := &scriptedLLM{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{
			{ID: "c1", Name: tools.ToolSearchWeb, Arguments: json.RawMessage(`{"query":"go"}`)},
			{ID: "c2", Name: tools.ToolGetPageContent, Arguments: json.RawMessage(`{"url":"https://go.dev"}`)},
		}},
		{Content: "Go is a language. Source: https://go.dev"},
	}}
	ts := &recordingTools{}
	a, _ := New(Options{LLM: model, Tools: ts})
	sess := session.New("cli:test")

	reply, err := a.Respond(context.Background(), "what is go", sess)
	if err != nil {
		t.Fatalf("respond: %v", err)
	}
	if !strings.Contains(reply, "go.dev") {
		t.Fatalf("reply=%q", reply)
	}
	want := []string{`search_web {"query":"go"}`, `get_page_content {"url":"https://go.dev"}`}
	if strings.Join(ts.executed, "|") != strings.Join(want, "|") {
		t.Fatalf("executed=%v", ts.executed)
	}

	second := model.calls[1]
	n := len(second)
	if second[n-3].Role != "assistant" || len(second[n-3].ToolCalls) != 2 {
		t.Fatalf("assistant turn=%+v", second[n-3])
	}
	if second[n-2].Role != "tool" || second[n-2].ToolCallID != "c1" || second[n-1].ToolCallID != "c2" {
		t.Fatalf("tool turns=%+v %+v", second[n-2], second[n-1])
	}
	if got := sess.Messages[1].ToolsUsed; len(got) != 2 {
		t.Fatalf("tools used=%v", got)
	}
}

func TestRespond_ToolErrorIsFedBackToModel(t *testing.T) {
	model := &scriptedLLM{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tools.ToolSearchWeb, Arguments: json.RawMessage(`{}`)}}},
		{Content: "Search failed, sorry."},
	}}
	ts := &recordingTools{fail: map[string]error{tools.ToolSearchWeb: &tools.UpstreamError{Service: "brave", StatusCode: 429}}}
	a, _ := New(Options{LLM: model, Tools: ts})

	if _, err := a.Respond(context.Background(), "q", session.New("cli:test")); err != nil {
		t.Fatalf("respond: %v", err)
	}
	toolMsg := model.calls[1][len(model.calls[1])-1]
	if !strings.HasPrefix(toolMsg.Content, "Error: brave http 429") {
		t.Fatalf("tool message=%q", toolMsg.Content)
	}
}

func TestRespond_MultibyteToolOutputKeepsRunes(t *testing.T) {
	page := strings.Repeat("中", 20000)
	model := &scriptedLLM{results: []*llm.ChatResult{
		{ToolCalls: []llm.ToolCall{{ID: "c1", Name: tools.ToolGetPageContent, Arguments: json.RawMessage(`{"url":"https://example.cn"}`)}}},
		{Content: "done"},
	}}
	ts := &recordingTools{output: map[string]string{tools.ToolGetPageContent: page}}
	a, _ := New(Options{LLM: model, Tools: ts})

	if _, err := a.Respond(context.Background(), "read it", nil); err != nil {
		t.Fatalf("respond: %v", err)
	}
	got := model.calls[1][len(model.calls[1])-1].Content
	if got != page {
		t.Fatalf("tool output changed: runes=%d valid=%v", utf8.RuneCountInString(got), utf8.ValidString(got))
	}
}

func TestTruncateRunes(t *testing.T) {
	long := strings.Repeat("中", 10)
	got := truncateRunes(long, 4)
	if got != "中中中中\n(truncated)" || !utf8.ValidString(got) {
		t.Fatalf("truncateRunes=%q", got)
	}
	if truncateRunes(long, 10) != long {
		t.Fatalf("exact length should not be cut")
	}
}

func TestRespond_ModelFailureIsUpstreamError(t *testing.T) {
	model := &scriptedLLM{err: errors.New("connection refused")}
	a, _ := New(Options{LLM: model})
	sess := session.New("cli:test")
	sess.Add("user", "earlier")
	sess.Add("assistant", "reply")

	_, err := a.Respond(context.Background(), "hi", sess)
	if !tools.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if sess.Len() != 2 {
		t.Fatalf("session changed on failure: len=%d", sess.Len())
	}
}

func TestRespond_StopsAfterMaxIters(t *testing.T) {
	loop := &llm.ChatResult{ToolCalls: []llm.ToolCall{{ID: "c", Name: tools.ToolSearchWeb, Arguments: json.RawMessage(`{"query":"x"}`)}}}
	model := &scriptedLLM{results: []*llm.ChatResult{loop, loop, loop, loop}}
	a, _ := New(Options{LLM: model, Tools: &recordingTools{}, MaxIters: 3})

	_, err := a.Respond(context.Background(), "q", nil)
	if err == nil || !strings.Contains(err.Error(), "3 tool iterations") {
		t.Fatalf("err=%v", err)
	}
	if len(model.calls) != 3 {
		t.Fatalf("calls=%d", len(model.calls))
	}
}

func TestRespond_IncludesHistory(t *testing.T) {
	model := &scriptedLLM{results: []*llm.ChatResult{{Content: "ok"}}}
	a, _ := New(Options{LLM: model, SystemPrompt: "custom"})
	sess := session.New("cli:test")
	sess.Add("user", "first")
	sess.Add("assistant", "first reply")

	if _, err := a.Respond(context.Background(), "second", sess); err != nil {
		t.Fatalf("respond: %v", err)
	}
	msgs := model.calls[0]
	if len(msgs) != 4 {
		t.Fatalf("messages=%d", len(msgs))
	}
	if msgs[0].Content != "custom" || msgs[1].Content != "first" || msgs[2].Content != "first reply" {
		t.Fatalf("messages=%+v", msgs)
	}
}

func TestRespond_EmptyInput(t *testing.T) {
	a, _ := New(Options{LLM: &scriptedLLM{}})
	if _, err := a.Respond(context.Background(), "   ", nil); !tools.IsInvalidArgument(err) {
		t.Fatalf("err=%v", err)
	}
}

func TestNew_RequiresLLM(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
