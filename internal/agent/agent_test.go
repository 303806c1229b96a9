package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
)

// scriptedModel replays a fixed sequence of responses and records every
// conversation it was handed.
type scriptedModel struct {
	responses []*schema.Message
	calls     int
	seen      [][]*schema.Message
	boundWith []*schema.ToolInfo
	err       error
}

func (m *scriptedModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.seen = append(m.seen, messages)
	idx := m.calls
	m.calls++
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx], nil
}

func (m *scriptedModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (m *scriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	m.boundWith = tools
	return m, nil
}

type stubTool struct {
	name     string
	result   string
	err      error
	calls    int
	lastArgs string
}

func (s *stubTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: s.name,
		Desc: "stub",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {Type: schema.String},
		}),
	}, nil
}

func (s *stubTool) InvokableRun(ctx context.Context, args string, opts ...tool.Option) (string, error) {
	s.calls++
	s.lastArgs = args
	return s.result, s.err
}

func toolCallResponse(calls ...schema.ToolCall) *schema.Message {
	return &schema.Message{Role: schema.Assistant, ToolCalls: calls}
}

func finalResponse(text string) *schema.Message {
	return &schema.Message{Role: schema.Assistant, Content: text}
}

func TestRunReturnsImmediateAnswer(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{finalResponse("Day 1: Colosseum...")}}
	p, err := New(context.Background(), m, nil, Config{SystemPrompt: "persona"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	answer, err := p.Run(context.Background(), "Plan a 3-day trip to Rome")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if answer != "Day 1: Colosseum..." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if m.calls != 1 {
		t.Fatalf("expected one model call, got %d", m.calls)
	}
	first := m.seen[0]
	if len(first) != 2 || first[0].Role != schema.System || first[1].Role != schema.User {
		t.Fatalf("conversation not seeded correctly: %+v", first)
	}
}

func TestRunDispatchesToolCallsInOrder(t *testing.T) {
	weather := &stubTool{name: "weather_search", result: "sunny, 24C"}
	places := &stubTool{name: "place_search", result: "Colosseum, Pantheon"}
	m := &scriptedModel{responses: []*schema.Message{
		toolCallResponse(
			schema.ToolCall{ID: "call-1", Function: schema.FunctionCall{Name: "weather_search", Arguments: `{"location":"Rome"}`}},
			schema.ToolCall{ID: "call-2", Function: schema.FunctionCall{Name: "place_search", Arguments: `{"query":"attractions in Rome"}`}},
		),
		finalResponse("Here is your plan."),
	}}

	p, err := New(context.Background(), m, []tool.BaseTool{weather, places}, Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(m.boundWith) != 2 {
		t.Fatalf("expected both tools bound, got %d", len(m.boundWith))
	}

	answer, err := p.Run(context.Background(), "Plan a trip to Rome")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if answer != "Here is your plan." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if weather.calls != 1 || places.calls != 1 {
		t.Fatalf("tool call counts: weather %d places %d", weather.calls, places.calls)
	}
	if weather.lastArgs != `{"location":"Rome"}` {
		t.Fatalf("weather args: %q", weather.lastArgs)
	}

	// Second model call sees assistant tool request plus both results, in order.
	second := m.seen[1]
	if len(second) != 5 {
		t.Fatalf("expected 5 messages on second call, got %d", len(second))
	}
	if second[3].Role != schema.Tool || second[3].ToolCallID != "call-1" || second[3].Content != "sunny, 24C" {
		t.Fatalf("first tool result wrong: %+v", second[3])
	}
	if second[4].ToolCallID != "call-2" {
		t.Fatalf("second tool result wrong: %+v", second[4])
	}
}

func TestRunSynthesizesToolNotFound(t *testing.T) {
	m := &scriptedModel{responses: []*schema.Message{
		toolCallResponse(schema.ToolCall{ID: "call-1", Function: schema.FunctionCall{Name: "teleport", Arguments: `{}`}}),
		finalResponse("Managed without teleporting."),
	}}

	p, err := New(context.Background(), m, nil, Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	answer, err := p.Run(context.Background(), "Plan a trip")
	if err != nil {
		t.Fatalf("run must survive unknown tools: %v", err)
	}
	if answer != "Managed without teleporting." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	second := m.seen[1]
	last := second[len(second)-1]
	if last.Role != schema.Tool || !strings.Contains(last.Content, "tool not found: teleport") {
		t.Fatalf("missing tool-not-found result: %+v", last)
	}
}

func TestRunFoldsToolErrorIntoConversation(t *testing.T) {
	broken := &stubTool{name: "weather_search", err: errors.New("bad params")}
	m := &scriptedModel{responses: []*schema.Message{
		toolCallResponse(schema.ToolCall{ID: "call-1", Function: schema.FunctionCall{Name: "weather_search", Arguments: `{}`}}),
		finalResponse("Planned without weather."),
	}}

	p, err := New(context.Background(), m, []tool.BaseTool{broken}, Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	answer, err := p.Run(context.Background(), "Plan a trip")
	if err != nil {
		t.Fatalf("tool error must not abort the run: %v", err)
	}
	if answer != "Planned without weather." {
		t.Fatalf("unexpected answer: %q", answer)
	}
	second := m.seen[1]
	last := second[len(second)-1]
	if !strings.Contains(last.Content, "weather_search failed") {
		t.Fatalf("tool error not folded into conversation: %+v", last)
	}
}

func TestRunSynthesizesMissingToolCallIDs(t *testing.T) {
	echo := &stubTool{name: "weather_search", result: "ok"}
	m := &scriptedModel{responses: []*schema.Message{
		toolCallResponse(schema.ToolCall{Function: schema.FunctionCall{Name: "weather_search", Arguments: `{}`}}),
		finalResponse("done"),
	}}

	p, err := New(context.Background(), m, []tool.BaseTool{echo}, Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := p.Run(context.Background(), "q"); err != nil {
		t.Fatalf("run: %v", err)
	}
	second := m.seen[1]
	assistant, result := second[2], second[3]
	if len(assistant.ToolCalls) != 1 || assistant.ToolCalls[0].ID == "" {
		t.Fatalf("tool call id not synthesized: %+v", assistant.ToolCalls)
	}
	if result.ToolCallID != assistant.ToolCalls[0].ID {
		t.Fatalf("result id %q does not match call id %q", result.ToolCallID, assistant.ToolCalls[0].ID)
	}
}

func TestRunStopsAtStepLimit(t *testing.T) {
	loop := &stubTool{name: "weather_search", result: "still sunny"}
	m := &scriptedModel{responses: []*schema.Message{
		toolCallResponse(schema.ToolCall{ID: "c", Function: schema.FunctionCall{Name: "weather_search", Arguments: `{}`}}),
	}}

	p, err := New(context.Background(), m, []tool.BaseTool{loop}, Config{MaxSteps: 3})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = p.Run(context.Background(), "forever")
	if !errors.Is(err, ErrStepLimit) {
		t.Fatalf("expected ErrStepLimit, got %v", err)
	}
	if m.calls != 3 {
		t.Fatalf("expected exactly 3 model calls, got %d", m.calls)
	}
}

func TestRunReturnsBestEffortTextAtStepLimit(t *testing.T) {
	loop := &stubTool{name: "weather_search", result: "data"}
	withText := toolCallResponse(schema.ToolCall{ID: "c", Function: schema.FunctionCall{Name: "weather_search", Arguments: `{}`}})
	withText.Content = "Partial plan so far..."
	m := &scriptedModel{responses: []*schema.Message{withText}}

	p, err := New(context.Background(), m, []tool.BaseTool{loop}, Config{MaxSteps: 2})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	answer, err := p.Run(context.Background(), "forever")
	if err != nil {
		t.Fatalf("expected best-effort answer, got %v", err)
	}
	if answer != "Partial plan so far..." {
		t.Fatalf("unexpected best-effort answer: %q", answer)
	}
}

func TestRunAbortsOnModelError(t *testing.T) {
	m := &scriptedModel{err: errors.New("auth failure")}
	p, err := New(context.Background(), m, nil, Config{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := p.Run(context.Background(), "q"); err == nil {
		t.Fatalf("expected model error to abort the run")
	}
}
