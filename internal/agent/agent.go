package agent

import (
	"context"
	"errors"
	"fmt"

	"travelgo/internal/metrics"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrStepLimit is returned when the model keeps requesting tools past the
// configured bound and never produced any assistant text to fall back on.
var ErrStepLimit = errors.New("agent: step limit reached without a final answer")

const DefaultMaxSteps = 12

// Config tunes one Planner instance.
type Config struct {
	SystemPrompt string
	MaxSteps     int
	Logger       *zap.Logger
}

// Planner runs the tool-calling loop: the model either answers or emits
// tool calls, which are executed sequentially and appended to the
// conversation before the next model call. The conversation lives only for
// the duration of one Run.
type Planner struct {
	model        model.ToolCallingChatModel
	tools        map[string]tool.InvokableTool
	systemPrompt string
	maxSteps     int
	logger       *zap.Logger
}

// New binds the tool set to the chat model and prepares the dispatch table.
func New(ctx context.Context, chatModel model.ToolCallingChatModel, tools []tool.BaseTool, cfg Config) (*Planner, error) {
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxSteps := cfg.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	dispatch := make(map[string]tool.InvokableTool, len(tools))
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		invokable, ok := t.(tool.InvokableTool)
		if !ok {
			logger.Warn("skipping non-invokable tool", zap.String("tool", info.Name))
			continue
		}
		dispatch[info.Name] = invokable
		infos = append(infos, info)
	}

	bound := chatModel
	if len(infos) > 0 {
		var err error
		bound, err = chatModel.WithTools(infos)
		if err != nil {
			return nil, fmt.Errorf("bind tools: %w", err)
		}
	}

	return &Planner{
		model:        bound,
		tools:        dispatch,
		systemPrompt: cfg.SystemPrompt,
		maxSteps:     maxSteps,
		logger:       logger,
	}, nil
}

// Run answers one question. Model errors abort the run; tool problems never
// do, they come back as tool-result text the model can reason about.
func (p *Planner) Run(ctx context.Context, question string) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(p.systemPrompt),
		schema.UserMessage(question),
	}

	var lastText string
	for step := 1; step <= p.maxSteps; step++ {
		resp, err := p.model.Generate(ctx, messages)
		if err != nil {
			return "", fmt.Errorf("model call (step %d): %w", step, err)
		}

		if len(resp.ToolCalls) == 0 {
			metrics.AgentSteps.Observe(float64(step))
			return resp.Content, nil
		}
		if resp.Content != "" {
			lastText = resp.Content
		}

		// Some providers omit call IDs; synthesize them before the
		// assistant message goes on the transcript so results can refer back.
		for i := range resp.ToolCalls {
			if resp.ToolCalls[i].ID == "" {
				resp.ToolCalls[i].ID = uuid.NewString()
			}
		}
		messages = append(messages, resp)

		for _, call := range resp.ToolCalls {
			messages = append(messages, p.execute(ctx, call))
		}
	}

	metrics.AgentSteps.Observe(float64(p.maxSteps))
	if lastText != "" {
		p.logger.Warn("step limit reached, returning best-effort answer",
			zap.Int("max_steps", p.maxSteps))
		return lastText, nil
	}
	return "", ErrStepLimit
}

// execute dispatches a single tool call by exact name match. Unknown names
// and tool errors produce tool-result text so the loop keeps going.
func (p *Planner) execute(ctx context.Context, call schema.ToolCall) *schema.Message {
	name := call.Function.Name
	t, ok := p.tools[name]
	if !ok {
		p.logger.Warn("model requested unknown tool", zap.String("tool", name))
		return schema.ToolMessage(fmt.Sprintf("tool not found: %s", name), call.ID, schema.WithToolName(name))
	}

	result, err := t.InvokableRun(ctx, call.Function.Arguments)
	if err != nil {
		p.logger.Warn("tool invocation failed",
			zap.String("tool", name), zap.Error(err))
		result = fmt.Sprintf("tool %s failed: %v", name, err)
	}
	return schema.ToolMessage(result, call.ID, schema.WithToolName(name))
}
