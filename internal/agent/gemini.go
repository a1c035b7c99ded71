package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lushmoments/lush-chat/internal/config"
	"github.com/lushmoments/lush-chat/internal/domain"
	"google.golang.org/genai"
)

// GeminiProcessor generates replies with the Gemini API, resolving function
// calls against the local tool router until the model produces text.
type GeminiProcessor struct {
	client *genai.Client
	tools  *ToolRouter
	cfg    config.AgentConfig
	logger *slog.Logger
}

// NewGeminiProcessor creates a processor backed by the Gemini API.
func NewGeminiProcessor(ctx context.Context, cfg config.AgentConfig, tools *ToolRouter, logger *slog.Logger) (*GeminiProcessor, error) {
	if cfg.GoogleAPIKey == "" {
		return nil, fmt.Errorf("google api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.GoogleAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiProcessor{
		client: client,
		tools:  tools,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Chat runs one conversational turn: history plus the new message go to the
// model, function calls are resolved locally, and the loop repeats until the
// model answers in text or the round budget runs out.
//
// A lookup failure ends the turn with ToolFailureReply and a nil error so the
// caller does not retry; a model API failure is returned as an error so the
// caller may retry with the same input.
func (p *GeminiProcessor) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	contents := historyToContents(req.History)
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Tools: []*genai.Tool{
			{FunctionDeclarations: p.tools.Declarations()},
		},
		Temperature:     genai.Ptr[float32](0.7),
		MaxOutputTokens: 2048,
	}

	var toolsUsed []string
	for round := 0; round <= p.cfg.MaxToolRounds; round++ {
		resp, err := p.generate(ctx, contents, genCfg)
		if err != nil {
			return nil, fmt.Errorf("generate content: %w", err)
		}

		calls := resp.FunctionCalls()
		if len(calls) == 0 {
			text := strings.TrimSpace(resp.Text())
			if text == "" {
				return nil, fmt.Errorf("model returned an empty reply")
			}
			return &ChatResponse{Response: text, ToolsUsed: toolsUsed}, nil
		}

		// Echo the model's function-call turn back, then answer each call.
		if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
			contents = append(contents, resp.Candidates[0].Content)
		}

		var parts []*genai.Part
		for _, call := range calls {
			result, err := p.dispatch(ctx, call)
			if err != nil {
				p.logger.Warn("tool call failed",
					"session_id", req.SessionID,
					"tool", call.Name,
					"error", err)
				return &ChatResponse{Response: ToolFailureReply, ToolsUsed: toolsUsed}, nil
			}
			toolsUsed = append(toolsUsed, call.Name)
			parts = append(parts, genai.NewPartFromFunctionResponse(call.Name, map[string]any{
				"result": result,
			}))
		}
		contents = append(contents, genai.NewContentFromParts(parts, genai.RoleUser))
	}

	p.logger.Warn("tool round budget exhausted", "session_id", req.SessionID, "rounds", p.cfg.MaxToolRounds)
	return &ChatResponse{Response: ToolFailureReply, ToolsUsed: toolsUsed}, nil
}

func (p *GeminiProcessor) generate(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.ModelTimeout)
	defer cancel()
	return p.client.Models.GenerateContent(callCtx, p.cfg.Model, contents, cfg)
}

func (p *GeminiProcessor) dispatch(ctx context.Context, call *genai.FunctionCall) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.ToolTimeout)
	defer cancel()
	return p.tools.Dispatch(callCtx, call.Name, call.Args)
}

// historyToContents maps the stored message window onto model roles. Visitor
// messages become user turns; agent and staff messages become model turns so
// the assistant sees them as its own side of the conversation.
func historyToContents(history []*domain.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		var role genai.Role = genai.RoleModel
		if msg.Sender == domain.SenderVisitor {
			role = genai.RoleUser
		}
		contents = append(contents, genai.NewContentFromText(msg.Message, role))
	}
	return contents
}

// Close releases resources held by the processor. The genai client keeps no
// connection state that needs explicit teardown; kept for Processor symmetry.
func (p *GeminiProcessor) Close() {}
