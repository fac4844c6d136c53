// Package provider holds the model provider registry: an explicitly
// constructed mapping from model identifier to a stateless generate
// capability. The registry is dependency-injected into the chat layer, so
// the pipeline stays testable without live network credentials.
package provider

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	einoschema "github.com/cloudwego/eino/schema"

	"docs-assistant/internal/logger"
	"docs-assistant/internal/types"
)

// Generator produces one model reply for a conversation.
type Generator interface {
	Generate(ctx context.Context, messages []types.ChatMessage) (string, error)
}

// Registry maps model identifiers to generators.
type Registry struct {
	generators map[string]Generator
	defaultID  string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{generators: make(map[string]Generator)}
}

// Register adds a generator under modelID. The first registration becomes
// the default model.
func (r *Registry) Register(modelID string, g Generator) {
	if r.defaultID == "" {
		r.defaultID = modelID
	}
	r.generators[modelID] = g
}

// Get returns the generator for modelID, or the default generator when
// modelID is empty.
func (r *Registry) Get(modelID string) (Generator, error) {
	if modelID == "" {
		modelID = r.defaultID
	}
	g, ok := r.generators[modelID]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig, "unknown model", modelID, nil)
	}
	return g, nil
}

// Models returns the registered model identifiers.
func (r *Registry) Models() []string {
	ids := make([]string, 0, len(r.generators))
	for id := range r.generators {
		ids = append(ids, id)
	}
	return ids
}

// ChatModelGenerator adapts an eino OpenAI-compatible chat model to the
// Generator interface.
type ChatModelGenerator struct {
	model     *openai.ChatModel
	modelName string
}

// NewChatModelGenerator creates a generator backed by an OpenAI-compatible
// chat completions endpoint.
func NewChatModelGenerator(ctx context.Context, apiKey, baseURL, modelName string) (*ChatModelGenerator, error) {
	cfg := &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: apiKey,
	}
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	chatModel, err := openai.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create chat model", err)
	}

	return &ChatModelGenerator{model: chatModel, modelName: modelName}, nil
}

// Generate implements Generator.
func (g *ChatModelGenerator) Generate(ctx context.Context, messages []types.ChatMessage) (string, error) {
	logger.Debug("calling chat model",
		logger.String("model", g.modelName),
		logger.Int("messageCount", len(messages)))

	in := make([]*einoschema.Message, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			in = append(in, einoschema.SystemMessage(m.Content))
		case "assistant":
			in = append(in, einoschema.AssistantMessage(m.Content, nil))
		default:
			in = append(in, einoschema.UserMessage(m.Content))
		}
	}

	resp, err := g.model.Generate(ctx, in)
	if err != nil {
		logger.Error("chat model call failed", err, logger.String("model", g.modelName))
		return "", types.NewAppError(types.ErrAPICall, "chat model call failed", err)
	}

	return resp.Content, nil
}
