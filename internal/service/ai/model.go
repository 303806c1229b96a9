package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"travelgo/internal/config"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"
)

// ErrConfiguration marks provider setup problems: unknown provider name or
// a missing API key. Callers surface it as a server-side error; no retry.
var ErrConfiguration = errors.New("model configuration error")

const (
	groqBaseURL      = "https://api.groq.com/openai/v1"
	claudeMaxTokens  = 4000
	defaultGroqModel = "llama-3.3-70b-versatile"
)

var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"groq":   "GROQ_API_KEY",
	"claude": "ANTHROPIC_API_KEY",
	"gemini": "GOOGLE_API_KEY",
}

// LoadModel constructs a chat-completion client for the requested provider.
// No network call is made here; a bad key fails on first Generate.
func LoadModel(ctx context.Context, cfg *config.Config, provider, modelName string) (model.ToolCallingChatModel, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		provider = cfg.BasicConfig.DefaultProvider
	}

	envName, known := providerKeyEnv[provider]
	if !known {
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfiguration, provider)
	}

	provCfg := cfg.Provider(provider)
	apiKey := provCfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv(envName)
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfiguration, envName)
	}
	if modelName == "" {
		modelName = provCfg.Model
	}

	temperature := provCfg.Temperature
	if temperature < 0 {
		temperature = 0
	}
	if temperature > 1 {
		temperature = 1
	}

	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch provider {
	case "openai":
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     provCfg.BaseURL,
			Model:       modelName,
			APIKey:      apiKey,
			Temperature: &temperature,
			MaxTokens:   maxTokensPtr(provCfg.MaxTokens),
		})
	case "groq":
		// Groq exposes an OpenAI-compatible endpoint.
		baseURL := provCfg.BaseURL
		if baseURL == "" {
			baseURL = groqBaseURL
		}
		if modelName == "" {
			modelName = defaultGroqModel
		}
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:     baseURL,
			Model:       modelName,
			APIKey:      apiKey,
			Temperature: &temperature,
			MaxTokens:   maxTokensPtr(provCfg.MaxTokens),
		})
	case "claude":
		var baseURLPtr *string
		if provCfg.BaseURL != "" {
			baseURLPtr = &provCfg.BaseURL
		}
		maxTokens := provCfg.MaxTokens
		if maxTokens <= 0 {
			maxTokens = claudeMaxTokens
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:      apiKey,
			Model:       modelName,
			BaseURL:     baseURLPtr,
			MaxTokens:   maxTokens,
			Temperature: &temperature,
		})
	case "gemini":
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			return nil, fmt.Errorf("create gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  modelName,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", provider, err)
	}
	return chatModel, nil
}

func maxTokensPtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}
