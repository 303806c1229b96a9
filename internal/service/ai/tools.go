package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino-ext/components/tool/googlesearch"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

// InitToolsChain assembles every available tool adapter. Adapters whose
// provider keys are missing drop out individually; the chain never fails.
func InitToolsChain(deps *ToolDeps) []tool.BaseTool {
	var tools []tool.BaseTool

	if wt := InitWeatherTool(deps); wt != nil {
		tools = append(tools, wt)
	}
	if pt := InitPlaceTool(deps); pt != nil {
		tools = append(tools, pt)
	}
	if ct := InitCurrencyTool(deps); ct != nil {
		tools = append(tools, ct)
	}
	tools = append(tools, InitExpenseTool(deps))
	if ws := InitWebSearch(deps); ws != nil {
		tools = append(tools, ws)
	}
	return tools
}

// InitWebSearch builds the general web search adapter: Google Custom Search
// when configured, DuckDuckGo otherwise, Tavily as the last fallback.
func InitWebSearch(deps *ToolDeps) tool.InvokableTool {
	googleTool := initGoogleSearch(deps)
	duckTool := initDDGSearch(deps)
	tavily := newTavilyClient(os.Getenv("TAVILY_API_KEY"), deps.httpClient())
	if googleTool == nil && duckTool == nil && tavily == nil {
		deps.log().Warn("web search tool disabled: no search providers available")
		return nil
	}

	ws := &webSearchTool{
		deps:   deps,
		google: googleTool,
		duck:   duckTool,
		tavily: tavily,
	}

	info := &schema.ToolInfo{
		Name: "web_search",
		Desc: "Search the web for travel information not covered by the other tools; " +
			"automatically falls back to another provider if needed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "Natural language query",
				Type:     schema.String,
				Required: true,
			},
		}),
	}
	return utils.NewTool(info, ws.run)
}

type webSearchTool struct {
	deps   *ToolDeps
	google tool.InvokableTool
	duck   tool.InvokableTool
	tavily *tavilyClient
}

type webSearchParams struct {
	Query string `json:"query"`
}

func (w *webSearchTool) run(ctx context.Context, params *webSearchParams) (string, error) {
	if params == nil {
		return "", errors.New("missing search parameters")
	}
	query := strings.TrimSpace(params.Query)
	if query == "" {
		return "", errors.New("query must not be empty")
	}
	countToolCall("web_search")

	payloadBytes, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return "", fmt.Errorf("marshal search params: %w", err)
	}
	payload := string(payloadBytes)

	if w.google != nil {
		if result, err := w.google.InvokableRun(ctx, payload); err == nil {
			return result, nil
		} else {
			w.deps.log().Warn("google search failed", zap.Error(err))
		}
	}
	if w.duck != nil {
		if result, err := w.duck.InvokableRun(ctx, payload); err == nil {
			return result, nil
		} else {
			w.deps.log().Warn("duckduckgo search failed", zap.Error(err))
		}
	}
	if w.tavily != nil {
		if results, err := w.tavily.Search(ctx, query); err == nil && len(results) > 0 {
			var b strings.Builder
			for _, r := range results {
				fmt.Fprintf(&b, "- %s: %s (%s)\n", r.Title, r.Snippet, r.URL)
			}
			return b.String(), nil
		} else if err != nil {
			w.deps.log().Warn("tavily search failed", zap.Error(err))
		}
	}

	// Search degrades like the other external tools: signal the gap in text.
	return fmt.Sprintf("Web search for %q is currently unavailable. Answer from general knowledge and note the information may not be current.", query), nil
}

func initDDGSearch(deps *ToolDeps) tool.InvokableTool {
	duckConfig := &duckduckgo.Config{
		ToolName:   "web_search_ddg",
		ToolDesc:   "DuckDuckGo Search Tool (no token required)",
		MaxResults: 3,
		Region:     duckduckgo.RegionWT,
		Timeout:    10 * time.Second,
	}
	duckTool, err := duckduckgo.NewTextSearchTool(context.Background(), duckConfig)
	if err != nil {
		deps.log().Warn("duckduckgo search disabled", zap.Error(err))
		return nil
	}
	return duckTool
}

func initGoogleSearch(deps *ToolDeps) tool.InvokableTool {
	googleAPIKey := os.Getenv("GOOGLE_API_KEY")
	googleSearchEngineID := os.Getenv("GOOGLE_SEARCH_ENGINE_ID")
	if googleAPIKey == "" || googleSearchEngineID == "" {
		return nil
	}
	googleTool, err := googlesearch.NewTool(context.Background(), &googlesearch.Config{
		ToolName:       "web_search_google",
		ToolDesc:       "Google Search Tool",
		APIKey:         googleAPIKey,
		SearchEngineID: googleSearchEngineID,
		Lang:           "en",
		Num:            5,
	})
	if err != nil {
		deps.log().Warn("google search disabled", zap.Error(err))
		return nil
	}
	return googleTool
}
