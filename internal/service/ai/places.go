package ai

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
	"go.uber.org/zap"
)

const googlePlacesBaseURL = "https://maps.googleapis.com/maps/api/place"

type placeTool struct {
	deps    *ToolDeps
	apiKey  string
	baseURL string
	tavily  *tavilyClient
}

type placeParams struct {
	Query string `json:"query"`
}

// InitPlaceTool builds the place-search adapter over the Google Places text
// search API, with a Tavily fallback when Places is unavailable. Returns nil
// when neither provider is configured.
func InitPlaceTool(deps *ToolDeps) tool.InvokableTool {
	apiKey := os.Getenv("GPLACES_API_KEY")
	tavily := newTavilyClient(os.Getenv("TAVILY_API_KEY"), deps.httpClient())
	if apiKey == "" && tavily == nil {
		deps.log().Warn("place search tool disabled: missing GPLACES_API_KEY and TAVILY_API_KEY")
		return nil
	}
	return newPlaceTool(deps, apiKey, googlePlacesBaseURL, tavily)
}

func newPlaceTool(deps *ToolDeps, apiKey, baseURL string, tavily *tavilyClient) tool.InvokableTool {
	p := &placeTool{deps: deps, apiKey: apiKey, baseURL: baseURL, tavily: tavily}
	info := &schema.ToolInfo{
		Name: "place_search",
		Desc: "Search attractions, restaurants, hotels or activities for a destination, with name, rating and address.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Desc:     "What to look for, e.g. 'top attractions in Rome' or 'restaurants near Trevi Fountain'",
				Type:     schema.String,
				Required: true,
			},
		}),
	}
	return utils.NewTool(info, p.run)
}

func (p *placeTool) run(ctx context.Context, params *placeParams) (string, error) {
	if params == nil || strings.TrimSpace(params.Query) == "" {
		return "", errors.New("query is required")
	}
	countToolCall("place_search")
	query := strings.TrimSpace(params.Query)

	result, err := p.deps.cachedFetch(ctx, cacheKey("places", query), placesCacheTTL, func(ctx context.Context) (string, error) {
		return p.search(ctx, query)
	})
	if err != nil {
		p.deps.log().Warn("place search failed", zap.String("query", query), zap.Error(err))
		return fmt.Sprintf("Place search for %q is currently unavailable (%v). Recommend well-known spots from general knowledge instead.", query, err), nil
	}
	return result, nil
}

func (p *placeTool) search(ctx context.Context, query string) (string, error) {
	if p.apiKey != "" {
		result, err := p.searchGoogle(ctx, query)
		if err == nil {
			return result, nil
		}
		p.deps.log().Warn("google places failed, trying tavily", zap.Error(err))
	}
	if p.tavily != nil {
		results, err := p.tavily.Search(ctx, query)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			return fmt.Sprintf("No places found for %q.", query), nil
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Search results for %q:", query)
		for _, r := range results {
			fmt.Fprintf(&b, "\n- %s: %s (%s)", r.Title, r.Snippet, r.URL)
		}
		return b.String(), nil
	}
	return "", errors.New("no place search provider succeeded")
}

func (p *placeTool) searchGoogle(ctx context.Context, query string) (string, error) {
	var payload struct {
		Status  string `json:"status"`
		Results []struct {
			Name             string  `json:"name"`
			Rating           float64 `json:"rating"`
			UserRatingsTotal int     `json:"user_ratings_total"`
			FormattedAddress string  `json:"formatted_address"`
		} `json:"results"`
	}
	searchURL := fmt.Sprintf("%s/textsearch/json?query=%s&key=%s",
		p.baseURL, url.QueryEscape(query), url.QueryEscape(p.apiKey))
	if err := getJSON(ctx, p.deps.httpClient(), searchURL, &payload); err != nil {
		return "", err
	}
	if payload.Status != "OK" && payload.Status != "ZERO_RESULTS" {
		return "", fmt.Errorf("places API status %s", payload.Status)
	}
	if len(payload.Results) == 0 {
		return fmt.Sprintf("No places found for %q.", query), nil
	}

	limit := len(payload.Results)
	if limit > 5 {
		limit = 5
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Top places for %q:", query)
	for _, r := range payload.Results[:limit] {
		fmt.Fprintf(&b, "\n- %s (rating %.1f, %d reviews) - %s",
			r.Name, r.Rating, r.UserRatingsTotal, r.FormattedAddress)
	}
	return b.String(), nil
}
