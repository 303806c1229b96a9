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

const openWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

type weatherTool struct {
	deps    *ToolDeps
	apiKey  string
	baseURL string
}

type weatherParams struct {
	Location string `json:"location"`
}

// InitWeatherTool builds the current-weather/forecast adapter. Returns nil
// when no OpenWeatherMap key is configured.
func InitWeatherTool(deps *ToolDeps) tool.InvokableTool {
	apiKey := os.Getenv("OPENWEATHER_API_KEY")
	if apiKey == "" {
		deps.log().Warn("weather tool disabled: missing OPENWEATHER_API_KEY")
		return nil
	}
	return newWeatherTool(deps, apiKey, openWeatherBaseURL)
}

func newWeatherTool(deps *ToolDeps, apiKey, baseURL string) tool.InvokableTool {
	w := &weatherTool{deps: deps, apiKey: apiKey, baseURL: baseURL}
	info := &schema.ToolInfo{
		Name: "weather_search",
		Desc: "Get current weather and a short forecast for a city or destination.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"location": {
				Desc:     "City or destination name, e.g. 'Rome' or 'Tokyo, JP'",
				Type:     schema.String,
				Required: true,
			},
		}),
	}
	return utils.NewTool(info, w.run)
}

// run never returns tool failures as errors: a degraded report goes back
// into the conversation so the agent can plan around missing data.
func (w *weatherTool) run(ctx context.Context, params *weatherParams) (string, error) {
	if params == nil || strings.TrimSpace(params.Location) == "" {
		return "", errors.New("location is required")
	}
	countToolCall("weather_search")
	location := strings.TrimSpace(params.Location)

	report, err := w.deps.cachedFetch(ctx, cacheKey("weather", location), weatherCacheTTL, func(ctx context.Context) (string, error) {
		return w.fetchReport(ctx, location)
	})
	if err != nil {
		w.deps.log().Warn("weather lookup failed", zap.String("location", location), zap.Error(err))
		return fmt.Sprintf("Weather data for %s is currently unavailable (%v). Proceed without live weather and suggest season-appropriate clothing instead.", location, err), nil
	}
	return report, nil
}

func (w *weatherTool) fetchReport(ctx context.Context, location string) (string, error) {
	var current struct {
		Weather []struct {
			Description string `json:"description"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Name string `json:"name"`
	}
	currentURL := fmt.Sprintf("%s/weather?q=%s&appid=%s&units=metric",
		w.baseURL, url.QueryEscape(location), url.QueryEscape(w.apiKey))
	if err := getJSON(ctx, w.deps.httpClient(), currentURL, &current); err != nil {
		return "", err
	}

	var b strings.Builder
	desc := "unknown conditions"
	if len(current.Weather) > 0 {
		desc = current.Weather[0].Description
	}
	name := current.Name
	if name == "" {
		name = location
	}
	fmt.Fprintf(&b, "Current weather in %s: %s, %.1f°C (feels like %.1f°C), humidity %d%%, wind %.1f m/s.",
		name, desc, current.Main.Temp, current.Main.FeelsLike, current.Main.Humidity, current.Wind.Speed)

	// Forecast is best effort; current conditions alone are still useful.
	var forecast struct {
		List []struct {
			DtTxt   string `json:"dt_txt"`
			Weather []struct {
				Description string `json:"description"`
			} `json:"weather"`
			Main struct {
				Temp float64 `json:"temp"`
			} `json:"main"`
		} `json:"list"`
	}
	forecastURL := fmt.Sprintf("%s/forecast?q=%s&appid=%s&units=metric&cnt=8",
		w.baseURL, url.QueryEscape(location), url.QueryEscape(w.apiKey))
	if err := getJSON(ctx, w.deps.httpClient(), forecastURL, &forecast); err == nil && len(forecast.List) > 0 {
		b.WriteString("\nForecast:")
		for _, entry := range forecast.List {
			desc := ""
			if len(entry.Weather) > 0 {
				desc = entry.Weather[0].Description
			}
			fmt.Fprintf(&b, "\n- %s: %s, %.1f°C", entry.DtTxt, desc, entry.Main.Temp)
		}
	}
	return b.String(), nil
}
