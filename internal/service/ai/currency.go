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

const exchangeRateBaseURL = "https://v6.exchangerate-api.com/v6"

type currencyTool struct {
	deps    *ToolDeps
	apiKey  string
	baseURL string
}

type currencyParams struct {
	Amount       float64 `json:"amount"`
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
}

// InitCurrencyTool builds the exchange-rate adapter. Returns nil when no
// exchange-rate key is configured.
func InitCurrencyTool(deps *ToolDeps) tool.InvokableTool {
	apiKey := os.Getenv("EXCHANGE_RATE_API_KEY")
	if apiKey == "" {
		deps.log().Warn("currency tool disabled: missing EXCHANGE_RATE_API_KEY")
		return nil
	}
	return newCurrencyTool(deps, apiKey, exchangeRateBaseURL)
}

func newCurrencyTool(deps *ToolDeps, apiKey, baseURL string) tool.InvokableTool {
	c := &currencyTool{deps: deps, apiKey: apiKey, baseURL: baseURL}
	info := &schema.ToolInfo{
		Name: "currency_convert",
		Desc: "Convert an amount between two currencies using live exchange rates.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"amount": {
				Desc:     "Amount to convert",
				Type:     schema.Number,
				Required: true,
			},
			"from_currency": {
				Desc:     "ISO 4217 source currency code, e.g. USD",
				Type:     schema.String,
				Required: true,
			},
			"to_currency": {
				Desc:     "ISO 4217 target currency code, e.g. EUR",
				Type:     schema.String,
				Required: true,
			},
		}),
	}
	return utils.NewTool(info, c.run)
}

func (c *currencyTool) run(ctx context.Context, params *currencyParams) (string, error) {
	if params == nil || params.FromCurrency == "" || params.ToCurrency == "" {
		return "", errors.New("from_currency and to_currency are required")
	}
	countToolCall("currency_convert")
	from := strings.ToUpper(strings.TrimSpace(params.FromCurrency))
	to := strings.ToUpper(strings.TrimSpace(params.ToCurrency))

	rate, err := c.lookupRate(ctx, from, to)
	if err != nil {
		c.deps.log().Warn("exchange rate lookup failed",
			zap.String("from", from), zap.String("to", to), zap.Error(err))
		return fmt.Sprintf("Exchange rate %s->%s unavailable (%v). Quote costs in %s and note the conversion could not be performed.", from, to, err, from), nil
	}
	return fmt.Sprintf("%.2f %s = %.2f %s (rate %.6f)", params.Amount, from, params.Amount*rate, to, rate), nil
}

func (c *currencyTool) lookupRate(ctx context.Context, from, to string) (float64, error) {
	cached, err := c.deps.cachedFetch(ctx, cacheKey("currency", from, to), currencyCacheTTL, func(ctx context.Context) (string, error) {
		var payload struct {
			Result         string  `json:"result"`
			ConversionRate float64 `json:"conversion_rate"`
		}
		pairURL := fmt.Sprintf("%s/%s/pair/%s/%s",
			c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(from), url.PathEscape(to))
		if err := getJSON(ctx, c.deps.httpClient(), pairURL, &payload); err != nil {
			return "", err
		}
		if payload.Result != "success" || payload.ConversionRate == 0 {
			return "", fmt.Errorf("no rate for %s/%s", from, to)
		}
		return fmt.Sprintf("%g", payload.ConversionRate), nil
	})
	if err != nil {
		return 0, err
	}

	var rate float64
	if _, err := fmt.Sscanf(cached, "%g", &rate); err != nil || rate == 0 {
		return 0, fmt.Errorf("malformed cached rate %q", cached)
	}
	return rate, nil
}
