package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

type expenseItem struct {
	Label  string `json:"label"`
	Amount any    `json:"amount"`
}

type expenseParams struct {
	Items []expenseItem `json:"items"`
	Days  int           `json:"days,omitempty"`
}

// InitExpenseTool builds the pure expense calculator. It has no external
// dependency and is always available.
func InitExpenseTool(deps *ToolDeps) tool.InvokableTool {
	info := &schema.ToolInfo{
		Name: "expense_calculator",
		Desc: "Total a list of trip expense line items and compute a per-day budget.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"items": {
				Desc:     "Expense line items",
				Type:     schema.Array,
				Required: true,
				ElemInfo: &schema.ParameterInfo{
					Type: schema.Object,
					SubParams: map[string]*schema.ParameterInfo{
						"label": {
							Desc:     "What the expense covers, e.g. 'Hotel (3 nights)'",
							Type:     schema.String,
							Required: true,
						},
						"amount": {
							Desc:     "Cost of the item",
							Type:     schema.Number,
							Required: true,
						},
					},
				},
			},
			"days": {
				Desc:     "Trip length in days, for the per-day budget",
				Type:     schema.Integer,
				Required: false,
			},
		}),
	}
	return utils.NewTool(info, runExpense)
}

// runExpense tolerates malformed amounts: the offending line is reported
// and skipped so the rest of the breakdown still totals.
func runExpense(ctx context.Context, params *expenseParams) (string, error) {
	if params == nil || len(params.Items) == 0 {
		return "", errors.New("at least one expense item is required")
	}
	countToolCall("expense_calculator")

	var (
		b     strings.Builder
		total float64
	)
	b.WriteString("Expense breakdown:")
	for _, item := range params.Items {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = "(unlabeled)"
		}
		amount, err := parseAmount(item.Amount)
		if err != nil {
			fmt.Fprintf(&b, "\n- %s: invalid amount: %v", label, item.Amount)
			continue
		}
		total += amount
		fmt.Fprintf(&b, "\n- %s: %.2f", label, amount)
	}
	fmt.Fprintf(&b, "\nTotal: %.2f", total)
	if params.Days > 0 {
		fmt.Fprintf(&b, "\nPer-day budget (%d days): %.2f", params.Days, total/float64(params.Days))
	}
	return b.String(), nil
}

func parseAmount(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported amount type %T", v)
	}
}
