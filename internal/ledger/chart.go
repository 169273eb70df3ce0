package ledger

import (
	"fmt"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"github.com/trackwise/trackwise-go/internal/models"
)

// uncategorizedLabel stands in for expenses without a category on the chart.
const uncategorizedLabel = "Uncategorized"

// ExpenseBreakdownChart renders a pie chart of expense totals by category.
// Returns PNG image bytes.
func ExpenseBreakdownChart(transactions []models.Transaction) ([]byte, error) {
	categoryTotals := aggregateExpensesByCategory(transactions)
	if len(categoryTotals) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	var values []float64
	var categoryNames []string
	for categoryName, total := range categoryTotals {
		categoryNames = append(categoryNames, categoryName)
		values = append(values, total.InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: "Expense Breakdown by Category",
		}),
		charts.LegendLabelsOptionFunc(categoryNames),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// aggregateExpensesByCategory groups expense transactions and returns
// per-category totals. Income is excluded.
func aggregateExpensesByCategory(transactions []models.Transaction) map[string]decimal.Decimal {
	categoryTotals := make(map[string]decimal.Decimal)

	for _, tx := range transactions {
		if tx.Type != models.TypeExpense {
			continue
		}
		categoryName := tx.Category
		if categoryName == "" {
			categoryName = uncategorizedLabel
		}

		if existing, ok := categoryTotals[categoryName]; ok {
			categoryTotals[categoryName] = existing.Add(tx.Amount)
		} else {
			categoryTotals[categoryName] = tx.Amount
		}
	}

	return categoryTotals
}
