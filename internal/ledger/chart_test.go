package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/trackwise/trackwise-go/internal/models"
)

func TestExpenseBreakdownChart(t *testing.T) {
	t.Parallel()

	t.Run("renders a PNG for expense transactions", func(t *testing.T) {
		t.Parallel()

		png, err := ExpenseBreakdownChart([]models.Transaction{
			{Type: models.TypeExpense, Amount: decimal.RequireFromString("30"), Category: "Food"},
			{Type: models.TypeExpense, Amount: decimal.RequireFromString("12.5"), Category: "Travel"},
			{Type: models.TypeIncome, Amount: decimal.RequireFromString("100"), Category: "Salary"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, png)
		// PNG signature.
		require.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
	})

	t.Run("fails when there are no expenses", func(t *testing.T) {
		t.Parallel()

		_, err := ExpenseBreakdownChart([]models.Transaction{
			{Type: models.TypeIncome, Amount: decimal.RequireFromString("100")},
		})
		require.Error(t, err)
	})
}

func TestAggregateExpensesByCategory(t *testing.T) {
	t.Parallel()

	totals := aggregateExpensesByCategory([]models.Transaction{
		{Type: models.TypeExpense, Amount: decimal.RequireFromString("30"), Category: "Food"},
		{Type: models.TypeExpense, Amount: decimal.RequireFromString("20"), Category: "Food"},
		{Type: models.TypeExpense, Amount: decimal.RequireFromString("5")},
		{Type: models.TypeIncome, Amount: decimal.RequireFromString("100"), Category: "Salary"},
	})

	require.Len(t, totals, 2)
	require.Equal(t, "50", totals["Food"].String())
	require.Equal(t, "5", totals[uncategorizedLabel].String())
}
