package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func amountRows(amounts ...string) []ItemRow {
	rows := make([]ItemRow, 0, len(amounts))
	for _, a := range amounts {
		rows = append(rows, ItemRow{Amount: a})
	}
	return rows
}

func TestRecompute(t *testing.T) {
	t.Run("TDS is subtracted", func(t *testing.T) {
		got := Recompute(amountRows("600.00", "400.00"), TaxTDS, decimal.NewFromInt(10), decimal.Zero)

		assert.Equal(t, "1000.00", FormatAmount(got.Subtotal))
		assert.Equal(t, "100.00", FormatAmount(got.TaxAmount))
		assert.Equal(t, "900.00", FormatAmount(got.GrandTotal))
	})

	t.Run("TCS is added with adjustment", func(t *testing.T) {
		got := Recompute(amountRows("1000.00"), TaxTCS, decimal.NewFromInt(5), decimal.NewFromInt(50))

		assert.Equal(t, "50.00", FormatAmount(got.TaxAmount))
		assert.Equal(t, "1100.00", FormatAmount(got.GrandTotal))
	})

	t.Run("no tax kind adds a zero rate", func(t *testing.T) {
		got := Recompute(amountRows("10.00"), TaxNone, decimal.Zero, decimal.NewFromInt(-1))

		assert.Equal(t, "9.00", FormatAmount(got.GrandTotal))
	})

	t.Run("invalid amounts count as zero", func(t *testing.T) {
		got := Recompute(amountRows("", "abc", "25.50"), TaxTCS, ParseAmount(""), ParseAmount("x"))

		assert.Equal(t, "25.50", FormatAmount(got.Subtotal))
		assert.Equal(t, "25.50", FormatAmount(got.GrandTotal))
	})

	t.Run("tax amount is not rounded until serialisation", func(t *testing.T) {
		got := Recompute(amountRows("10.05"), TaxTCS, decimal.NewFromFloat(1.5), decimal.Zero)

		assert.Equal(t, "0.15075", got.TaxAmount.String())
		assert.Equal(t, "0.15", got.Rounded().TaxAmount.String())
	})

	t.Run("rounded grand total adds up at a cent boundary", func(t *testing.T) {
		got := Recompute(amountRows("0.05"), TaxTDS, decimal.NewFromInt(10), decimal.Zero).Rounded()

		assert.Equal(t, "0.05", FormatAmount(got.Subtotal))
		assert.Equal(t, "0.01", FormatAmount(got.TaxAmount))
		assert.Equal(t, "0.04", FormatAmount(got.GrandTotal))
		assert.True(t, got.GrandTotal.Equal(got.Subtotal.Sub(got.TaxAmount).Add(got.Adjustment)))

		tcs := Recompute(amountRows("0.05"), TaxTCS, decimal.NewFromInt(10), decimal.RequireFromString("0.004")).Rounded()
		assert.Equal(t, "0.06", FormatAmount(tcs.GrandTotal))
		assert.True(t, tcs.GrandTotal.Equal(tcs.Subtotal.Add(tcs.TaxAmount).Add(tcs.Adjustment)))
	})

	t.Run("idempotent", func(t *testing.T) {
		rows := amountRows("12.34", "56.78")
		first := Recompute(rows, TaxTDS, decimal.NewFromInt(2), decimal.NewFromInt(3))
		second := Recompute(rows, TaxTDS, decimal.NewFromInt(2), decimal.NewFromInt(3))

		assert.True(t, first.GrandTotal.Equal(second.GrandTotal))
		assert.True(t, first.Subtotal.Equal(second.Subtotal))
		assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	})

	t.Run("subtotal ignores row order", func(t *testing.T) {
		a := Subtotal(amountRows("0.10", "0.20", "0.30", "999.99"))
		b := Subtotal(amountRows("999.99", "0.30", "0.10", "0.20"))

		assert.True(t, a.Equal(b))
	})
}

func TestRowsFeedTotals(t *testing.T) {
	rows := NewRows()
	rows = UpdateRow(rows, 0, FieldQuantity, "10")
	rows = UpdateRow(rows, 0, FieldRate, "100")
	rows = UpdateRow(rows, 0, FieldDiscount, "10")
	rows = AddRow(rows)
	rows = UpdateRow(rows, 1, FieldQuantity, "")

	got := Recompute(rows, TaxTDS, decimal.NewFromInt(10), decimal.Zero)

	assert.Equal(t, "900.00", FormatAmount(got.Subtotal))
	assert.Equal(t, "810.00", FormatAmount(got.GrandTotal))
}
